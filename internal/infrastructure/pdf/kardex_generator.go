// Package pdf genera la tarjeta de stock (kardex) de una clave bodega+ítem.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: KARDEX + bodega/ítem  │  Rango + fecha de emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | # | Origen | Entrada | Salida | Saldo | Obs │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Saldo inicial / Entradas / Salidas / Saldo final  │
//	│  FOOTER: QR con la clave y el saldo final                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

const (
	dateTimeLayout = "02/01/2006 15:04"
	qtyPlaces      = 4
)

var sourceLabels = map[entity.MovementSource]string{
	entity.SourcePurchase:     "Compra",
	entity.SourceManual:       "Manual",
	entity.SourceCompensation: "Compensación",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.KardexRenderer = (*KardexGenerator)(nil)

// KardexGenerator implementa inventory.KardexRenderer usando Maroto v2.
type KardexGenerator struct {
	loc *time.Location
}

// NewKardexGenerator construye el generador; las fechas se muestran en loc (nil = UTC).
func NewKardexGenerator(loc *time.Location) *KardexGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &KardexGenerator{loc: loc}
}

// RenderKardex genera el PDF y devuelve sus bytes.
func (g *KardexGenerator) RenderKardex(_ context.Context, k *inventory.Kardex) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+k.Key.String(), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(k))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(openingRow(k.Opening))
	for _, r := range g.lineRows(k.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(k))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(k))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *KardexGenerator) headerRow(k *inventory.Kardex) core.Row {
	kind := "Producto"
	if k.Key.Item.Kind == entity.ItemKindResource {
		kind = "Recurso"
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Bodega: "+k.Key.WarehouseID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New(kind+": "+k.Key.Item.ID, props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Rango: "+g.rangeLabel(k.From, k.To), props.Text{
				Size: 8, Align: align.Right, Top: 2,
			}),
			text.New("Emitido: "+k.GeneratedAt.In(g.loc).Format(dateTimeLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("#", 1, align.Center),
		h("Origen", 2, align.Left),
		h("Entrada", 2, align.Right),
		h("Salida", 2, align.Right),
		h("Saldo", 2, align.Right),
		h("Obs.", 1, align.Left),
	)
}

func openingRow(opening decimal.Decimal) core.Row {
	return row.New(6).Add(
		col.New(10).Add(text.New("Saldo inicial", props.Text{
			Style: fontstyle.Italic, Size: 8, Top: 1, Left: 1,
		})),
		col.New(2).Add(text.New(formatQty(opening), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
	)
}

// lineRows una fila por movimiento; las observaciones van en una fila aparte si no caben.
func (g *KardexGenerator) lineRows(lines []inventory.KardexLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		e := l.Entry
		in, out := "", ""
		if e.Direction == entity.DirectionEntrada {
			in = formatQty(e.Quantity)
		} else {
			out = formatQty(e.Quantity)
		}
		balanceStyle := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if l.Balance.IsNegative() {
			balanceStyle.Color = colorRed
		}
		obsMark := ""
		if e.Observations != "" {
			obsMark = "*"
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(e.OccurredAt.In(g.loc).Format(dateTimeLayout), props.Text{Size: 7, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", e.Seq), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(sourceLabels[e.Source], props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(in, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(out, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQty(l.Balance), balanceStyle)),
			col.New(1).Add(text.New(obsMark, props.Text{Size: 8, Top: 1, Left: 1})),
		))
		if e.Observations != "" {
			result = append(result, row.New(5).Add(
				col.New(12).Add(text.New("* "+e.Observations, props.Text{
					Size: 6.5, Color: colorGray, Left: 6,
				})),
			))
		}
	}
	return result
}

func totalsRow(k *inventory.Kardex) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Saldo inicial:"),
			label("Entradas:"),
			label("Salidas:"),
			text.New("SALDO FINAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
		),
		col.New(3).Add(
			value(formatQty(k.Opening)),
			value(formatQty(k.Entradas)),
			value(formatQty(k.Salidas)),
			text.New(formatQty(k.Closing), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

func footerRow(k *inventory.Kardex) core.Row {
	payload := fmt.Sprintf("%s|%s|%d", k.Key.String(), k.Closing.String(), len(k.Lines))
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(payload, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(fmt.Sprintf("%d movimientos en el rango.", len(k.Lines)), props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("El saldo se deriva del libro de movimientos; el stock materializado debe coincidir.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (g *KardexGenerator) rangeLabel(from, to *time.Time) string {
	f, t := "inicio", "hoy"
	if from != nil {
		f = from.In(g.loc).Format(dateTimeLayout)
	}
	if to != nil {
		t = to.In(g.loc).Format(dateTimeLayout)
	}
	return f + " a " + t
}

// formatQty cantidad con puntos de miles y coma decimal, sin ceros sobrantes.
// Ej: 1234.5 → "1.234,5", -20 → "-20"
func formatQty(d decimal.Decimal) string {
	s := d.Round(qtyPlaces).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// groupThousands inserta puntos de miles en un string numérico sin signo.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
