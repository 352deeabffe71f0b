package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerBalance Σentrada − Σsalida de los movimientos dados.
func LedgerBalance(entries []*entity.MovementEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Signed())
	}
	return total
}

// CheckPurchaseLedger verifica los movimientos vinculados a una compra:
//   - los compensatorios alternan salida/entrada empezando por salida;
//   - la suma de todos es la cantidad si la compra está activa, cero si no.
//
// entries debe venir en orden de inserción.
func CheckPurchaseLedger(p *entity.PurchaseRecord, entries []*entity.MovementEntry) error {
	next := entity.DirectionSalida
	for _, e := range entries {
		if e.LinkedPurchaseID == nil || *e.LinkedPurchaseID != p.ID {
			return fmt.Errorf("movimiento %s no pertenece a la compra %s", e.ID, p.ID)
		}
		if e.Key() != p.Key() {
			return fmt.Errorf("movimiento %s con clave %s distinta a la compra", e.ID, e.Key())
		}
		switch e.Source {
		case entity.SourceCompensation:
			if e.Direction != next {
				return fmt.Errorf("compensación %s fuera de secuencia: se esperaba %s", e.ID, next)
			}
			if next == entity.DirectionSalida {
				next = entity.DirectionEntrada
			} else {
				next = entity.DirectionSalida
			}
		case entity.SourcePurchase:
			if e.Direction != entity.DirectionEntrada {
				return fmt.Errorf("ingreso %s con dirección %s", e.ID, e.Direction)
			}
		default:
			return fmt.Errorf("movimiento %s con origen %s vinculado a compra", e.ID, e.Source)
		}
	}
	sum := LedgerBalance(entries)
	if want := p.Contribution(); !sum.Equal(want) {
		return fmt.Errorf("suma vinculada %s, se esperaba %s", sum, want)
	}
	return nil
}
