package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestFormatQty(t *testing.T) {
	cases := map[string]string{
		"0":          "0",
		"15":         "15",
		"1234.5":     "1.234,5",
		"-20":        "-20",
		"1000000.25": "1.000.000,25",
		"0.123456":   "0,1235",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatQty(decimal.RequireFromString(in)), in)
	}
}

func TestRenderKardex_GeneraPDF(t *testing.T) {
	key := entity.StockKey{
		WarehouseID: "11111111-1111-1111-1111-111111111111",
		Item:        entity.ItemRef{Kind: entity.ItemKindResource, ID: "33333333-3333-3333-3333-333333333333"},
	}
	at := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	pid := "44444444-4444-4444-4444-444444444444"
	k := &inventory.Kardex{
		Key:     key,
		Opening: decimal.NewFromInt(2),
		Lines: []inventory.KardexLine{
			{Entry: &entity.MovementEntry{Seq: 1, Direction: entity.DirectionEntrada, Quantity: decimal.NewFromInt(10), OccurredAt: at, Source: entity.SourcePurchase, LinkedPurchaseID: &pid}, Balance: decimal.NewFromInt(12)},
			{Entry: &entity.MovementEntry{Seq: 2, Direction: entity.DirectionSalida, Quantity: decimal.NewFromInt(15), OccurredAt: at, Source: entity.SourceCompensation, Observations: "desactivación de compra"}, Balance: decimal.NewFromInt(-3)},
		},
		Entradas:    decimal.NewFromInt(10),
		Salidas:     decimal.NewFromInt(15),
		Closing:     decimal.NewFromInt(-3),
		GeneratedAt: at,
	}

	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		loc = time.UTC
	}
	out, err := NewKardexGenerator(loc).RenderKardex(context.Background(), k)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un PDF")
}
