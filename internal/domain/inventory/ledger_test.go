package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

const (
	wh  = "11111111-1111-1111-1111-111111111111"
	pid = "44444444-4444-4444-4444-444444444444"
)

func purchase(active bool, qty string) *entity.PurchaseRecord {
	return &entity.PurchaseRecord{
		ID:          pid,
		WarehouseID: wh,
		Item:        entity.ItemRef{Kind: entity.ItemKindProduct, ID: "22222222-2222-2222-2222-222222222222"},
		Quantity:    d(qty),
		Active:      active,
	}
}

func linked(p *entity.PurchaseRecord, src entity.MovementSource, dir entity.Direction, qty string) *entity.MovementEntry {
	id := p.ID
	return &entity.MovementEntry{
		ID:               "m",
		WarehouseID:      p.WarehouseID,
		Item:             p.Item,
		Direction:        dir,
		Quantity:         d(qty),
		Source:           src,
		LinkedPurchaseID: &id,
	}
}

func TestLedgerBalance(t *testing.T) {
	p := purchase(true, "15")
	entries := []*entity.MovementEntry{
		linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10"),
		linked(p, entity.SourceManual, entity.DirectionSalida, "2.5"),
		linked(p, entity.SourcePurchase, entity.DirectionEntrada, "5"),
	}
	assert.True(t, inventory.LedgerBalance(entries).Equal(d("12.5")))
	assert.True(t, inventory.LedgerBalance(nil).IsZero())
}

func TestCheckPurchaseLedger_CicloCompleto(t *testing.T) {
	p := purchase(true, "15")
	entries := []*entity.MovementEntry{
		linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10"),
		linked(p, entity.SourcePurchase, entity.DirectionEntrada, "5"),
	}
	require.NoError(t, inventory.CheckPurchaseLedger(p, entries))

	// desactivar → 0
	p.Active = false
	entries = append(entries, linked(p, entity.SourceCompensation, entity.DirectionSalida, "15"))
	require.NoError(t, inventory.CheckPurchaseLedger(p, entries))

	// reactivar → 15
	p.Active = true
	entries = append(entries, linked(p, entity.SourceCompensation, entity.DirectionEntrada, "15"))
	require.NoError(t, inventory.CheckPurchaseLedger(p, entries))
}

func TestCheckPurchaseLedger_Inconsistencias(t *testing.T) {
	cases := map[string]func() (*entity.PurchaseRecord, []*entity.MovementEntry){
		"suma distinta a la cantidad": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(true, "15")
			return p, []*entity.MovementEntry{linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10")}
		},
		"inactiva con suma no nula": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(false, "10")
			return p, []*entity.MovementEntry{linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10")}
		},
		"compensación empezando por entrada": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(true, "10")
			return p, []*entity.MovementEntry{
				linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10"),
				linked(p, entity.SourceCompensation, entity.DirectionEntrada, "10"),
				linked(p, entity.SourceCompensation, entity.DirectionSalida, "10"),
			}
		},
		"movimiento manual vinculado": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(true, "10")
			return p, []*entity.MovementEntry{
				linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10"),
				linked(p, entity.SourceManual, entity.DirectionEntrada, "0"),
			}
		},
		"ingreso de compra como salida": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(false, "0")
			return p, []*entity.MovementEntry{linked(p, entity.SourcePurchase, entity.DirectionSalida, "0")}
		},
		"otra clave": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(true, "10")
			e := linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10")
			e.Item.Kind = entity.ItemKindResource
			return p, []*entity.MovementEntry{e}
		},
		"otra compra": func() (*entity.PurchaseRecord, []*entity.MovementEntry) {
			p := purchase(true, "10")
			e := linked(p, entity.SourcePurchase, entity.DirectionEntrada, "10")
			other := "55555555-5555-5555-5555-555555555555"
			e.LinkedPurchaseID = &other
			return p, []*entity.MovementEntry{e}
		},
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			p, entries := build()
			assert.Error(t, inventory.CheckPurchaseLedger(p, entries))
		})
	}
}

func TestContribution(t *testing.T) {
	assert.True(t, purchase(true, "7").Contribution().Equal(decimal.NewFromInt(7)))
	assert.True(t, purchase(false, "7").Contribution().IsZero())
}
