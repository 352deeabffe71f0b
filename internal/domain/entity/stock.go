package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAggregate stock actual materializado por (bodega, ítem).
// Es una caché derivable del libro: Quantity == Σentrada − Σsalida.
// Halted marca una clave cuya reconstrucción no coincidió; bloquea escrituras hasta Repair.
type StockAggregate struct {
	WarehouseID string
	Item        ItemRef
	Quantity    decimal.Decimal
	Halted      bool
	UpdatedAt   time.Time
}

// Key devuelve la clave del agregado.
func (s *StockAggregate) Key() StockKey {
	return StockKey{WarehouseID: s.WarehouseID, Item: s.Item}
}

// CatalogStatus resultado de resolver una entidad del catálogo.
type CatalogStatus struct {
	Exists bool
	Active bool
}
