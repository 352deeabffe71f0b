package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction sentido del movimiento.
type Direction string

const (
	DirectionEntrada Direction = "entrada"
	DirectionSalida  Direction = "salida"
)

// MovementSource origen del movimiento.
type MovementSource string

const (
	SourcePurchase     MovementSource = "purchase"
	SourceManual       MovementSource = "manual"
	SourceCompensation MovementSource = "compensation"
)

// MovementEntry movimiento del libro (ledger). Inmutable una vez escrito:
// las correcciones se hacen con un nuevo movimiento compensatorio.
type MovementEntry struct {
	ID               string
	Seq              int64 // orden de inserción, monótono por clave
	WarehouseID      string
	Item             ItemRef
	Direction        Direction
	Quantity         decimal.Decimal // siempre > 0; el signo lo da Direction
	OccurredAt       time.Time
	Source           MovementSource
	LinkedPurchaseID *string
	Observations     string
}

// Key devuelve la clave de stock del movimiento.
func (m *MovementEntry) Key() StockKey {
	return StockKey{WarehouseID: m.WarehouseID, Item: m.Item}
}

// Signed devuelve la cantidad con signo (+entrada, -salida).
func (m *MovementEntry) Signed() decimal.Decimal {
	if m.Direction == DirectionSalida {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// LedgerFilter rango y cursor para leer el libro de una clave.
// After es el último Seq visto (0 = desde el inicio).
type LedgerFilter struct {
	From  *time.Time
	To    *time.Time
	After int64
	Limit int
}
