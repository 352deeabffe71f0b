package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord registro de compra (entrada de mercancía a una bodega).
// Clave natural para la fusión: (WarehouseID, Item) entre registros activos.
// Nunca se borra físicamente; la desactivación es la única "baja".
type PurchaseRecord struct {
	ID          string
	WarehouseID string
	Item        ItemRef
	SupplierID  string          // el primer proveedor se conserva en las fusiones
	Quantity    decimal.Decimal // acumulada por fusiones
	UnitPrice   decimal.Decimal // precio efectivo ponderado = TotalCost / Quantity
	TotalCost   decimal.Decimal // Σ delta * precio de cada ingreso, 2 decimales
	EntryDate   Date
	Active      bool
	Version     int // bloqueo optimista
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key devuelve la clave de stock del registro.
func (p *PurchaseRecord) Key() StockKey {
	return StockKey{WarehouseID: p.WarehouseID, Item: p.Item}
}

// Contribution es lo que la compra aporta hoy al stock: su cantidad si está activa, cero si no.
func (p *PurchaseRecord) Contribution() decimal.Decimal {
	if !p.Active {
		return decimal.Zero
	}
	return p.Quantity
}
