package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntakeRequest body para POST /api/purchases.
type IntakeRequest struct {
	WarehouseID  string          `json:"warehouse_id" validate:"required,uuid"`
	ItemKind     string          `json:"item_kind" validate:"required,oneof=product resource"`
	ItemID       string          `json:"item_id" validate:"required,uuid"`
	SupplierID   string          `json:"supplier_id" validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	EntryDate    string          `json:"entry_date" validate:"omitempty,datetime=2006-01-02"` // vacío = hoy
	Observations string          `json:"observations" validate:"max=500"`
}

// PurchaseResponse salida de un registro de compra.
type PurchaseResponse struct {
	ID          string          `json:"id"`
	WarehouseID string          `json:"warehouse_id"`
	ItemKind    string          `json:"item_kind"`
	ItemID      string          `json:"item_id"`
	SupplierID  string          `json:"supplier_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	EntryDate   string          `json:"entry_date"`
	Active      bool            `json:"active"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IntakeResponse resultado de un ingreso: action es "created" o "updated".
type IntakeResponse struct {
	Action   string           `json:"action"`
	Purchase PurchaseResponse `json:"purchase"`
	Movement MovementResponse `json:"movement"`
	Stock    decimal.Decimal  `json:"stock"`
}

// PurchaseAuditResponse compra con sus movimientos vinculados.
type PurchaseAuditResponse struct {
	Purchase   PurchaseResponse   `json:"purchase"`
	Movements  []MovementResponse `json:"movements"`
	LinkedSum  decimal.Decimal    `json:"linked_sum"`
	Consistent bool               `json:"consistent"`
}

// MovementRequest body para POST /api/stock/:warehouse_id/:kind/:item_id/movements.
type MovementRequest struct {
	Direction    string          `json:"direction" validate:"required,oneof=entrada salida"`
	Quantity     decimal.Decimal `json:"quantity"`
	Observations string          `json:"observations" validate:"max=500"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID               string          `json:"id"`
	Seq              int64           `json:"seq"`
	Direction        string          `json:"direction"`
	Quantity         decimal.Decimal `json:"quantity"`
	OccurredAt       time.Time       `json:"occurred_at"`
	Source           string          `json:"source"`
	LinkedPurchaseID *string         `json:"linked_purchase_id,omitempty"`
	Observations     string          `json:"observations,omitempty"`
}

// RecordMovementResponse movimiento manual escrito y stock resultante.
type RecordMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	Stock    decimal.Decimal  `json:"stock"`
}

// StockResponse stock actual de una clave.
type StockResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ItemKind    string          `json:"item_kind"`
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// LedgerQuery parámetros de GET …/movements y …/kardex.
// from/to aceptan RFC3339 o YYYY-MM-DD; from inclusivo, to exclusivo.
type LedgerQuery struct {
	From  string `query:"from"`
	To    string `query:"to"`
	After int64  `query:"after" validate:"min=0"`
	Limit int    `query:"limit" validate:"min=0,max=500"`
}

// LedgerPageResponse página del libro.
type LedgerPageResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// KardexLineResponse movimiento con saldo corrido.
type KardexLineResponse struct {
	MovementResponse
	Balance decimal.Decimal `json:"balance"`
}

// KardexResponse tarjeta de stock de una clave.
type KardexResponse struct {
	WarehouseID string               `json:"warehouse_id"`
	ItemKind    string               `json:"item_kind"`
	ItemID      string               `json:"item_id"`
	From        *time.Time           `json:"from,omitempty"`
	To          *time.Time           `json:"to,omitempty"`
	Opening     decimal.Decimal      `json:"opening"`
	Lines       []KardexLineResponse `json:"lines"`
	Entradas    decimal.Decimal      `json:"entradas"`
	Salidas     decimal.Decimal      `json:"salidas"`
	Closing     decimal.Decimal      `json:"closing"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// RebuildReportResponse resultado de rebuild/repair.
type RebuildReportResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ItemKind    string          `json:"item_kind"`
	ItemID      string          `json:"item_id"`
	Stored      decimal.Decimal `json:"stored"`
	Derived     decimal.Decimal `json:"derived"`
	WasHalted   bool            `json:"was_halted"`
	Consistent  bool            `json:"consistent"`
	Repaired    bool            `json:"repaired"`
}
