package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementRepository define el puerto del libro de movimientos (solo inserción).
type MovementRepository interface {
	// Append agrega un movimiento y devuelve su ID. Nunca modifica filas existentes.
	Append(ctx context.Context, entry *entity.MovementEntry) (string, error)
	// ListForKey movimientos de una clave en orden de inserción (Seq), desde filter.After.
	ListForKey(ctx context.Context, key entity.StockKey, filter entity.LedgerFilter) ([]*entity.MovementEntry, error)
	// SumForKey Σentrada − Σsalida de todo el libro de la clave.
	SumForKey(ctx context.Context, key entity.StockKey) (decimal.Decimal, error)
	// ListByPurchase movimientos vinculados a una compra, en orden de inserción.
	ListByPurchase(ctx context.Context, purchaseID string) ([]*entity.MovementEntry, error)
}
