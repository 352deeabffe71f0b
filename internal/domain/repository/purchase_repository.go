package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para PurchaseRecord.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.PurchaseRecord) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.PurchaseRecord, error)
	// GetByIDForUpdate igual que GetByID bloqueando la fila.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseRecord, error)
	// FindActiveByKey compra activa de la clave (bloqueada), o nil si no hay.
	FindActiveByKey(ctx context.Context, key entity.StockKey) (*entity.PurchaseRecord, error)
	// Update guarda cantidad, costos y estado si Version coincide; si no, ErrConcurrencyConflict.
	// En éxito incrementa purchase.Version.
	Update(ctx context.Context, purchase *entity.PurchaseRecord) error
}
