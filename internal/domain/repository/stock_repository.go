package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRepository define el puerto del agregado de stock por bodega+ítem.
// Usado dentro de transacciones para garantizar consistencia con el libro.
type StockRepository interface {
	// Get devuelve el agregado; si no existe, uno en cero (nunca nil sin error).
	Get(ctx context.Context, key entity.StockKey) (*entity.StockAggregate, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockAggregate, error)
	// Upsert inserta o reemplaza cantidad y marca de bloqueo.
	Upsert(ctx context.Context, stock *entity.StockAggregate) error
	// ListKeys lista las claves con movimientos o con agregado (para reconstrucción masiva).
	ListKeys(ctx context.Context) ([]entity.StockKey, error)
}
