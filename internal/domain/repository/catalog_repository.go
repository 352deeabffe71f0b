package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CatalogRepository referencia al catálogo externo (bodegas, productos, recursos).
// Solo lectura: el motor no administra el catálogo.
type CatalogRepository interface {
	ResolveWarehouse(ctx context.Context, id string) (entity.CatalogStatus, error)
	ResolveItem(ctx context.Context, item entity.ItemRef) (entity.CatalogStatus, error)
}
