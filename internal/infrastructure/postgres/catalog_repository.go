package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lectura del catálogo (bodegas, productos, recursos). No escribe.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador.
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// ResolveWarehouse existencia y estado de la bodega.
func (r *CatalogRepo) ResolveWarehouse(ctx context.Context, id string) (entity.CatalogStatus, error) {
	return r.resolve(ctx, `SELECT is_active FROM warehouses WHERE id = $1`, id)
}

// ResolveItem existencia y estado del producto o recurso según el tipo.
func (r *CatalogRepo) ResolveItem(ctx context.Context, item entity.ItemRef) (entity.CatalogStatus, error) {
	switch item.Kind {
	case entity.ItemKindProduct:
		return r.resolve(ctx, `SELECT is_active FROM products WHERE id = $1`, item.ID)
	case entity.ItemKindResource:
		return r.resolve(ctx, `SELECT is_active FROM resources WHERE id = $1`, item.ID)
	}
	return entity.CatalogStatus{}, fmt.Errorf("tipo de ítem desconocido %q", item.Kind)
}

func (r *CatalogRepo) resolve(ctx context.Context, query, id string) (entity.CatalogStatus, error) {
	var active bool
	err := r.q.QueryRow(ctx, query, id).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.CatalogStatus{}, nil
		}
		return entity.CatalogStatus{}, wrap("resolve catalog", err)
	}
	return entity.CatalogStatus{Exists: true, Active: active}, nil
}
