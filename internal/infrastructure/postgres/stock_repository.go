package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockSelect = `
	SELECT warehouse_id, item_kind, item_id, quantity, halted, updated_at
	FROM stock_aggregates
	WHERE warehouse_id = $1 AND item_kind = $2 AND item_id = $3`

// Get obtiene el agregado de la clave; si no hay fila devuelve uno en cero.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockAggregate, error) {
	return r.get(ctx, stockSelect, key, "get stock")
}

// GetForUpdate obtiene el agregado y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockAggregate, error) {
	return r.get(ctx, stockSelect+` FOR UPDATE`, key, "get stock for update")
}

func (r *StockRepo) get(ctx context.Context, query string, key entity.StockKey, op string) (*entity.StockAggregate, error) {
	var (
		s    entity.StockAggregate
		kind string
	)
	err := r.q.QueryRow(ctx, query, key.WarehouseID, string(key.Item.Kind), key.Item.ID).Scan(
		&s.WarehouseID, &kind, &s.Item.ID, &s.Quantity, &s.Halted, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockAggregate{WarehouseID: key.WarehouseID, Item: key.Item, Quantity: decimal.Zero}, nil
		}
		return nil, wrap(op, err)
	}
	s.Item.Kind = entity.ItemKind(kind)
	return &s, nil
}

// Upsert inserta o reemplaza cantidad y marca de bloqueo de la clave.
func (r *StockRepo) Upsert(ctx context.Context, s *entity.StockAggregate) error {
	query := `
		INSERT INTO stock_aggregates (warehouse_id, item_kind, item_id, quantity, halted, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (warehouse_id, item_kind, item_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, halted = EXCLUDED.halted, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		s.WarehouseID, string(s.Item.Kind), s.Item.ID, s.Quantity, s.Halted, s.UpdatedAt,
	)
	return wrap("upsert stock", err)
}

// ListKeys claves con movimientos en el libro o con agregado, en orden estable.
// Incluye las claves cuyo agregado se perdió para que la auditoría las detecte.
func (r *StockRepo) ListKeys(ctx context.Context) ([]entity.StockKey, error) {
	rows, err := r.q.Query(ctx, `
		SELECT warehouse_id, item_kind, item_id FROM movement_entries
		UNION
		SELECT warehouse_id, item_kind, item_id FROM stock_aggregates
		ORDER BY warehouse_id, item_kind, item_id`)
	if err != nil {
		return nil, wrap("list stock keys", err)
	}
	defer rows.Close()

	var keys []entity.StockKey
	for rows.Next() {
		var (
			k    entity.StockKey
			kind string
		)
		if err := rows.Scan(&k.WarehouseID, &kind, &k.Item.ID); err != nil {
			return nil, wrap("scan stock key", err)
		}
		k.Item.Kind = entity.ItemKind(kind)
		keys = append(keys, k)
	}
	return keys, wrap("list stock keys", rows.Err())
}
