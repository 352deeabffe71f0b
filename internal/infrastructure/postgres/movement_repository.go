package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT; un trigger rechaza UPDATE/DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, seq, warehouse_id, item_kind, item_id, direction, quantity, occurred_at,
	source, linked_purchase_id, observations`

// Append inserta el movimiento y completa ID y Seq.
func (r *MovementRepo) Append(ctx context.Context, e *entity.MovementEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_entries (id, warehouse_id, item_kind, item_id, direction, quantity,
			occurred_at, source, linked_purchase_id, observations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.WarehouseID, string(e.Item.Kind), e.Item.ID, string(e.Direction), e.Quantity,
		e.OccurredAt, string(e.Source), e.LinkedPurchaseID, e.Observations,
	).Scan(&e.Seq)
	if err != nil {
		return "", wrap("append movement", err)
	}
	return e.ID, nil
}

// ListForKey movimientos de la clave por seq ascendente. From inclusivo, To exclusivo.
func (r *MovementRepo) ListForKey(ctx context.Context, key entity.StockKey, filter entity.LedgerFilter) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_entries
		WHERE warehouse_id = $1 AND item_kind = $2 AND item_id = $3 AND seq > $4`
	args := []any{key.WarehouseID, string(key.Item.Kind), key.Item.ID, filter.After}
	pos := 5
	if filter.From != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND occurred_at < $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, filter.Limit)
	}
	return r.list(ctx, "list movements", query, args...)
}

// SumForKey Σentrada − Σsalida del libro completo de la clave.
func (r *MovementRepo) SumForKey(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'entrada' THEN quantity ELSE -quantity END), 0)
		FROM movement_entries
		WHERE warehouse_id = $1 AND item_kind = $2 AND item_id = $3`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, key.WarehouseID, string(key.Item.Kind), key.Item.ID).Scan(&sum); err != nil {
		return decimal.Zero, wrap("sum movements", err)
	}
	return sum, nil
}

// ListByPurchase movimientos vinculados a la compra, en orden de inserción.
func (r *MovementRepo) ListByPurchase(ctx context.Context, purchaseID string) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_entries
		WHERE linked_purchase_id = $1 ORDER BY seq`
	return r.list(ctx, "list purchase movements", query, purchaseID)
}

func (r *MovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.MovementEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var list []*entity.MovementEntry
	for rows.Next() {
		e, err := scanMovement(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		list = append(list, e)
	}
	return list, wrap(op, rows.Err())
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var (
		e                 entity.MovementEntry
		kind, dir, source string
	)
	if err := row.Scan(
		&e.ID, &e.Seq, &e.WarehouseID, &kind, &e.Item.ID, &dir, &e.Quantity, &e.OccurredAt,
		&source, &e.LinkedPurchaseID, &e.Observations,
	); err != nil {
		return nil, err
	}
	e.Item.Kind = entity.ItemKind(kind)
	e.Direction = entity.Direction(dir)
	e.Source = entity.MovementSource(source)
	return &e, nil
}
