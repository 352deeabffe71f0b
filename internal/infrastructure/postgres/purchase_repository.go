package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `
	id, warehouse_id, item_kind, item_id, supplier_id, quantity, unit_price, total_cost,
	entry_date, active, version, created_at, updated_at`

// Create persiste una compra nueva. Si ya hay otra activa para la clave, el índice único
// parcial la rechaza y se devuelve ErrConcurrencyConflict.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.PurchaseRecord) error {
	query := `INSERT INTO purchase_records (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.WarehouseID, string(p.Item.Kind), p.Item.ID, p.SupplierID,
		p.Quantity, p.UnitPrice, p.TotalCost, p.EntryDate.Time(),
		p.Active, p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: compra activa concurrente para %s", domain.ErrConcurrencyConflict, p.Key())
	}
	return wrap("create purchase", err)
}

// GetByID obtiene una compra por ID; nil, nil si no existe.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseRecord, error) {
	return r.one(ctx, `SELECT `+purchaseColumns+` FROM purchase_records WHERE id = $1`, "get purchase", id)
}

// GetByIDForUpdate igual que GetByID bloqueando la fila.
func (r *PurchaseRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseRecord, error) {
	return r.one(ctx, `SELECT `+purchaseColumns+` FROM purchase_records WHERE id = $1 FOR UPDATE`, "get purchase for update", id)
}

// FindActiveByKey compra activa de la clave, bloqueada; nil si no hay.
func (r *PurchaseRepo) FindActiveByKey(ctx context.Context, key entity.StockKey) (*entity.PurchaseRecord, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchase_records
		WHERE warehouse_id = $1 AND item_kind = $2 AND item_id = $3 AND active
		FOR UPDATE`
	return r.one(ctx, query, "find active purchase", key.WarehouseID, string(key.Item.Kind), key.Item.ID)
}

// Update guarda cantidad, costos y estado si la versión no cambió; incrementa p.Version.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.PurchaseRecord) error {
	query := `
		UPDATE purchase_records
		SET quantity = $2, unit_price = $3, total_cost = $4, active = $5,
		    version = version + 1, updated_at = $6
		WHERE id = $1 AND version = $7`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Quantity, p.UnitPrice, p.TotalCost, p.Active, p.UpdatedAt, p.Version,
	)
	if err != nil {
		return wrap("update purchase", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: compra %s modificada por otra transacción", domain.ErrConcurrencyConflict, p.ID)
	}
	p.Version++
	return nil
}

func (r *PurchaseRepo) one(ctx context.Context, query, op string, args ...any) (*entity.PurchaseRecord, error) {
	var (
		p         entity.PurchaseRecord
		kind      string
		entryDate time.Time
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.WarehouseID, &kind, &p.Item.ID, &p.SupplierID,
		&p.Quantity, &p.UnitPrice, &p.TotalCost, &entryDate,
		&p.Active, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap(op, err)
	}
	p.Item.Kind = entity.ItemKind(kind)
	p.EntryDate = entity.DateOf(entryDate)
	return &p, nil
}
