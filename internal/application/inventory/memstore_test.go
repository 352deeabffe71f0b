package inventory_test

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// memStore: almacenamiento en memoria con transacciones (snapshot + rollback).
// Las transacciones se serializan con un mutex global; los repositorios devuelven
// copias para que el caso de uso no pueda mutar el estado sin pasar por Update/Upsert.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu sync.Mutex

	purchases map[string]entity.PurchaseRecord
	entries   []entity.MovementEntry
	stock     map[entity.StockKey]entity.StockAggregate
	seq       int64

	warehouses map[string]entity.CatalogStatus
	items      map[entity.ItemRef]entity.CatalogStatus

	// conflicts número de Run que fallan con conflicto antes de ejecutar fn.
	conflicts int
	runs      int
	// failAppend error inyectado en Append (simula caída a mitad de la unidad).
	failAppend error
}

func newMemStore() *memStore {
	return &memStore{
		purchases:  make(map[string]entity.PurchaseRecord),
		stock:      make(map[entity.StockKey]entity.StockAggregate),
		warehouses: make(map[string]entity.CatalogStatus),
		items:      make(map[entity.ItemRef]entity.CatalogStatus),
	}
}

func (s *memStore) addWarehouse(id string, active bool) {
	s.warehouses[id] = entity.CatalogStatus{Exists: true, Active: active}
}

func (s *memStore) addItem(ref entity.ItemRef, active bool) {
	s.items[ref] = entity.CatalogStatus{Exists: true, Active: active}
}

type memSnapshot struct {
	purchases map[string]entity.PurchaseRecord
	entries   []entity.MovementEntry
	stock     map[entity.StockKey]entity.StockAggregate
	seq       int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		purchases: make(map[string]entity.PurchaseRecord, len(s.purchases)),
		entries:   append([]entity.MovementEntry(nil), s.entries...),
		stock:     make(map[entity.StockKey]entity.StockAggregate, len(s.stock)),
		seq:       s.seq,
	}
	for k, v := range s.purchases {
		snap.purchases[k] = v
	}
	for k, v := range s.stock {
		snap.stock[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.purchases = snap.purchases
	s.entries = snap.entries
	s.stock = snap.stock
	s.seq = snap.seq
}

// Run implementa inventory.TxRunner.
func (s *memStore) Run(ctx context.Context, _ entity.StockKey, fn func(
	purchaseRepo repository.PurchaseRepository,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	if s.conflicts > 0 {
		s.conflicts--
		return domain.ErrConcurrencyConflict
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	tx := &memView{s: s, inTx: true}
	if err := fn(tx, tx, tx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// view fuera de transacción (lecturas del motor).
func (s *memStore) view() *memView {
	return &memView{s: s}
}

// ledgerFor copia del libro de una clave (para asserts).
func (s *memStore) ledgerFor(key entity.StockKey) []entity.MovementEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.MovementEntry
	for _, e := range s.entries {
		if e.Key() == key {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) activeFor(key entity.StockKey) []entity.PurchaseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.PurchaseRecord
	for _, p := range s.purchases {
		if p.Active && p.Key() == key {
			out = append(out, p)
		}
	}
	return out
}

func (s *memStore) setStock(key entity.StockKey, q decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := s.stock[key]
	agg.WarehouseID, agg.Item, agg.Quantity = key.WarehouseID, key.Item, q
	s.stock[key] = agg
}

// dropStock simula la pérdida de la fila del agregado.
func (s *memStore) dropStock(key entity.StockKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stock, key)
}

func (s *memStore) storedStock(key entity.StockKey) entity.StockAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[key]
}

// memView implementa los cuatro repositorios sobre memStore.
type memView struct {
	s    *memStore
	inTx bool
}

var (
	_ repository.PurchaseRepository = (*memView)(nil)
	_ repository.MovementRepository = (*memView)(nil)
	_ repository.StockRepository    = (*memView)(nil)
	_ repository.CatalogRepository  = (*memView)(nil)
)

func (v *memView) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

// --- compras ---

func (v *memView) Create(_ context.Context, p *entity.PurchaseRecord) error {
	defer v.lock()()
	if p.Active && v.hasOtherActive(p) {
		return domain.ErrConcurrencyConflict
	}
	v.s.purchases[p.ID] = *p
	return nil
}

func (v *memView) hasOtherActive(p *entity.PurchaseRecord) bool {
	for id, other := range v.s.purchases {
		if id != p.ID && other.Active && other.Key() == p.Key() {
			return true
		}
	}
	return false
}

func (v *memView) GetByID(_ context.Context, id string) (*entity.PurchaseRecord, error) {
	defer v.lock()()
	p, ok := v.s.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *memView) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseRecord, error) {
	return v.GetByID(ctx, id)
}

func (v *memView) FindActiveByKey(_ context.Context, key entity.StockKey) (*entity.PurchaseRecord, error) {
	defer v.lock()()
	for _, p := range v.s.purchases {
		if p.Active && p.Key() == key {
			return &p, nil
		}
	}
	return nil, nil
}

func (v *memView) Update(_ context.Context, p *entity.PurchaseRecord) error {
	defer v.lock()()
	stored, ok := v.s.purchases[p.ID]
	if !ok || stored.Version != p.Version {
		return domain.ErrConcurrencyConflict
	}
	if p.Active && v.hasOtherActive(p) {
		return domain.ErrConcurrencyConflict
	}
	p.Version++
	v.s.purchases[p.ID] = *p
	return nil
}

// --- libro ---

func (v *memView) Append(_ context.Context, e *entity.MovementEntry) (string, error) {
	defer v.lock()()
	if v.s.failAppend != nil {
		return "", v.s.failAppend
	}
	v.s.seq++
	e.Seq = v.s.seq
	e.ID = "mov-" + strconv.FormatInt(v.s.seq, 10)
	v.s.entries = append(v.s.entries, *e)
	return e.ID, nil
}

func (v *memView) ListForKey(_ context.Context, key entity.StockKey, f entity.LedgerFilter) ([]*entity.MovementEntry, error) {
	defer v.lock()()
	var out []*entity.MovementEntry
	for _, e := range v.s.entries {
		if e.Key() != key || e.Seq <= f.After {
			continue
		}
		if f.From != nil && e.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.OccurredAt.Before(*f.To) {
			continue
		}
		e := e
		out = append(out, &e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (v *memView) SumForKey(_ context.Context, key entity.StockKey) (decimal.Decimal, error) {
	defer v.lock()()
	sum := decimal.Zero
	for _, e := range v.s.entries {
		if e.Key() == key {
			sum = sum.Add(e.Signed())
		}
	}
	return sum, nil
}

func (v *memView) ListByPurchase(_ context.Context, id string) ([]*entity.MovementEntry, error) {
	defer v.lock()()
	var out []*entity.MovementEntry
	for _, e := range v.s.entries {
		if e.LinkedPurchaseID != nil && *e.LinkedPurchaseID == id {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

// --- agregado ---

func (v *memView) Get(_ context.Context, key entity.StockKey) (*entity.StockAggregate, error) {
	defer v.lock()()
	agg, ok := v.s.stock[key]
	if !ok {
		return &entity.StockAggregate{WarehouseID: key.WarehouseID, Item: key.Item, Quantity: decimal.Zero}, nil
	}
	return &agg, nil
}

func (v *memView) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockAggregate, error) {
	return v.Get(ctx, key)
}

func (v *memView) Upsert(_ context.Context, agg *entity.StockAggregate) error {
	defer v.lock()()
	v.s.stock[agg.Key()] = *agg
	return nil
}

func (v *memView) ListKeys(_ context.Context) ([]entity.StockKey, error) {
	defer v.lock()()
	seen := make(map[entity.StockKey]struct{}, len(v.s.stock))
	for k := range v.s.stock {
		seen[k] = struct{}{}
	}
	for _, e := range v.s.entries {
		seen[e.Key()] = struct{}{}
	}
	keys := make([]entity.StockKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys, nil
}

// --- catálogo ---

func (v *memView) ResolveWarehouse(_ context.Context, id string) (entity.CatalogStatus, error) {
	defer v.lock()()
	return v.s.warehouses[id], nil
}

func (v *memView) ResolveItem(_ context.Context, ref entity.ItemRef) (entity.CatalogStatus, error) {
	defer v.lock()()
	return v.s.items[ref], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// memCache: StockCache en memoria que registra las escrituras.
// ──────────────────────────────────────────────────────────────────────────────

type memCache struct {
	mu     sync.Mutex
	values map[entity.StockKey]decimal.Decimal
	sets   int
	fills  int
}

func newMemCache() *memCache {
	return &memCache{values: make(map[entity.StockKey]decimal.Decimal)}
}

func (c *memCache) Get(_ context.Context, key entity.StockKey) (decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.values[key]
	return q, ok, nil
}

func (c *memCache) Fill(_ context.Context, key entity.StockKey, q decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fills++
	if _, ok := c.values[key]; !ok {
		c.values[key] = q
	}
	return nil
}

func (c *memCache) Set(_ context.Context, key entity.StockKey, q decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.values[key] = q
	return nil
}

func (c *memCache) Invalidate(_ context.Context, key entity.StockKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
