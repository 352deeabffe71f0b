package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// StockMaterializer mantiene el agregado de stock por clave y lo concilia con el libro.
type StockMaterializer struct {
	exec  *executor
	stock repository.StockRepository
	cache StockCache
	opts  Options
	log   *logger.Logger
}

// RebuildReport resultado de comparar el agregado con la suma del libro.
type RebuildReport struct {
	Key        entity.StockKey
	Stored     decimal.Decimal // cantidad materializada antes de la operación
	Derived    decimal.Decimal // Σentrada − Σsalida del libro
	WasHalted  bool
	Consistent bool
	Repaired   bool
}

// CurrentStock lectura O(1) del agregado (caché si está configurada). No toma el lock de la clave.
func (m *StockMaterializer) CurrentStock(ctx context.Context, key entity.StockKey) (decimal.Decimal, error) {
	if err := key.Validate(); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if m.cache != nil {
		q, ok, err := m.cache.Get(ctx, key)
		if err != nil {
			m.log.Warn().Err(err).Str("key", key.String()).Msg("caché de stock no disponible")
		} else if ok {
			return q, nil
		}
	}
	agg, err := m.stock.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if m.cache != nil {
		if err := m.cache.Fill(ctx, key, agg.Quantity); err != nil {
			m.log.Debug().Err(err).Str("key", key.String()).Msg("no se pudo poblar la caché")
		}
	}
	return agg.Quantity, nil
}

// Aggregate devuelve el agregado completo (incluye la marca de bloqueo), sin caché.
func (m *StockMaterializer) Aggregate(ctx context.Context, key entity.StockKey) (*entity.StockAggregate, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return m.stock.Get(ctx, key)
}

// ApplyDelta suma delta al agregado dentro de la transacción del llamador (stockRepo atado a la tx).
// agg es la fila bloqueada al inicio de la unidad. Las compras y compensaciones pueden
// dejar el stock negativo; queda registrado como advertencia. Devuelve la cantidad resultante.
func (m *StockMaterializer) ApplyDelta(ctx context.Context, stockRepo repository.StockRepository, agg *entity.StockAggregate, delta decimal.Decimal) (decimal.Decimal, error) {
	return m.apply(ctx, stockRepo, agg, delta, true)
}

// lockAggregate bloquea la fila del agregado y rechaza claves detenidas por corrupción.
// Se llama al inicio de cada unidad de escritura, antes de tocar compras o libro.
func (m *StockMaterializer) lockAggregate(ctx context.Context, stockRepo repository.StockRepository, key entity.StockKey) (*entity.StockAggregate, error) {
	agg, err := stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if agg.Halted {
		return nil, fmt.Errorf("%w: clave %s detenida hasta reparación", domain.ErrLedgerCorruption, key)
	}
	return agg, nil
}

func (m *StockMaterializer) apply(ctx context.Context, stockRepo repository.StockRepository, agg *entity.StockAggregate, delta decimal.Decimal, allowNegative bool) (decimal.Decimal, error) {
	next := agg.Quantity.Add(delta)
	if next.IsNegative() {
		if !allowNegative {
			return decimal.Zero, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, agg.Quantity, delta.Abs())
		}
		m.log.Warn().Str("key", agg.Key().String()).Str("quantity", next.String()).Msg("stock negativo tras compensación")
	}
	agg.Quantity = next
	agg.UpdatedAt = m.opts.now()
	if err := stockRepo.Upsert(ctx, agg); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

// Rebuild recalcula la clave desde el libro bajo el lock de la clave.
// Si no coincide, marca la clave como detenida y devuelve ErrLedgerCorruption; nunca corrige sola.
func (m *StockMaterializer) Rebuild(ctx context.Context, key entity.StockKey) (*RebuildReport, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	var report *RebuildReport
	err := m.exec.run(ctx, key, "rebuild", func(
		_ repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) (decimal.NullDecimal, error) {
		agg, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		derived, err := movRepo.SumForKey(ctx, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		report = &RebuildReport{
			Key:        key,
			Stored:     agg.Quantity,
			Derived:    derived,
			WasHalted:  agg.Halted,
			Consistent: derived.Equal(agg.Quantity),
		}
		if report.Consistent || agg.Halted {
			return decimal.NullDecimal{}, nil
		}
		// La marca se confirma; el error se devuelve después del commit.
		agg.Halted = true
		agg.UpdatedAt = m.opts.now()
		return decimal.NullDecimal{}, stockRepo.Upsert(ctx, agg)
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		m.log.Error().
			Str("warehouse_id", key.WarehouseID).
			Str("item_kind", string(key.Item.Kind)).
			Str("item_id", key.Item.ID).
			Str("stored", report.Stored.String()).
			Str("derived", report.Derived.String()).
			Msg("stock materializado no coincide con el libro; clave detenida")
		return report, fmt.Errorf("%w: %s almacenado %s, libro %s", domain.ErrLedgerCorruption, key, report.Stored, report.Derived)
	}
	if report.WasHalted {
		return report, fmt.Errorf("%w: clave %s detenida hasta reparación", domain.ErrLedgerCorruption, key)
	}
	return report, nil
}

// Repair sobrescribe el agregado con la suma del libro y levanta la marca de bloqueo.
// Acción explícita de operador.
func (m *StockMaterializer) Repair(ctx context.Context, key entity.StockKey) (*RebuildReport, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	var report *RebuildReport
	err := m.exec.run(ctx, key, "repair", func(
		_ repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) (decimal.NullDecimal, error) {
		agg, err := stockRepo.GetForUpdate(ctx, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		derived, err := movRepo.SumForKey(ctx, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		report = &RebuildReport{
			Key:        key,
			Stored:     agg.Quantity,
			Derived:    derived,
			WasHalted:  agg.Halted,
			Consistent: true,
			Repaired:   !derived.Equal(agg.Quantity) || agg.Halted,
		}
		agg.Quantity = derived
		agg.Halted = false
		agg.UpdatedAt = m.opts.now()
		if err := stockRepo.Upsert(ctx, agg); err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(derived), nil
	})
	if err != nil {
		return nil, err
	}
	if report.Repaired {
		m.log.Warn().
			Str("key", key.String()).
			Str("stored", report.Stored.String()).
			Str("derived", report.Derived.String()).
			Bool("was_halted", report.WasHalted).
			Msg("agregado reparado desde el libro")
	}
	return report, nil
}

// RebuildAll ejecuta Rebuild sobre todas las claves con paralelismo acotado.
// Las claves corruptas quedan en el reporte (Consistent=false) sin detener al resto;
// cualquier otro error cancela la pasada.
func (m *StockMaterializer) RebuildAll(ctx context.Context) ([]*RebuildReport, error) {
	keys, err := m.stock.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		reports = make([]*RebuildReport, 0, len(keys))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.RebuildParallelism)
	for _, key := range keys {
		g.Go(func() error {
			report, err := m.Rebuild(gctx, key)
			if err != nil && !errors.Is(err, domain.ErrLedgerCorruption) {
				return fmt.Errorf("rebuild %s: %w", key, err)
			}
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Key.String() < reports[j].Key.String()
	})
	corrupt := 0
	for _, r := range reports {
		if !r.Consistent || r.WasHalted {
			corrupt++
		}
	}
	m.log.Info().Int("keys", len(reports)).Int("corrupt", corrupt).Msg("reconstrucción completa")
	return reports, nil
}
