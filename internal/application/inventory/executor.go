package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// unitFunc cuerpo de una unidad atómica. Devuelve el stock de la clave tras la unidad
// (Valid=false si no cambió) para refrescar la caché después del commit.
type unitFunc func(
	purchaseRepo repository.PurchaseRepository,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
) (decimal.NullDecimal, error)

// executor serializa unidades por clave: lock → transacción → caché, con reintentos ante conflicto.
type executor struct {
	tx     TxRunner
	locker KeyLocker
	cache  StockCache
	opts   Options
	log    *logger.Logger
}

func (x *executor) run(ctx context.Context, key entity.StockKey, op string, fn unitFunc) error {
	for attempt := 0; ; attempt++ {
		err := x.runOnce(ctx, key, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt >= x.opts.MaxRetries {
			x.log.Warn().Err(err).
				Str("op", op).Str("key", key.String()).Int("attempts", attempt+1).
				Msg("reintentos agotados")
			return err
		}
		x.log.Debug().Err(err).Str("op", op).Str("key", key.String()).Int("attempt", attempt+1).Msg("conflicto, reintentando")

		wait := x.opts.RetryBackoff * time.Duration(attempt+1)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (x *executor) runOnce(ctx context.Context, key entity.StockKey, fn unitFunc) error {
	unlock, err := x.locker.Lock(ctx, key.String())
	if err != nil {
		return err
	}
	defer unlock()

	var after decimal.NullDecimal
	err = x.tx.Run(ctx, key, func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		var err error
		after, err = fn(purchaseRepo, movRepo, stockRepo)
		return err
	})
	if x.cache == nil {
		return err
	}
	if err != nil {
		// Resultado del commit incierto: mejor forzar relectura.
		if !isDomainRejection(err) {
			_ = x.cache.Invalidate(ctx, key)
		}
		return err
	}
	if after.Valid {
		// Todavía con el lock de la clave: los Set quedan en el mismo orden que los commits.
		if err := x.cache.Set(ctx, key, after.Decimal); err != nil {
			x.log.Warn().Err(err).Str("key", key.String()).Msg("no se pudo actualizar la caché de stock")
			_ = x.cache.Invalidate(ctx, key)
		}
	}
	return nil
}

// isDomainRejection errores de negocio detectados antes de escribir: la tx se revirtió limpia.
func isDomainRejection(err error) bool {
	for _, target := range []error{
		domain.ErrValidation, domain.ErrNotFound, domain.ErrAlreadyActive, domain.ErrAlreadyInactive,
		domain.ErrActiveDuplicate, domain.ErrInsufficientStock, domain.ErrLedgerCorruption,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
