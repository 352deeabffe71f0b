package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	obsDeactivate = "desactivación de compra"
	obsReactivate = "reactivación de compra"
)

// LifecycleUseCase desactiva y reactiva compras con movimientos compensatorios.
type LifecycleUseCase struct {
	exec      *executor
	purchases repository.PurchaseRepository
	ledger    repository.MovementRepository
	stock     *StockMaterializer
	opts      Options
	log       *logger.Logger
}

// PurchaseAudit compra con los movimientos vinculados y su suma.
type PurchaseAudit struct {
	Purchase  *entity.PurchaseRecord
	Entries   []*entity.MovementEntry
	LinkedSum decimal.Decimal
}

// GetPurchase devuelve la compra o ErrNotFound.
func (uc *LifecycleUseCase) GetPurchase(ctx context.Context, id string) (*entity.PurchaseRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: id de compra inválido", domain.ErrValidation)
	}
	p, err := uc.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: compra %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// Deactivate retira el aporte de la compra al stock con una salida compensatoria.
func (uc *LifecycleUseCase) Deactivate(ctx context.Context, id string) (*entity.PurchaseRecord, error) {
	return uc.toggle(ctx, id, false)
}

// Reactivate devuelve el aporte de la compra con una entrada compensatoria.
// Si la clave ya tiene otra compra activa falla con ErrActiveDuplicate.
func (uc *LifecycleUseCase) Reactivate(ctx context.Context, id string) (*entity.PurchaseRecord, error) {
	return uc.toggle(ctx, id, true)
}

func (uc *LifecycleUseCase) toggle(ctx context.Context, id string, activate bool) (*entity.PurchaseRecord, error) {
	current, err := uc.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	key := current.Key()
	op, direction, obs := "deactivate", entity.DirectionSalida, obsDeactivate
	if activate {
		op, direction, obs = "reactivate", entity.DirectionEntrada, obsReactivate
	}

	var out *entity.PurchaseRecord
	err = uc.exec.run(ctx, key, op, func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) (decimal.NullDecimal, error) {
		out = nil
		purchase, err := purchaseRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		if purchase == nil {
			return decimal.NullDecimal{}, fmt.Errorf("%w: compra %s", domain.ErrNotFound, id)
		}
		if purchase.Active == activate {
			if activate {
				return decimal.NullDecimal{}, fmt.Errorf("%w: %s", domain.ErrAlreadyActive, id)
			}
			return decimal.NullDecimal{}, fmt.Errorf("%w: %s", domain.ErrAlreadyInactive, id)
		}
		agg, err := uc.stock.lockAggregate(ctx, stockRepo, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		if activate {
			other, err := purchaseRepo.FindActiveByKey(ctx, key)
			if err != nil {
				return decimal.NullDecimal{}, err
			}
			if other != nil {
				return decimal.NullDecimal{}, fmt.Errorf("%w: compra activa %s", domain.ErrActiveDuplicate, other.ID)
			}
		}

		now := uc.opts.now()
		purchase.Active = activate
		purchase.UpdatedAt = now
		if err := purchaseRepo.Update(ctx, purchase); err != nil {
			return decimal.NullDecimal{}, err
		}
		entry := newEntry(key, direction, purchase.Quantity, now, entity.SourceCompensation, &purchase.ID, obs)
		if entry.ID, err = movRepo.Append(ctx, entry); err != nil {
			return decimal.NullDecimal{}, err
		}
		stock, err := uc.stock.ApplyDelta(ctx, stockRepo, agg, entry.Signed())
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		out = purchase
		return decimal.NewNullDecimal(stock), nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("purchase_id", id).
		Str("op", op).
		Str("key", key.String()).
		Str("quantity", out.Quantity.String()).
		Msg("ciclo de vida de compra")
	return out, nil
}

// VerifyPurchase comprueba los movimientos vinculados a la compra: compensaciones alternadas
// y suma igual a la cantidad si está activa o cero si no. Una discrepancia es ErrLedgerCorruption.
func (uc *LifecycleUseCase) VerifyPurchase(ctx context.Context, id string) (*PurchaseAudit, error) {
	p, err := uc.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := uc.ledger.ListByPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	audit := &PurchaseAudit{Purchase: p, Entries: entries, LinkedSum: inventory.LedgerBalance(entries)}
	if err := inventory.CheckPurchaseLedger(p, entries); err != nil {
		uc.log.Error().Err(err).Str("purchase_id", id).Str("key", p.Key().String()).Msg("libro de la compra inconsistente")
		return audit, fmt.Errorf("%w: %v", domain.ErrLedgerCorruption, err)
	}
	return audit, nil
}
