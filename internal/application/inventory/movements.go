package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// MovementInput movimiento manual (ajustes, consumos) sin compra asociada.
type MovementInput struct {
	WarehouseID  string
	Item         entity.ItemRef
	Direction    entity.Direction
	Quantity     decimal.Decimal
	Observations string
}

// MovementResult movimiento escrito y stock resultante.
type MovementResult struct {
	Entry *entity.MovementEntry
	Stock decimal.Decimal
}

// ManualMovementUseCase registra movimientos con origen manual.
type ManualMovementUseCase struct {
	exec    *executor
	catalog repository.CatalogRepository
	stock   *StockMaterializer
	opts    Options
	log     *logger.Logger
}

// RecordMovement agrega el movimiento y ajusta el agregado en la misma unidad.
// Una salida mayor al stock disponible falla con ErrInsufficientStock sin escribir nada.
func (uc *ManualMovementUseCase) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if _, err := uuid.Parse(in.WarehouseID); err != nil {
		return nil, fmt.Errorf("%w: id de bodega inválido", domain.ErrValidation)
	}
	if err := in.Item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if in.Direction != entity.DirectionEntrada && in.Direction != entity.DirectionSalida {
		return nil, fmt.Errorf("%w: dirección desconocida %q", domain.ErrValidation, in.Direction)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrValidation)
	}
	obs, err := normalizeObservations(in.Observations)
	if err != nil {
		return nil, err
	}
	key := entity.StockKey{WarehouseID: in.WarehouseID, Item: in.Item}
	if err := resolveKey(ctx, uc.catalog, key); err != nil {
		return nil, err
	}

	var result *MovementResult
	err = uc.exec.run(ctx, key, "movement", func(
		_ repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) (decimal.NullDecimal, error) {
		result = nil
		agg, err := uc.stock.lockAggregate(ctx, stockRepo, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		entry := newEntry(key, in.Direction, in.Quantity, uc.opts.now(), entity.SourceManual, nil, obs)
		if agg.Quantity.Add(entry.Signed()).IsNegative() {
			return decimal.NullDecimal{}, fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, agg.Quantity, in.Quantity)
		}
		if entry.ID, err = movRepo.Append(ctx, entry); err != nil {
			return decimal.NullDecimal{}, err
		}
		stock, err := uc.stock.apply(ctx, stockRepo, agg, entry.Signed(), false)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		result = &MovementResult{Entry: entry, Stock: stock}
		return decimal.NewNullDecimal(stock), nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("entry_id", result.Entry.ID).
		Str("direction", string(in.Direction)).
		Str("key", key.String()).
		Str("stock", result.Stock.String()).
		Msg("movimiento manual registrado")
	return result, nil
}
