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

// IntakeAction resultado de un ingreso sobre el registro de compra.
type IntakeAction string

const (
	ActionCreated IntakeAction = "created"
	ActionUpdated IntakeAction = "updated"
)

// IntakeInput solicitud de ingreso de mercancía.
type IntakeInput struct {
	WarehouseID  string
	Item         entity.ItemRef
	SupplierID   string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	EntryDate    entity.Date // vacía = hoy
	Observations string
}

// IntakeResult registro resultante, movimiento escrito y stock de la clave tras el ingreso.
type IntakeResult struct {
	Purchase *entity.PurchaseRecord
	Action   IntakeAction
	Entry    *entity.MovementEntry
	Stock    decimal.Decimal
}

// IntakeUseCase procesa ingresos con fusión sobre la compra activa de la misma clave.
type IntakeUseCase struct {
	exec    *executor
	catalog repository.CatalogRepository
	stock   *StockMaterializer
	opts    Options
	log     *logger.Logger
}

// Intake valida, resuelve el catálogo y luego, en una sola unidad atómica por clave,
// crea o fusiona el registro de compra, agrega una entrada al libro y suma al agregado.
func (uc *IntakeUseCase) Intake(ctx context.Context, in IntakeInput) (*IntakeResult, error) {
	obs, err := uc.validate(&in)
	if err != nil {
		return nil, err
	}
	key := entity.StockKey{WarehouseID: in.WarehouseID, Item: in.Item}
	if err := resolveKey(ctx, uc.catalog, key); err != nil {
		return nil, err
	}

	var result *IntakeResult
	err = uc.exec.run(ctx, key, "intake", func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) (decimal.NullDecimal, error) {
		result = nil
		agg, err := uc.stock.lockAggregate(ctx, stockRepo, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		now := uc.opts.now()

		purchase, err := purchaseRepo.FindActiveByKey(ctx, key)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		action := ActionUpdated
		if purchase == nil {
			action = ActionCreated
			purchase = &entity.PurchaseRecord{
				ID:          uuid.New().String(),
				WarehouseID: key.WarehouseID,
				Item:        key.Item,
				SupplierID:  in.SupplierID,
				Quantity:    in.Quantity,
				UnitPrice:   in.UnitPrice,
				TotalCost:   inventory.LineCost(in.Quantity, in.UnitPrice),
				EntryDate:   in.EntryDate,
				Active:      true,
				Version:     1,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := purchaseRepo.Create(ctx, purchase); err != nil {
				return decimal.NullDecimal{}, err
			}
		} else {
			// Primer proveedor y primera fecha se conservan; solo crecen cantidad y costo.
			purchase.Quantity, purchase.TotalCost, purchase.UnitPrice = inventory.MergeCost(
				purchase.Quantity, purchase.TotalCost, purchase.UnitPrice, in.Quantity, in.UnitPrice)
			purchase.UpdatedAt = now
			if err := purchaseRepo.Update(ctx, purchase); err != nil {
				return decimal.NullDecimal{}, err
			}
		}

		entry := newEntry(key, entity.DirectionEntrada, in.Quantity, now, entity.SourcePurchase, &purchase.ID, obs)
		if entry.ID, err = movRepo.Append(ctx, entry); err != nil {
			return decimal.NullDecimal{}, err
		}
		stock, err := uc.stock.ApplyDelta(ctx, stockRepo, agg, in.Quantity)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		result = &IntakeResult{Purchase: purchase, Action: action, Entry: entry, Stock: stock}
		return decimal.NewNullDecimal(stock), nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Debug().
		Str("purchase_id", result.Purchase.ID).
		Str("action", string(result.Action)).
		Str("key", key.String()).
		Str("quantity", in.Quantity.String()).
		Str("stock", result.Stock.String()).
		Msg("ingreso registrado")
	return result, nil
}

func (uc *IntakeUseCase) validate(in *IntakeInput) (string, error) {
	if _, err := uuid.Parse(in.WarehouseID); err != nil {
		return "", fmt.Errorf("%w: id de bodega inválido", domain.ErrValidation)
	}
	if err := in.Item.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if _, err := uuid.Parse(in.SupplierID); err != nil {
		return "", fmt.Errorf("%w: id de proveedor inválido", domain.ErrValidation)
	}
	if !in.Quantity.IsPositive() {
		return "", fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrValidation)
	}
	if !in.UnitPrice.IsPositive() {
		return "", fmt.Errorf("%w: el precio unitario debe ser mayor a cero", domain.ErrValidation)
	}
	if !in.UnitPrice.Equal(in.UnitPrice.Round(inventory.MoneyPlaces)) {
		return "", fmt.Errorf("%w: el precio unitario admite máximo %d decimales", domain.ErrValidation, inventory.MoneyPlaces)
	}
	today := uc.opts.today()
	if in.EntryDate.IsZero() {
		in.EntryDate = today
	}
	if in.EntryDate.After(today) {
		return "", fmt.Errorf("%w: fecha de ingreso %s posterior a hoy (%s)", domain.ErrValidation, in.EntryDate, today)
	}
	return normalizeObservations(in.Observations)
}

// resolveKey comprueba bodega e ítem contra el catálogo antes de cualquier escritura.
func resolveKey(ctx context.Context, catalog repository.CatalogRepository, key entity.StockKey) error {
	wh, err := catalog.ResolveWarehouse(ctx, key.WarehouseID)
	if err != nil {
		return fmt.Errorf("resolver bodega: %w", err)
	}
	if !wh.Exists {
		return fmt.Errorf("%w: bodega %s no existe", domain.ErrInvalidReference, key.WarehouseID)
	}
	if !wh.Active {
		return fmt.Errorf("%w: %s", domain.ErrInactiveWarehouse, key.WarehouseID)
	}
	item, err := catalog.ResolveItem(ctx, key.Item)
	if err != nil {
		return fmt.Errorf("resolver ítem: %w", err)
	}
	if !item.Exists {
		return fmt.Errorf("%w: ítem %s no existe", domain.ErrInvalidReference, key.Item)
	}
	if !item.Active {
		return fmt.Errorf("%w: ítem %s deshabilitado", domain.ErrInvalidReference, key.Item)
	}
	return nil
}
