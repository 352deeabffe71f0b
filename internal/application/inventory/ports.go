package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// La implementación toma el lock de la clave dentro de la transacción antes de llamar a fn,
// así la unidad lectura-fusión-escritura es serializable por (bodega, ítem).
type TxRunner interface {
	Run(ctx context.Context, key entity.StockKey, fn func(
		purchaseRepo repository.PurchaseRepository,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// KeyLocker exclusión mutua por clave previa a la transacción (proceso o clúster).
// Si el lock no se obtiene a tiempo devuelve domain.ErrConcurrencyConflict.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// StockCache caché de lectura de CurrentStock.
// Set sobrescribe (escritores, con el lock de la clave tomado); Fill solo escribe si no hay valor
// (lectores), de modo que una lectura vieja nunca pisa el valor de una escritura confirmada.
type StockCache interface {
	Get(ctx context.Context, key entity.StockKey) (decimal.Decimal, bool, error)
	Fill(ctx context.Context, key entity.StockKey, quantity decimal.Decimal) error
	Set(ctx context.Context, key entity.StockKey, quantity decimal.Decimal) error
	Invalidate(ctx context.Context, key entity.StockKey) error
}

// KardexRenderer genera la representación imprimible del kardex de una clave.
type KardexRenderer interface {
	RenderKardex(ctx context.Context, kardex *Kardex) ([]byte, error)
}
