package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Deps dependencias del motor. Los repositorios sueltos son para lecturas fuera de transacción.
type Deps struct {
	TxRunner  TxRunner
	Purchases repository.PurchaseRepository
	Ledger    repository.MovementRepository
	Stock     repository.StockRepository
	Catalog   repository.CatalogRepository
	Locker    KeyLocker      // nil = LocalLocker
	Cache     StockCache     // opcional
	Renderer  KardexRenderer // opcional, para el kardex en PDF
	Logger    *logger.Logger // nil = sin logs
}

// Engine agrupa los casos de uso del motor de conciliación. Todos comparten el mismo
// executor, así intake, ciclo de vida y reconstrucción se excluyen por clave entre sí.
type Engine struct {
	Intake    *IntakeUseCase
	Lifecycle *LifecycleUseCase
	Stock     *StockMaterializer
	Ledger    *LedgerUseCase
	Movements *ManualMovementUseCase
}

// NewEngine construye el motor.
func NewEngine(deps Deps, opts Options) *Engine {
	opts = opts.withDefaults()
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	locker := deps.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	exec := &executor{
		tx:     deps.TxRunner,
		locker: locker,
		cache:  deps.Cache,
		opts:   opts,
		log:    log.Component("executor"),
	}

	stock := &StockMaterializer{
		exec:  exec,
		stock: deps.Stock,
		cache: deps.Cache,
		opts:  opts,
		log:   log.Component("materializer"),
	}
	return &Engine{
		Intake: &IntakeUseCase{
			exec:    exec,
			catalog: deps.Catalog,
			stock:   stock,
			opts:    opts,
			log:     log.Component("intake"),
		},
		Lifecycle: &LifecycleUseCase{
			exec:      exec,
			purchases: deps.Purchases,
			ledger:    deps.Ledger,
			stock:     stock,
			opts:      opts,
			log:       log.Component("lifecycle"),
		},
		Stock: stock,
		Ledger: &LedgerUseCase{
			ledger:   deps.Ledger,
			renderer: deps.Renderer,
			opts:     opts,
		},
		Movements: &ManualMovementUseCase{
			exec:    exec,
			catalog: deps.Catalog,
			stock:   stock,
			opts:    opts,
			log:     log.Component("movements"),
		},
	}
}
