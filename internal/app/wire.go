// Package app arma el motor de conciliación con sus adaptadores a partir de la configuración.
// Lo comparten el servidor HTTP y la herramienta de reconstrucción.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/redisstore"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Runtime motor listo para usar y los recursos que hay que cerrar al salir.
type Runtime struct {
	Engine *inventory.Engine
	Pool   *pgxpool.Pool
	Redis  *redis.Client // nil si REDIS_ADDR está vacío
}

// Close libera Redis y el pool.
func (r *Runtime) Close() {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
}

// Build conecta PostgreSQL (y Redis si está configurado) y construye el motor.
// renderer puede ser nil: el kardex en PDF responde ErrNoRenderer.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger, renderer inventory.KardexRenderer) (*Runtime, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	rt := &Runtime{Pool: pool}

	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			rt.Close()
			return nil, fmt.Errorf("migración: %w", err)
		}
		log.Info().Msg("esquema aplicado")
	}

	deps := inventory.Deps{
		TxRunner:  postgres.NewTxRunner(pool, cfg.Engine.LockWait),
		Purchases: postgres.NewPurchaseRepository(pool),
		Ledger:    postgres.NewMovementRepository(pool),
		Stock:     postgres.NewStockRepository(pool),
		Catalog:   postgres.NewCatalogRepository(pool),
		Renderer:  renderer,
		Logger:    log,
	}

	if cfg.Redis.Enabled() {
		client, err := redisstore.NewClient(ctx, cfg.Redis, log.Component("redis"))
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Redis = client
		deps.Locker = redisstore.NewKeyLocker(client, cfg.Engine.LockTTL, cfg.Engine.LockWait, log.Component("redislock"))
		deps.Cache = redisstore.NewStockCache(client, cfg.Redis.CacheTTL)
	} else {
		log.Info().Msg("REDIS_ADDR vacío: lock por clave en proceso y sin caché de stock")
	}

	rt.Engine = inventory.NewEngine(deps, inventory.Options{
		MaxRetries:         cfg.Engine.MaxRetries,
		RetryBackoff:       cfg.Engine.RetryBackoff,
		RebuildParallelism: cfg.Engine.RebuildParallelism,
		Location:           cfg.App.Location(),
	})
	return rt, nil
}
