package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ inventory.KeyLocker = (*KeyLocker)(nil)

// KeyLocker lock por clave compartido entre instancias (bsm/redislock).
type KeyLocker struct {
	locker  *redislock.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	log     *logger.Logger
}

// NewKeyLocker ttl es la vigencia del lock (debe cubrir la transacción más larga);
// wait es cuánto se reintenta antes de rendirse.
func NewKeyLocker(client *redis.Client, ttl, wait time.Duration, log *logger.Logger) *KeyLocker {
	return &KeyLocker{
		locker:  redislock.New(client),
		ttl:     ttl,
		wait:    wait,
		backoff: 25 * time.Millisecond,
		log:     log,
	}
}

// Lock obtiene el lock de la clave reintentando con backoff lineal hasta wait.
// Si no se obtiene devuelve domain.ErrConcurrencyConflict.
func (l *KeyLocker) Lock(ctx context.Context, key string) (func(), error) {
	obtainCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		obtainCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	lock, err := l.locker.Obtain(obtainCtx, keyPrefix+"lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: lock de %s ocupado", domain.ErrConcurrencyConflict, key)
		}
		return nil, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	return func() {
		// Contexto propio: el de la petición puede estar cancelado.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock")
		}
	}, nil
}
