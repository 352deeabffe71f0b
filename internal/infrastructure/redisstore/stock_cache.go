package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.StockCache = (*StockCache)(nil)

// StockCache caché de CurrentStock. El valor se guarda como texto decimal exacto.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStockCache ttl 0 = sin expiración.
func NewStockCache(client *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{client: client, ttl: ttl}
}

func cacheKey(key entity.StockKey) string {
	return keyPrefix + "stock:" + key.String()
}

// Get devuelve (cantidad, true) si hay valor.
func (c *StockCache) Get(ctx context.Context, key entity.StockKey) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("cache get: %w", err)
	}
	q, err := decimal.NewFromString(raw)
	if err != nil {
		// Valor ilegible: se descarta para que la próxima lectura lo repueble.
		_ = c.client.Del(ctx, cacheKey(key)).Err()
		return decimal.Zero, false, fmt.Errorf("cache valor inválido %q: %w", raw, err)
	}
	return q, true, nil
}

// Fill escribe solo si no hay valor (SET NX); lo usan los lectores.
func (c *StockCache) Fill(ctx context.Context, key entity.StockKey, quantity decimal.Decimal) error {
	if err := c.client.SetNX(ctx, cacheKey(key), quantity.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache fill: %w", err)
	}
	return nil
}

// Set sobrescribe; lo usan los escritores con el lock de la clave tomado.
func (c *StockCache) Set(ctx context.Context, key entity.StockKey, quantity decimal.Decimal) error {
	if err := c.client.Set(ctx, cacheKey(key), quantity.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate borra el valor de la clave.
func (c *StockCache) Invalidate(ctx context.Context, key entity.StockKey) error {
	if err := c.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
