package redisstore_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/redisstore"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var testKey = entity.StockKey{
	WarehouseID: "11111111-1111-1111-1111-111111111111",
	Item:        entity.ItemRef{Kind: entity.ItemKindProduct, ID: "22222222-2222-2222-2222-222222222222"},
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ──────────────────────────────────────────────────────────────────────────────
// StockCache
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCache_SetGetInvalidate(t *testing.T) {
	_, client := setupRedis(t)
	cache := redisstore.NewStockCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, testKey, decimal.RequireFromString("15.25")))
	q, ok, err := cache.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "15.25", q.String())

	require.NoError(t, cache.Invalidate(ctx, testKey))
	_, ok, err = cache.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStockCache_FillNoPisaValorDeEscritor(t *testing.T) {
	_, client := setupRedis(t)
	cache := redisstore.NewStockCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testKey, decimal.NewFromInt(20)))
	// Un lector con un valor viejo llega tarde.
	require.NoError(t, cache.Fill(ctx, testKey, decimal.NewFromInt(10)))

	q, ok, err := cache.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "20", q.String())
}

func TestStockCache_Expira(t *testing.T) {
	mr, client := setupRedis(t)
	cache := redisstore.NewStockCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Fill(ctx, testKey, decimal.NewFromInt(3)))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStockCache_ValorInvalidoSeDescarta(t *testing.T) {
	mr, client := setupRedis(t)
	cache := redisstore.NewStockCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("stock-ledger:stock:"+testKey.String(), "no-numero"))
	_, ok, err := cache.Get(ctx, testKey)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("stock-ledger:stock:"+testKey.String()))
}

// ──────────────────────────────────────────────────────────────────────────────
// KeyLocker
// ──────────────────────────────────────────────────────────────────────────────

func TestKeyLocker_ExclusionYLiberacion(t *testing.T) {
	_, client := setupRedis(t)
	l := redisstore.NewKeyLocker(client, 5*time.Second, 100*time.Millisecond, logger.Nop())
	ctx := context.Background()

	unlock, err := l.Lock(ctx, testKey.String())
	require.NoError(t, err)

	_, err = l.Lock(ctx, testKey.String())
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict, "la clave ocupada no se obtiene dentro de wait")

	other, err := l.Lock(ctx, "otra-clave")
	require.NoError(t, err, "claves distintas no se bloquean")
	other()

	unlock()
	again, err := l.Lock(ctx, testKey.String())
	require.NoError(t, err)
	again()
}

func TestKeyLocker_EsperaHastaQueSeLibere(t *testing.T) {
	_, client := setupRedis(t)
	l := redisstore.NewKeyLocker(client, 5*time.Second, 2*time.Second, logger.Nop())
	ctx := context.Background()

	unlock, err := l.Lock(ctx, testKey.String())
	require.NoError(t, err)
	go func() {
		time.Sleep(100 * time.Millisecond)
		unlock()
	}()

	second, err := l.Lock(ctx, testKey.String())
	require.NoError(t, err)
	second()
}

func TestKeyLocker_ExpiraPorTTL(t *testing.T) {
	mr, client := setupRedis(t)
	l := redisstore.NewKeyLocker(client, time.Second, 50*time.Millisecond, logger.Nop())
	ctx := context.Background()

	_, err := l.Lock(ctx, testKey.String())
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlock, err := l.Lock(ctx, testKey.String())
	require.NoError(t, err, "un lock vencido no bloquea para siempre")
	unlock()
}
