package inventory_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

func TestLocalLocker_ExclusionPorClave(t *testing.T) {
	l := inventory.NewLocalLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		u, err := l.Lock(ctx, "a")
		if err == nil {
			acquired.Store(true)
			u()
		}
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, acquired.Load(), "la misma clave debe esperar")

	unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el segundo Lock no obtuvo la clave tras liberar")
	}
	assert.True(t, acquired.Load())
}

func TestLocalLocker_ClavesDistintasNoSeBloquean(t *testing.T) {
	l := inventory.NewLocalLocker()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ua, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer ua()

	ub, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	ub()
}

func TestLocalLocker_CancelacionDelContexto(t *testing.T) {
	l := inventory.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLocker_UnlockIdempotente(t *testing.T) {
	l := inventory.NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock()
	unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	again, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	again()
}
