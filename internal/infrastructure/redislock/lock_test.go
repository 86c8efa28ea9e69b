package redislock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Leadius-api/internal/infrastructure/redislock"
	"github.com/jhoicas/Leadius-api/pkg/config"
)

func TestNew_SinClienteUsaLockLocal(t *testing.T) {
	l := redislock.New(nil)
	_, ok := l.(*redislock.Local)
	assert.True(t, ok)
}

func TestNewClient_SinDireccion(t *testing.T) {
	c, err := redislock.NewClient(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestLocal_SegundoIntentoFallaHastaLiberar(t *testing.T) {
	l := redislock.NewLocal()
	ctx := context.Background()

	unlock, ok, err := l.TryLock(ctx, "ingest", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "ingest", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "la clave está tomada")

	_, ok, _ = l.TryLock(ctx, "otra", time.Minute)
	assert.True(t, ok, "claves distintas no se bloquean entre sí")

	unlock()
	unlock() // idempotente

	_, ok, _ = l.TryLock(ctx, "ingest", time.Minute)
	assert.True(t, ok)
}

func TestLocal_SoloUnGanadorConcurrente(t *testing.T) {
	l := redislock.NewLocal()
	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := l.TryLock(context.Background(), "ingest", time.Minute); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners)
}
