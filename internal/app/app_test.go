package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusshelf/library-system/internal/infrastructure/config"
	"github.com/campusshelf/library-system/internal/infrastructure/db/memory"
	"github.com/campusshelf/library-system/internal/infrastructure/queue"
)

func newTestApp(t *testing.T, ctx context.Context) *App {
	t.Helper()
	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_BACKEND": "memory",
	}))
	require.NoError(t, err)

	a, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func TestNew_MemoryBackends(t *testing.T) {
	a := newTestApp(t, context.Background())
	defer a.Close(context.Background())

	assert.IsType(t, &memory.Store{}, a.Store)
	assert.IsType(t, &memory.Blocklist{}, a.Blocklist)
	assert.IsType(t, &memory.ResetCodes{}, a.Resets)
	assert.Nil(t, a.Redis)
	assert.Equal(t, devJWTSecret, a.JWTSecret)
}

func TestNew_WritesOutliveStartContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := newTestApp(t, ctx)
	cancel()

	ran := false
	err := a.Executor.Do(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err, "cancelling the start context must not stop the serializer")
	assert.True(t, ran)

	require.NoError(t, a.Close(context.Background()))
	err = a.Executor.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, queue.ErrStopped)
}
