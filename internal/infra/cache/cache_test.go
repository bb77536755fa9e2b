package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"booklib/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNop_NeverHits(t *testing.T) {
	c := NewNop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, value)
}

func TestNew_DisabledReturnsNop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	c, err := New(Params{
		Lifecycle: lc,
		Config:    &config.Config{Redis: &config.RedisConfig{Enabled: false}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	assert.IsType(t, nopCache{}, c)
}

func TestNew_EnabledReturnsRedis(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	c, err := New(Params{
		Lifecycle: lc,
		Config:    &config.Config{Redis: &config.RedisConfig{Enabled: true, Addr: "127.0.0.1:0"}},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	assert.IsType(t, &redisCache{}, c)
}
