// Package cache provides a byte-oriented key/value cache with a Redis implementation and a no-op fallback.
package cache

import (
	"context"
	"log/slog"
	"time"

	"booklib/config"
	"booklib/internal/domain/lifecycle"
	"booklib/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Cache stores opaque values under string keys.
type Cache interface {
	// Get returns the value and true on a hit, nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New returns a Redis-backed cache when redis.enabled is set and a no-op cache otherwise.
func New(params Params) (Cache, error) {
	if params.Config.Redis == nil || !params.Config.Redis.Enabled {
		params.Logger.Info("Redis cache disabled")

		return NewNop(), nil
	}

	client := newRedisClient(params.Config.Redis)

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}
			params.Logger.Info("Redis cache connected", slog.String("addr", params.Config.Redis.Addr))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return NewRedis(client), nil
}

func newRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type redisCache struct {
	client redis.UniversalClient
}

// NewRedis wraps an existing Redis client.
func NewRedis(client redis.UniversalClient) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}

	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}

	return nil
}

type nopCache struct{}

// NewNop returns a cache that never hits.
func NewNop() Cache {
	return nopCache{}
}

func (nopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (nopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
