package books

import (
	"log/slog"

	"booklib/config"
	"booklib/internal/domain/service"
	"booklib/internal/infra/cache"

	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics service.MetricsRecorder
	Cache   cache.Cache
}

// NewProvider builds the Google Books client, wrapped in the cache when Redis is enabled.
func NewProvider(params Params) (service.BookProvider, error) {
	client, err := NewGoogleBooksClient(params.Config.BookProvider, nil, params.Logger, params.Metrics)
	if err != nil {
		return nil, err
	}

	if params.Config.Redis == nil || !params.Config.Redis.Enabled {
		return client, nil
	}

	return NewCachedProvider(client, params.Cache, params.Config.Redis.CacheTTL, params.Logger, params.Metrics), nil
}
