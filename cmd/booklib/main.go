package main

import (
	"context"
	"log/slog"

	"booklib/config"
	"booklib/internal/delivery"
	"booklib/internal/delivery/api"
	"booklib/internal/delivery/api/middleware"
	"booklib/internal/delivery/api/router/handler"
	"booklib/internal/delivery/worker"
	"booklib/internal/domain/constants"
	"booklib/internal/domain/repository"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
	"booklib/internal/infra/auth"
	"booklib/internal/infra/books"
	"booklib/internal/infra/cache"
	logs "booklib/internal/infra/log"
	"booklib/internal/infra/metrics"
	"booklib/internal/infra/persistence/memory"
	"booklib/internal/infra/persistence/postgres"
	"booklib/internal/infra/pubsub"
	"booklib/internal/usecase/impl"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			service.NewSystemClock,
			newMetricsRegistry,
			cache.New,
		),
		pubsub.Module,
	)
}

// newMetricsRegistry exposes one registry as both the registerer and the /metrics gatherer.
func newMetricsRegistry() (prometheus.Registerer, prometheus.Gatherer) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg, reg
}

type storageParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
	Clock  service.Clock
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newTransactionManager,
		),
	)
}

// newTransactionManager selects the storage driver. The postgres driver applies pending migrations
// first when migrate.autoMigrate is set.
func newTransactionManager(params storageParams) (repository.TransactionManager, error) {
	switch params.Config.Storage.Driver {
	case constants.StorageDriverMemory:
		params.Logger.Warn("Using in-memory storage, data is lost on restart")

		return memory.NewTransactionManager(memory.NewStore(params.Clock)), nil
	case constants.StorageDriverPostgres:
		if params.Config.Migrate.AutoMigrate {
			if err := postgres.RunMigrations(params.Config.Migrate.DatabaseURL, params.Logger); err != nil {
				return nil, errors.Wrap(err, "auto migrate")
			}
		}

		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewTransactionManager(db), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", params.Config.Storage.Driver)
	}
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			books.NewProvider,
			fx.Annotate(
				metrics.NewCollector,
				fx.As(new(service.MetricsRecorder)),
			),
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewUserService,
			impl.NewFavoriteService,
			impl.NewBookService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewFavoriteHandler,
			handler.NewBookHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewLedgerSweeper,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, d := range params.Deliveries {
		go func() {
			if err := d.Serve(ctx); err != nil {
				params.Logger.Error("Delivery stopped with error", slog.Any("error", err))
				_ = params.Shutdown(fx.ExitCode(1))
			}
		}()
	}
}
