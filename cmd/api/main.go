// Command api serves the notifications REST API and both ports of the
// real-time bridge: the client-facing WebSocket port and the internal
// producer port the notifier relays through.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pulse/pkg/api"
	"github.com/dmitrymomot/pulse/pkg/bus"
	"github.com/dmitrymomot/pulse/pkg/config"
	"github.com/dmitrymomot/pulse/pkg/httpserver"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/mongo"
	"github.com/dmitrymomot/pulse/pkg/notifications"
	"github.com/dmitrymomot/pulse/pkg/publisher"
	"github.com/dmitrymomot/pulse/pkg/realtime"
	pulseredis "github.com/dmitrymomot/pulse/pkg/redis"
)

type appConfig struct {
	Env          string        `env:"APP_ENV" envDefault:"development"`
	ServiceName  string        `env:"APP_SERVICE_NAME" envDefault:"pulse-api"`
	LogLevel     string        `env:"APP_LOG_LEVEL"` // overrides the APP_ENV default when set
	CloseTimeout time.Duration `env:"APP_CLOSE_TIMEOUT" envDefault:"10s"`

	HTTP      httpserver.Config `envPrefix:"API_"`
	Redis     pulseredis.Config
	Mongo     mongo.Config
	Bus       bus.Config
	Publisher publisher.Config
	Realtime  realtime.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(api.RequestIDExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "api stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.LogAttrs(ctx, slog.LevelInfo, "api stopped")
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	db, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.CloseTimeout)
		defer cancel()
		_ = db.Client().Disconnect(closeCtx)
	}()

	storage := notifications.NewMongoStorage(db)
	if err := storage.EnsureIndexes(ctx); err != nil {
		return err
	}
	manager := notifications.NewManager(storage, nil, notifications.WithManagerLogger(log))

	pub, err := publisher.New(
		bus.NewRedisDialer(cfg.Redis, cfg.Bus, bus.WithDialerLogger(log)),
		publisher.WithConfig(cfg.Publisher),
		publisher.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()

	// The API stays up while the bus is down; Publish reports false and the
	// next call redials.
	if err := pub.Connect(ctx); err != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "bus unavailable at startup", logger.Error(err))
	}

	handler, err := api.NewHandler(manager, pub, api.WithLogger(log))
	if err != nil {
		return err
	}
	router := api.NewRouter(handler, api.RouterOptions{
		Logger: log,
		Checks: []httpserver.Check{
			{Name: "mongo", Fn: mongo.Healthcheck(db.Client())},
			{Name: "bus", Fn: pub.Healthcheck},
		},
	})

	bridge := realtime.NewBridge(realtime.WithConfig(cfg.Realtime), realtime.WithLogger(log))

	apiServer := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithName("api"),
		httpserver.WithLogger(log),
	)
	// WebSocket listeners carry long-lived connections, so they get no
	// read or write timeouts.
	clientServer := httpserver.New(
		httpserver.WithName("realtime-client"),
		httpserver.WithAddr(cfg.Realtime.ClientAddr),
		httpserver.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		httpserver.WithLogger(log),
	)
	internalServer := httpserver.New(
		httpserver.WithName("realtime-internal"),
		httpserver.WithAddr(cfg.Realtime.InternalAddr),
		httpserver.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		httpserver.WithLogger(log),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return apiServer.Run(ctx, router) })
	g.Go(func() error { return clientServer.Run(ctx, bridge.ClientHandler()) })
	g.Go(func() error { return internalServer.Run(ctx, bridge.ProducerHandler()) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
