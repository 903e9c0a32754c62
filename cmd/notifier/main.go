// Command notifier consumes the event bus, turns events into notifications,
// stores them, and relays each one to the real-time bridge's internal port.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/pulse/pkg/bus"
	"github.com/dmitrymomot/pulse/pkg/config"
	"github.com/dmitrymomot/pulse/pkg/event"
	"github.com/dmitrymomot/pulse/pkg/fanout"
	"github.com/dmitrymomot/pulse/pkg/httpserver"
	"github.com/dmitrymomot/pulse/pkg/logger"
	"github.com/dmitrymomot/pulse/pkg/mongo"
	"github.com/dmitrymomot/pulse/pkg/notifications"
	"github.com/dmitrymomot/pulse/pkg/realtime"
	pulseredis "github.com/dmitrymomot/pulse/pkg/redis"
	"github.com/dmitrymomot/pulse/pkg/relevance"
)

type appConfig struct {
	Env          string        `env:"APP_ENV" envDefault:"development"`
	ServiceName  string        `env:"APP_SERVICE_NAME" envDefault:"pulse-notifier"`
	LogLevel     string        `env:"APP_LOG_LEVEL"` // overrides the APP_ENV default when set
	CloseTimeout time.Duration `env:"APP_CLOSE_TIMEOUT" envDefault:"10s"`

	// Health listener; NOTIFIER_HTTP_ADDR et al.
	HTTP      httpserver.Config `envPrefix:"NOTIFIER_"`
	Redis     pulseredis.Config
	Mongo     mongo.Config
	Bus       bus.Config
	Fanout    fanout.Config
	Relevance relevance.Config
	Realtime  realtime.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithLevelName(cfg.LogLevel),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "notifier stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.LogAttrs(ctx, slog.LevelInfo, "notifier stopped")
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	redisClient, err := pulseredis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

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

	topics := make([]string, 0, len(event.Topics()))
	for _, t := range event.Topics() {
		topics = append(topics, string(t))
	}
	reader, err := bus.NewStreamReader(redisClient, cfg.Bus, topics...)
	if err != nil {
		return err
	}
	if err := reader.EnsureGroups(ctx); err != nil {
		return err
	}

	gate, err := relevance.NewGate(relevance.NewScorer(cfg.Relevance),
		relevance.WithConfig(cfg.Relevance),
		relevance.WithLogger(log),
	)
	if err != nil {
		return err
	}

	relay := realtime.NewProducerClient(cfg.Realtime.InternalURL,
		realtime.WithToken(cfg.Realtime.ProducerToken),
		realtime.WithAckTimeout(cfg.Realtime.AckTimeout),
		realtime.WithProducerLogger(log),
	)
	defer func() { _ = relay.Close() }()

	manager := notifications.NewManager(storage, relay, notifications.WithManagerLogger(log))

	processor, err := fanout.NewProcessor(manager, gate,
		fanout.WithProcessorLogger(log),
		fanout.WithPersistRetry(cfg.Fanout.PersistAttempts, cfg.Fanout.PersistBackoff),
	)
	if err != nil {
		return err
	}
	consumer, err := fanout.NewConsumer(reader, processor,
		fanout.WithConfig(cfg.Fanout),
		fanout.WithLogger(log),
	)
	if err != nil {
		return err
	}

	health := chi.NewRouter()
	health.Get("/healthz", httpserver.LivenessHandler())
	health.Get("/readyz", httpserver.ReadinessHandler(log, 2*time.Second,
		httpserver.Check{Name: "redis", Fn: pulseredis.Healthcheck(redisClient)},
		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(db.Client())},
	))
	healthServer := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithName("notifier-health"),
		httpserver.WithLogger(log),
	)

	log.LogAttrs(ctx, slog.LevelInfo, "notifier starting",
		slog.String("consumer", reader.Consumer()),
		slog.Int("partitions", len(reader.Partitions())),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(consumer.Run(ctx))
	g.Go(func() error { return healthServer.Run(ctx, health) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
