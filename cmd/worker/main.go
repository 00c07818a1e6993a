package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/uconn-hacklab/inventory-tracking/pkg/app"
	"github.com/uconn-hacklab/inventory-tracking/pkg/cache"
	"github.com/uconn-hacklab/inventory-tracking/pkg/config"
	"github.com/uconn-hacklab/inventory-tracking/pkg/database"
	"github.com/uconn-hacklab/inventory-tracking/pkg/events"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/pkg/telemetry"
	"github.com/uconn-hacklab/inventory-tracking/services/inventory/application/consumers"
	inventorySvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg).With("process", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.NewPool(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close() //nolint:errcheck
	log.Info("database pool connected")

	bus, err := events.NewEventBus(cfg, events.Options{}, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	// Close waits up to 30s for in-flight handlers.
	defer bus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, cache warming disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	a := &app.Application{
		Db:       db,
		Logger:   log,
		EventBus: bus,
		Redis:    redisClient,
	}

	svcs, err := inventorySvcs.New(a)
	if err != nil {
		log.Error("failed to build inventory services", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	var itemCache inventorySvcs.ItemCache
	if redisClient != nil {
		itemCache = cache.NewItemCache(redisClient)
	}

	c := consumers.New(itemCache, svcs.Ledger, log, telemetry.CaptureError)
	topics, err := c.Register(ctx, bus)
	if err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("event subscribers registered", "topics", topics)

	<-ctx.Done()
	log.Info("shutting down worker...")
}
