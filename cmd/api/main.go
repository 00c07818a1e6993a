package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/uconn-hacklab/inventory-tracking/pkg/app"
	"github.com/uconn-hacklab/inventory-tracking/pkg/cache"
	"github.com/uconn-hacklab/inventory-tracking/pkg/config"
	"github.com/uconn-hacklab/inventory-tracking/pkg/database"
	"github.com/uconn-hacklab/inventory-tracking/pkg/errhttp"
	"github.com/uconn-hacklab/inventory-tracking/pkg/events"
	"github.com/uconn-hacklab/inventory-tracking/pkg/httpx"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/pkg/telemetry"
	inventoryApi "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/api"
	inventorySvcs "github.com/uconn-hacklab/inventory-tracking/services/inventory/application/services"
)

const shutdownTimeout = 30 * time.Second

// @title			Inventory Ledger API
// @version		1.0
// @description	Append-only inventory ledger. Quantities are derived from each item's transaction history.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
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

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
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
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer db.Close() //nolint:errcheck
	log.Info("database pool connected")

	bus, err := events.NewEventBus(cfg, events.Options{Outbox: true}, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer bus.Close() //nolint:errcheck

	if err := bus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	// Redis only backs the item metadata cache; the ledger works without it.
	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, item cache disabled", "error", err)
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
	errw := errhttp.New(log, cfg.Environment == config.EnvProduction)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(log),
		},
	)

	r.Get("/health", httpx.HealthHandler(healthProbes(a)...))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		inventoryApi.InventoryRoutes(r, svcs, errw)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1) //nolint:gocritic
		}
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("server stopped")
}

// healthProbes lists the dependencies /health reports on. An absent Redis
// client shows up as "disabled".
func healthProbes(a *app.Application) []httpx.Probe {
	probes := []httpx.Probe{
		{Name: "database", Checker: a.Db},
		{Name: "redis"},
		{Name: "event_bus", Checker: a.EventBus},
	}
	if a.Redis != nil {
		probes[1].Checker = a.Redis
	}
	return probes
}
