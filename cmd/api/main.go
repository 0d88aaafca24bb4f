package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/bengkelku/bengkel-backend/api/routes"
	"github.com/bengkelku/bengkel-backend/internal/bookings"
	"github.com/bengkelku/bengkel-backend/internal/catalog"
	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/internal/orders"
	"github.com/bengkelku/bengkel-backend/internal/stock"
	"github.com/bengkelku/bengkel-backend/pkg/config"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/instance"
	"github.com/bengkelku/bengkel-backend/pkg/logger"
	"github.com/bengkelku/bengkel-backend/pkg/metrics"
	"github.com/bengkelku/bengkel-backend/pkg/migrate"
	"github.com/bengkelku/bengkel-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "bengkel-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "bengkel-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	workflow := metrics.NewWorkflow(registry)

	ledger, err := stock.NewLedger(stock.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	dirRepo := directory.NewRepository(dbClient.DB())
	catRepo := catalog.NewRepository(dbClient.DB())
	bookRepo := bookings.NewRepository(dbClient.DB())

	directoryService, err := directory.NewService(dirRepo)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catRepo, dbClient, ledger)
	if err != nil {
		return err
	}
	bookingService, err := bookings.NewService(bookRepo, dirRepo, dbClient, loc, bookings.WithMetrics(workflow))
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dirRepo,
		catRepo,
		bookRepo,
		dbClient,
		ledger,
		orders.WithMetrics(workflow),
	)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr: ":" + port,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			registry,
			metrics.NewHTTP(registry),
			directoryService,
			catalogService,
			bookingService,
			orderService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"driver":   cfg.DB.Driver,
		"timezone": loc.String(),
		"instance": instance.ID(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
