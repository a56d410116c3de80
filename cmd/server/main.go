/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the loan estimation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags, environment, .env)
  2. Initialize logger and metrics
  3. Initialize SQLite store and the holiday cache (Redis or memory)
  4. Create the estimation service and API handler
  5. Start the holiday warmer and the server with graceful shutdown

COMMAND-LINE FLAGS (each with an environment fallback, see package config):
  -port           HTTP server port (default: 8080)
  -db             SQLite database path (default: loans.db)
                  Use ":memory:" for in-memory database
  -redis          Redis address for the holiday cache (default: in-memory)
  -rounding-base  Installment rounding base (default: 500)
  -min-principal  Smallest principal accepted (default: 50000)
  -log-level      debug|info|warn|error (default: info)
  -warm-schedule  Holiday cache warm-up cron spec (default: @every 6h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the warmer, close Redis and the database
  4. Exit

EXAMPLES:
  ./server -db="./data/loans.db"
  ./server -db=":memory:" -redis=localhost:6379
  PORT=3000 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - estimate/service.go: Estimation flow
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/warp/loan-engine/api"
	"github.com/warp/loan-engine/cache"
	"github.com/warp/loan-engine/calendar"
	"github.com/warp/loan-engine/config"
	"github.com/warp/loan-engine/estimate"
	"github.com/warp/loan-engine/logger"
	"github.com/warp/loan-engine/metrics"
	"github.com/warp/loan-engine/store/sqlite"
)

const holidayCacheTTL = 30 * 24 * time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	log := logger.Init("loan-engine", logger.ParseLevel(cfg.LogLevel))
	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Holiday cache
	var holidayCache calendar.Cache = cache.NewMemory()
	var redisCache *cache.Redis
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedis(cfg.RedisAddr, holidayCacheTTL)
		defer redisCache.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisCache.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, holiday cache stays in memory",
				slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			redisCache = nil
		} else {
			holidayCache = redisCache
		}
	}
	holidays := calendar.NewCached(calendar.NewColombianCalculator(), holidayCache, m, log)

	warmer := calendar.NewWarmer(holidays, log)
	warmer.Schedule = cfg.WarmSchedule
	if err := warmer.Start(); err != nil {
		return err
	}
	defer warmer.Stop()

	// Initialize handler
	svc := estimate.NewService(holidays, store, estimate.Options{
		RoundingBase: cfg.RoundingBase,
		MinPrincipal: cfg.MinPrincipal,
		Logger:       log,
		Metrics:      m,
	})
	handler := api.NewHandler(svc, log)
	handler.HealthCheck = func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if redisCache != nil {
			if err := redisCache.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, prometheus.DefaultGatherer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("🚀 Server starting on http://localhost:%d", cfg.Port))
		log.Info(fmt.Sprintf("📊 API available at http://localhost:%d/api", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
