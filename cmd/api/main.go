// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Rendezvous HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration (.env file, then environment variables).
//  3. Open the user store (PostgreSQL with migrations, or in-memory).
//  4. Build the login throttle on Redis when configured, in memory otherwise.
//  5. Build the hasher, token issuer and services.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/rendezvous/internal/api"
	"github.com/taibuivan/rendezvous/internal/platform/config"
	"github.com/taibuivan/rendezvous/internal/platform/constants"
	"github.com/taibuivan/rendezvous/internal/platform/metrics"
	"github.com/taibuivan/rendezvous/internal/platform/migration"
	pgstore "github.com/taibuivan/rendezvous/internal/platform/postgres"
	redisstore "github.com/taibuivan/rendezvous/internal/platform/redis"
	"github.com/taibuivan/rendezvous/internal/platform/sec"
	"github.com/taibuivan/rendezvous/internal/users/account"
	"github.com/taibuivan/rendezvous/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// Root context for startup. A deadline catches misconfiguration quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	var (
		userRepository auth.UserRepository
		health         api.HealthDependencies
	)

	// ── 3. User Store ─────────────────────────────────────────────────────
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		userRepository = auth.NewUserRepository(pool)
		health.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }

	case config.StoreDriverMemory:
		log.Warn("memory_store_enabled", slog.String("note", "accounts are lost on restart"))
		userRepository = auth.NewMemoryUserRepository()
	}

	// Background workers (rate limiter, throttle sweeper) stop with serverCtx.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// ── 4. Login Throttle (redis, or in-memory) ───────────────────────────
	appMetrics := metrics.New()
	serviceOptions := []auth.ServiceOption{auth.WithMetrics(appMetrics)}

	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		throttle := auth.NewThrottle(auth.NewRedisFailureCounter(rdb))
		serviceOptions = append(serviceOptions, auth.WithThrottle(throttle))
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	} else {
		// Single-replica fallback: counters live in this process only.
		counter := auth.NewMemoryFailureCounter(nil)
		go counter.RunSweeper(serverCtx, constants.RateLimitCleanupInterval)

		serviceOptions = append(serviceOptions, auth.WithThrottle(auth.NewThrottle(counter)))
		log.Warn("login_throttle_in_memory", slog.String("reason", "REDIS_URL not set"))
	}

	// ── 5. Security & Services ────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SigningKey(),
		sec.WithTokenTTL(cfg.TokenTTL),
		sec.WithIssuer(cfg.TokenIssuer),
	)
	must(log, err, "initialize token service")

	authService := auth.NewService(userRepository, sec.NewHasher(), tokenService, log, serviceOptions...)
	accountService := account.NewService(userRepository, log)

	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(serverCtx, cfg, log, tokenService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   appMetrics.Handler(),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_listen_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
		return
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", "rendezvous"))

	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
