// Copyright (c) 2026 PhishGuard. All rights reserved.
// Author: minh.vantran.sec@gmail.com

// Command api is the entry point for the PhishGuard HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the durable store backend (Redis, Postgres, or memory).
//  4. Run database migrations (Postgres driver only, idempotent).
//  5. Seed demo data into absent collections.
//  6. Wire domain services, cascades, and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/vantran/phishguard/internal/analysis"
	"github.com/vantran/phishguard/internal/api"
	"github.com/vantran/phishguard/internal/comment"
	"github.com/vantran/phishguard/internal/identity"
	"github.com/vantran/phishguard/internal/platform/config"
	"github.com/vantran/phishguard/internal/platform/constants"
	"github.com/vantran/phishguard/internal/platform/kv"
	"github.com/vantran/phishguard/internal/platform/migration"
	pgstore "github.com/vantran/phishguard/internal/platform/postgres"
	redisstore "github.com/vantran/phishguard/internal/platform/redis"
	"github.com/vantran/phishguard/internal/platform/sec"
	"github.com/vantran/phishguard/internal/report"
	"github.com/vantran/phishguard/internal/seed"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[PhishGuard] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Durable Store ──────────────────────────────────────────────────
	var store kv.Store
	var checkStorage func() error

	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		// ── 4. Migrations ─────────────────────────────────────────────────
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		store = kv.NewPostgres(pool)
		checkStorage = func() error {
			return pgstore.Ping(context.Background(), pool)
		}

	case config.StorageDriverRedis:
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		store = kv.NewRedis(rdb)
		checkStorage = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}

	case config.StorageDriverMemory:
		log.Warn("memory_storage_selected", slog.String("note", "all data is lost on restart"))
		store = kv.NewMemory()
	}

	// ── 5. Seed ───────────────────────────────────────────────────────────
	must(log, seed.Run(startupCtx, store, log), "seed demo data")

	// ── 6. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Analysis Provider ──────────────────────────────────────────────
	var analyzer analysis.Provider
	if cfg.GeminiAPIKey != "" {
		analyzer = analysis.NewGeminiClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.GeminiAPIKey, log)
		log.Info("analysis_provider_selected", slog.String("provider", "gemini"), slog.String("model", cfg.GeminiModel))
	} else {
		analyzer = analysis.NewHeuristic()
		log.Warn("analysis_provider_selected", slog.String("provider", "heuristic"),
			slog.String("note", "GEMINI_API_KEY not set, verdicts are rough indicators only"))
	}

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	identityService, err := identity.NewService(startupCtx, store, log)
	must(log, err, "initialize identity store")

	reportService, err := report.NewService(startupCtx, store, log)
	must(log, err, "initialize report store")

	commentService := comment.NewService(store, log)

	// Cascade wiring: account deletion purges reports and comments; report
	// deletion prunes comment threads.
	reportService.AttachCommentPruner(commentService)
	identityService.AttachPurgers(reportService, commentService)

	identityHandler := identity.NewHandler(identityService, jwtSvc)
	reportHandler := report.NewHandler(reportService, analyzer)
	commentHandler := comment.NewHandler(commentService)

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStorage: checkStorage,
		StorageName:  cfg.StorageDriver,
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Identity:  identityHandler,
		Report:    reportHandler,
		Comment:   commentHandler,
	}

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
