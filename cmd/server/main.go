// Command server starts the CV/job matcher HTTP server.
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

	"github.com/jackc/pgx/v5/pgxpool"

	httpserver "github.com/fairyhunter13/cv-job-matcher/internal/adapter/httpserver"
	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/observability"
	"github.com/fairyhunter13/cv-job-matcher/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/cv-job-matcher/internal/app"
	"github.com/fairyhunter13/cv-job-matcher/internal/config"
	"github.com/fairyhunter13/cv-job-matcher/internal/domain"
	"github.com/fairyhunter13/cv-job-matcher/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: it backs the shared embedding cache and provider throttling.
	rdb, err := app.NewRedis(ctx, cfg)
	if err != nil {
		slog.Warn("redis unavailable; continuing without shared cache", slog.Any("error", err))
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	matcher, err := app.BuildMatcher(cfg, rdb)
	if err != nil {
		return err
	}

	// Persistence is optional: without DB_URL matches are scored but not stored.
	var (
		pool *pgxpool.Pool
		repo domain.MatchRepository
	)
	if cfg.PersistenceEnabled() {
		pool, err = postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		repo = postgres.NewMatchRepo(pool)
		if cfg.DataRetentionDays > 0 {
			cleanupSvc := postgres.NewCleanupService(pool, cfg.DataRetentionDays)
			go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
			slog.Info("cleanup service started", slog.Int("retention_days", cfg.DataRetentionDays), slog.Duration("interval", cfg.CleanupInterval))
		}
	} else {
		slog.Info("DB_URL not set; match persistence disabled")
	}

	drift := observability.NewScoreDriftMonitor(matcher.Engine.TablesVersion(), matcher.Backend.Model, 0, 0)
	matchSvc := usecase.NewMatchService(matcher.Engine, repo, drift, cfg.MaxDocumentChars)

	var dbPinger app.Pinger
	if pool != nil {
		dbPinger = pool
	}
	dbCheck, redisCheck, embeddingsCheck := app.BuildReadinessChecks(dbPinger, app.RedisPinger(rdb), matcher.Backend)

	srv := httpserver.NewServer(cfg, matchSvc, dbCheck, redisCheck, embeddingsCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	return srvHTTP.Shutdown(shutdownCtx)
}
