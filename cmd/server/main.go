package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/gaslog/internal/cache"
	"github.com/JonMunkholm/gaslog/internal/config"
	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/database"
	"github.com/JonMunkholm/gaslog/internal/logging"
	"github.com/JonMunkholm/gaslog/internal/metrics"
	"github.com/JonMunkholm/gaslog/internal/sheets"
	"github.com/JonMunkholm/gaslog/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	metrics.Init()

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"google_signin", cfg.Google.Enabled(),
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"audit_log", cfg.Database.URL != "",
		"redis_cache", cfg.Cache.RedisAddr != "",
	)

	ctx := context.Background()

	// The audit log is optional; without a database imports are not recorded.
	var recorder core.ImportRecorder = core.NoopRecorder{}
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		recorder = database.NewRecorder(pool)
	}

	var idCache sheets.IDCache = cache.NewMemory()
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.Connect(ctx, cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		idCache = rc
	}
	locator := sheets.NewLocator(idCache, cfg.Cache.TTL, slog.Default())

	service := core.NewService(core.ServiceConfig{
		MaxConcurrent:      cfg.Import.MaxConcurrent,
		MaxWaitTime:        cfg.Import.MaxWaitTime,
		Timeout:            cfg.Import.Timeout,
		ErrorPreview:       cfg.Import.ErrorPreview,
		NearEmptyThreshold: float64(cfg.Import.NearEmptyThreshold),
	}, recorder)

	server := web.NewServer(service, cfg, web.WithLocator(locator))

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if cfg.Database.URL != "" {
		go service.StartRetentionScheduler(jobCtx, core.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			CheckInterval: cfg.Audit.CheckInterval,
		})
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight imports finish so their runs are recorded.
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
