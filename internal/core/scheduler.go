package core

// scheduler.go provides background job scheduling for maintenance tasks.
//
// Currently implements import audit retention: runs older than the retention
// window are deleted periodically. The scheduler is long-running and
// context-aware for graceful shutdown. A failed purge is logged and retried
// on the next tick; it never stops the application.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the retention scheduler.
// Zero values fall back to the defaults noted per field.
type RetentionConfig struct {
	RetentionDays int           // Days to keep import runs (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler purges old import runs immediately, then every
// CheckInterval, until ctx is cancelled.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("retention scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	s.runRetentionJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.runRetentionJob(ctx, cfg)
		}
	}
}

// runRetentionJob performs one purge cycle and returns the rows removed.
func (s *Service) runRetentionJob(ctx context.Context, cfg RetentionConfig) int64 {
	start := time.Now()
	cutoff := s.now().AddDate(0, 0, -cfg.RetentionDays)

	purged, err := s.recorder.PurgeImports(ctx, cutoff)
	if err != nil {
		slog.Error("import retention purge failed", "error", err)
		return 0
	}

	slog.Info("purged old import runs",
		"runs_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}
