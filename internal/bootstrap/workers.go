package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/PackOpener_Go/internal/config"
	"github.com/osse101/PackOpener_Go/internal/eventlog"
	"github.com/osse101/PackOpener_Go/internal/worker"
)

// Workers owns the background pool and the schedules feeding it.
type Workers struct {
	Pool    *worker.Pool
	Cleanup *worker.Periodic
}

// StartWorkers starts the pool and schedules event log retention cleanup.
func StartWorkers(ctx context.Context, cfg *config.Config, audit eventlog.Service) *Workers {
	pool := worker.NewPool(ctx, cfg.WorkerCount, worker.DefaultQueueSize)
	pool.Start()

	cleanup := worker.NewPeriodic(pool, eventlog.NewCleanupJob(audit, cfg.EventLogRetention), cfg.EventLogCleanupInterval)
	cleanup.Start(ctx)

	slog.Info(LogMsgWorkersStarted,
		"workers", cfg.WorkerCount,
		"retention", cfg.EventLogRetention,
		"cleanup_interval", cfg.EventLogCleanupInterval)

	return &Workers{Pool: pool, Cleanup: cleanup}
}

// Stop halts the schedules, then the pool.
func (w *Workers) Stop(ctx context.Context) error {
	w.Cleanup.Stop()
	return w.Pool.Stop(ctx)
}
