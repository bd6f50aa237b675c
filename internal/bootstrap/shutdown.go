package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/PackOpener_Go/internal/server"
)

// ShutdownComponents holds everything that needs graceful shutdown.
type ShutdownComponents struct {
	Server  *server.Server
	Workers *Workers
	Events  *EventSystem
	Storage *Storage
}

// GracefulShutdown stops accepting requests, halts background jobs, flushes
// pending event retries and then closes storage. Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)
	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Workers != nil {
		slog.Info(LogMsgShuttingDownWorkers)
		if err := c.Workers.Stop(ctx); err != nil {
			slog.Error(LogMsgWorkerPoolStopFailed, "error", err)
		}
	}

	if c.Events != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := c.Events.Publisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
		if err := c.Events.DeadLetter.Close(); err != nil {
			slog.Error(LogMsgDeadLetterCloseFailed, "error", err)
		}
	}

	if c.Storage != nil {
		c.Storage.Close()
	}

	slog.Info(LogMsgServerStopped)
}
