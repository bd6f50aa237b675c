package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/osse101/PackOpener_Go/internal/config"
	"github.com/osse101/PackOpener_Go/internal/event"
	"github.com/osse101/PackOpener_Go/internal/eventlog"
	"github.com/osse101/PackOpener_Go/internal/metrics"
)

// EventSystem is the bus services publish to plus the resources shutdown must release.
type EventSystem struct {
	Publisher  *event.ResilientPublisher
	DeadLetter *event.DeadLetterWriter
	Audit      eventlog.Service
}

// InitializeEventSystem creates the in-memory bus, subscribes the metrics collector
// and the audit log, and wraps the bus in a resilient publisher backed by a dead-letter file.
func InitializeEventSystem(cfg *config.Config, logRepo eventlog.Repository) (*EventSystem, error) {
	bus := event.NewMemoryBus()

	metrics.NewEventMetricsCollector().Register(bus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	audit := eventlog.NewService(logRepo)
	audit.Subscribe(bus)
	slog.Info(LogMsgEventLogSubscribed, "types", len(eventlog.LoggedTypes))

	if err := os.MkdirAll(filepath.Dir(cfg.DeadLetterPath), DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateDeadLetterDir, err)
	}
	deadLetter, err := event.NewDeadLetterWriter(cfg.DeadLetterPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenDeadLetter, err)
	}

	publisher := event.NewResilientPublisher(bus, event.ResilientConfig{
		MaxRetries: cfg.EventMaxRetries,
		RetryDelay: cfg.EventRetryDelay,
	}, deadLetter)

	slog.Info(LogMsgEventSystemInitialized,
		"max_retries", cfg.EventMaxRetries,
		"retry_delay", cfg.EventRetryDelay,
		"deadletter_path", cfg.DeadLetterPath)

	return &EventSystem{Publisher: publisher, DeadLetter: deadLetter, Audit: audit}, nil
}
