// Package eventlog keeps an audit trail of opening, stock and activation
// events by subscribing to the event bus.
package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/PackOpener_Go/internal/event"
	"github.com/osse101/PackOpener_Go/internal/logger"
	"github.com/osse101/PackOpener_Go/internal/metrics"
)

// LoggedTypes are the event types written to the log.
var LoggedTypes = []event.Type{
	event.OpeningCompleted,
	event.StockReleased,
	event.SetActivated,
}

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger on the bus for every logged type.
	Subscribe(bus event.Bus)

	// UserEvents returns a user's logged events, newest first.
	UserEvents(ctx context.Context, userID string, limit int) ([]Entry, error)

	// CleanupOldEvents removes events older than the retention period.
	CleanupOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new event logging service
func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// Subscribe registers event handlers for all logged event types
func (s *service) Subscribe(bus event.Bus) {
	for _, eventType := range LoggedTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
}

// handleEvent writes the event to storage. Failures are logged and counted
// but never returned, so a broken log cannot trigger republishing to other subscribers.
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := event.DecodePayload[map[string]any](evt.Payload)
	if err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgFailedToDecodePayload, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	entry := Entry{
		EventType:  string(evt.Type),
		Payload:    payload,
		Metadata:   evt.Metadata,
		OccurredAt: evt.OccurredAt,
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = s.now()
	}
	if uid, ok := payload[PayloadKeyUserID].(string); ok && uid != "" {
		entry.UserID = &uid
	}

	if err := s.repo.LogEvent(ctx, entry); err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Error(LogMsgFailedToLogEvent, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldUserID, entry.UserID)
	return nil
}

// UserEvents clamps the limit and reads the user's entries
func (s *service) UserEvents(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	entries, err := s.repo.GetEvents(ctx, Filter{UserID: &userID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToList, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// CleanupOldEvents removes events older than now minus retention
func (s *service) CleanupOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	n, err := s.repo.CleanupOldEvents(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrContextFailedToCleanup, err)
	}
	return n, nil
}
