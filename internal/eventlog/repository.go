package eventlog

import (
	"context"
	"time"
)

// Entry is one logged domain event.
type Entry struct {
	ID         int64             `json:"id"`
	EventType  string            `json:"event_type"`
	UserID     *string           `json:"user_id,omitempty"`
	Payload    map[string]any    `json:"payload"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Filter narrows a log query. Nil fields match everything.
type Filter struct {
	UserID    *string
	EventType *string
	Since     *time.Time
	Limit     int
}

// Repository defines the interface for event log storage
type Repository interface {
	// LogEvent appends an entry; the ID is assigned by storage.
	LogEvent(ctx context.Context, entry Entry) error

	// GetEvents returns matching entries, newest first.
	GetEvents(ctx context.Context, filter Filter) ([]Entry, error)

	// CleanupOldEvents deletes entries that occurred before cutoff.
	CleanupOldEvents(ctx context.Context, cutoff time.Time) (int64, error)
}
