package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version    string            `json:"version"` // Event schema version (e.g., "1.0")
	Type       Type              `json:"type"`
	Payload    interface{}       `json:"payload"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Event types
const (
	OpeningCompleted Type = "opening.completed"
	StockReleased    Type = "opening.stock_released"
	SetActivated     Type = "set.activated"
)

// Metadata keys
const (
	MetadataRequestID = "request_id"
	MetadataReplayed  = "replayed"
)

// StockReleasedPayloadV1 is published when a reservation is handed back after a failed opening.
type StockReleasedPayloadV1 struct {
	UserID        string             `json:"user_id"`
	RequestID     string             `json:"request_id"`
	Kind          domain.ProductKind `json:"kind"`
	ProductID     int64              `json:"product_id"`
	ReservationID string             `json:"reservation_id"`
	Reason        string             `json:"reason"`
}

// NewOpeningCompletedEvent builds the event published after an opening commits.
func NewOpeningCompletedEvent(record *domain.CommittedOpening, opening domain.Opening) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    OpeningCompleted,
		Payload: domain.OpeningCompletedPayload{
			UserID:        record.UserID,
			RequestID:     record.RequestID,
			Kind:          record.Kind,
			TargetID:      record.TargetID,
			ResultID:      opening.ResultID(),
			TransactionID: record.TransactionID,
			TotalCards:    len(opening.Cards()),
			TotalValue:    opening.TotalValue(),
		},
		Metadata: map[string]string{
			MetadataRequestID: record.RequestID,
		},
		OccurredAt: record.CommittedAt,
	}
}

// NewStockReleasedEvent builds the event published after a compensating release.
func NewStockReleasedEvent(userID, requestID string, token domain.ReservationToken, reason string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    StockReleased,
		Payload: StockReleasedPayloadV1{
			UserID:        userID,
			RequestID:     requestID,
			Kind:          token.Kind,
			ProductID:     token.ProductID,
			ReservationID: token.ID,
			Reason:        reason,
		},
		Metadata: map[string]string{
			MetadataRequestID: requestID,
		},
		OccurredAt: time.Now(),
	}
}

// SetActivatedPayloadV1 is published when a card set's rarity table is built and cached.
type SetActivatedPayloadV1 struct {
	SetID        int64 `json:"set_id"`
	NonRepeating bool  `json:"non_repeating"`
}

// NewSetActivatedEvent builds the event published after a set is activated.
func NewSetActivatedEvent(setID int64, nonRepeating bool) Event {
	return Event{
		Version:    EventSchemaVersion,
		Type:       SetActivated,
		Payload:    SetActivatedPayloadV1{SetID: setID, NonRepeating: nonRepeating},
		OccurredAt: time.Now(),
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every subscriber synchronously and joins their errors.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errors.Join(errs...))
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
