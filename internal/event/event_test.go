package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	handled := false

	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		assert.Equal(t, eventType, event.Type)
		assert.Equal(t, "payload", event.Payload)
		handled = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{Version: EventSchemaVersion, Type: eventType, Payload: "payload"})
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	assert.NoError(t, bus.Publish(context.Background(), Event{Type: "nobody_listens"}))
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	count := 0

	handler := func(ctx context.Context, event Event) error {
		count++
		return nil
	}
	bus.Subscribe(eventType, handler)
	bus.Subscribe(eventType, handler)

	require.NoError(t, bus.Publish(context.Background(), Event{Type: eventType}))
	assert.Equal(t, 2, count)
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	boom := errors.New("handler error")
	calledAfterFailure := false

	bus.Subscribe(eventType, func(ctx context.Context, event Event) error { return boom })
	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		calledAfterFailure = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{Type: eventType})
	assert.ErrorIs(t, err, boom)
	assert.True(t, calledAfterFailure, "one failing handler does not stop the others")
}

func TestNewOpeningCompletedEvent(t *testing.T) {
	pack := &domain.PackOpeningResult{
		ID:         uuid.New(),
		PackID:     3,
		Cards:      []domain.DrawnCard{{CardID: 1, Value: 5}, {CardID: 2, Value: 7}},
		TotalValue: 12,
	}
	record := &domain.CommittedOpening{
		UserID:        "user-1",
		RequestID:     "req-1",
		Kind:          domain.ProductPack,
		TargetID:      3,
		TransactionID: uuid.New(),
		CommittedAt:   time.Now(),
	}

	evt := NewOpeningCompletedEvent(record, domain.Opening{Kind: domain.ProductPack, Pack: pack})
	assert.Equal(t, OpeningCompleted, evt.Type)
	assert.Equal(t, "req-1", evt.Metadata[MetadataRequestID])

	payload, err := DecodePayload[domain.OpeningCompletedPayload](evt.Payload)
	require.NoError(t, err)
	assert.Equal(t, pack.ID, payload.ResultID)
	assert.Equal(t, 2, payload.TotalCards)
	assert.Equal(t, int64(12), payload.TotalValue)
}

func TestNewSetActivatedEvent(t *testing.T) {
	evt := NewSetActivatedEvent(7, true)

	assert.Equal(t, SetActivated, evt.Type)
	assert.Equal(t, EventSchemaVersion, evt.Version)
	assert.False(t, evt.OccurredAt.IsZero())

	payload, err := DecodePayload[SetActivatedPayloadV1](evt.Payload)
	require.NoError(t, err)
	assert.Equal(t, SetActivatedPayloadV1{SetID: 7, NonRepeating: true}, payload)
}

func TestDecodePayload_JSONFallback(t *testing.T) {
	raw := map[string]interface{}{"user_id": "u", "total_cards": 4}
	payload, err := DecodePayload[domain.OpeningCompletedPayload](raw)
	require.NoError(t, err)
	assert.Equal(t, "u", payload.UserID)
	assert.Equal(t, 4, payload.TotalCards)
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, CalculateRetryDelay(2*time.Second, 1))
	assert.Equal(t, 8*time.Second, CalculateRetryDelay(2*time.Second, 3))
}
