package event

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

func TestReadDeadLetters(t *testing.T) {
	input := strings.Join([]string{
		`{"schema_version":"1.0","event":{"type":"opening.completed","payload":{"user_id":"u1"}},"attempts":3}`,
		``,
		`{"schema_version":"1.0","event":{"type":"set.activated","payload":{"set_id":2}},"attempts":1,"last_error":"boom"}`,
	}, "\n")

	entries, err := ReadDeadLetters(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OpeningCompleted, entries[0].Event.Type)
	assert.Equal(t, 3, entries[0].Attempts)
	assert.Equal(t, "boom", entries[1].LastError)
}

func TestReadDeadLetters_Malformed(t *testing.T) {
	input := `{"event":{"type":"set.activated"}}` + "\n" + `{not json`

	entries, err := ReadDeadLetters(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Len(t, entries, 1)
}

func TestReplayDeadLetters_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	dlw, err := NewDeadLetterWriter(path)
	require.NoError(t, err)

	completed := Event{
		Version: EventSchemaVersion,
		Type:    OpeningCompleted,
		Payload: domain.OpeningCompletedPayload{UserID: "u1", RequestID: "r1", TotalCards: 10, TotalValue: 420},
	}
	require.NoError(t, dlw.Write(completed, 4, errors.New("handler down")))
	require.NoError(t, dlw.Write(NewSetActivatedEvent(3, true), 1, nil))
	require.NoError(t, dlw.Close())

	bus := NewMemoryBus()
	var got []domain.OpeningCompletedPayload
	bus.Subscribe(OpeningCompleted, func(_ context.Context, ev Event) error {
		p, err := DecodePayload[domain.OpeningCompletedPayload](ev.Payload)
		if err != nil {
			return err
		}
		got = append(got, p)
		return nil
	})
	var sets []SetActivatedPayloadV1
	bus.Subscribe(SetActivated, func(_ context.Context, ev Event) error {
		p, err := DecodePayload[SetActivatedPayloadV1](ev.Payload)
		if err != nil {
			return err
		}
		sets = append(sets, p)
		return nil
	})

	n, err := ReplayDeadLetters(context.Background(), bus, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, int64(420), got[0].TotalValue)
	assert.Equal(t, []SetActivatedPayloadV1{{SetID: 3, NonRepeating: true}}, sets)
}

func TestReplayDeadLetters_ContinuesPastFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	dlw, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	require.NoError(t, dlw.Write(Event{Type: StockReleased}, 1, nil))
	require.NoError(t, dlw.Write(Event{Type: SetActivated}, 1, nil))
	require.NoError(t, dlw.Close())

	bus := NewMemoryBus()
	bus.Subscribe(StockReleased, func(context.Context, Event) error { return errors.New("still down") })

	n, err := ReplayDeadLetters(context.Background(), bus, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(StockReleased))
	assert.Equal(t, 1, n)
}

func TestReplayDeadLetters_MissingFile(t *testing.T) {
	_, err := ReplayDeadLetters(context.Background(), NewMemoryBus(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeadLetterWriter_TimestampsInUTC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletter.jsonl")
	dlw, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	dlw.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)) }
	require.NoError(t, dlw.Write(Event{Type: SetActivated}, 1, nil))
	require.NoError(t, dlw.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	entries, err := ReadDeadLetters(f)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, time.Date(2026, 1, 2, 2, 4, 5, 0, time.UTC), entries[0].Timestamp)
}
