package event

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBus is a test double for event.Bus
type mockBus struct {
	mu         sync.Mutex
	calls      int
	shouldFail func(attempt int) bool
}

func (m *mockBus) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	if m.shouldFail != nil && m.shouldFail(n) {
		return errors.New("mock publish error")
	}
	return nil
}

func (m *mockBus) Subscribe(eventType Type, handler Handler) {}

func (m *mockBus) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestResilientPublisher_SuccessfulPublish(t *testing.T) {
	bus := &mockBus{}
	rp := NewResilientPublisher(bus, ResilientConfig{MaxRetries: 3, RetryDelay: time.Millisecond}, nil)

	require.NoError(t, rp.Publish(context.Background(), Event{Type: "test_event"}))
	require.NoError(t, rp.Shutdown(context.Background()))
	assert.Equal(t, 1, bus.CallCount())
}

func TestResilientPublisher_RetriesUntilSuccess(t *testing.T) {
	bus := &mockBus{shouldFail: func(n int) bool { return n < 3 }}
	rp := NewResilientPublisher(bus, ResilientConfig{MaxRetries: 5, RetryDelay: time.Millisecond}, nil)

	require.NoError(t, rp.Publish(context.Background(), Event{Type: "test_event"}))

	assert.Eventually(t, func() bool { return bus.CallCount() == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))
	assert.Equal(t, 3, bus.CallCount())
}

func TestResilientPublisher_DeadLettersAfterExhaustion(t *testing.T) {
	path := t.TempDir() + "/deadletter.jsonl"
	dlw, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	defer dlw.Close()

	bus := &mockBus{shouldFail: func(int) bool { return true }}
	rp := NewResilientPublisher(bus, ResilientConfig{MaxRetries: 2, RetryDelay: time.Millisecond}, dlw)

	require.NoError(t, rp.Publish(context.Background(), Event{Type: OpeningCompleted, Payload: "x"}))

	assert.Eventually(t, func() bool { return bus.CallCount() == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var entry DeadLetterEntry
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, OpeningCompleted, entry.Event.Type)
	assert.Equal(t, 3, entry.Attempts)
	assert.Equal(t, "mock publish error", entry.LastError)
	assert.False(t, scanner.Scan(), "exactly one dead letter entry")
}

func TestResilientPublisher_ShutdownFlushesPendingRetries(t *testing.T) {
	path := t.TempDir() + "/deadletter.jsonl"
	dlw, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	defer dlw.Close()

	bus := &mockBus{shouldFail: func(int) bool { return true }}
	rp := NewResilientPublisher(bus, ResilientConfig{MaxRetries: 3, RetryDelay: time.Hour}, dlw)

	require.NoError(t, rp.Publish(context.Background(), Event{Type: "test_event"}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"test_event"`)
	assert.Equal(t, 1, bus.CallCount())
}
