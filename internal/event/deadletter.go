package event

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DeadLetterSchemaVersion versions the JSON-lines layout of DeadLetterEntry.
const DeadLetterSchemaVersion = "1.0"

// DeadLetterEntry is one event that never reached its subscribers.
type DeadLetterEntry struct {
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	Event         Event     `json:"event"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"last_error,omitempty"`
}

// DeadLetterWriter appends entries to a JSON-lines file. Safe for concurrent use.
type DeadLetterWriter struct {
	mu  sync.Mutex
	w   io.WriteCloser
	now func() time.Time
}

// NewDeadLetterWriter opens path for appending, creating it when missing.
func NewDeadLetterWriter(path string) (*DeadLetterWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, DeadLetterFilePermissions)
	if err != nil {
		return nil, err
	}
	return &DeadLetterWriter{w: f, now: time.Now}, nil
}

// Write appends one entry as a single line.
func (d *DeadLetterWriter) Write(ev Event, attempts int, lastErr error) error {
	entry := DeadLetterEntry{
		SchemaVersion: DeadLetterSchemaVersion,
		Timestamp:     d.now().UTC(),
		Event:         ev,
		Attempts:      attempts,
	}
	if lastErr != nil {
		entry.LastError = lastErr.Error()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgEncodeDeadLetter, err)
	}
	line = append(line, '\n')

	d.mu.Lock()
	defer d.mu.Unlock()
	_, err = d.w.Write(line)
	return err
}

// Close closes the underlying file.
func (d *DeadLetterWriter) Close() error {
	return d.w.Close()
}

// ReadDeadLetters decodes every entry in r. Blank lines are skipped; a
// malformed line stops the read and reports its line number.
func ReadDeadLetters(r io.Reader) ([]DeadLetterEntry, error) {
	var entries []DeadLetterEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxDeadLetterLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry DeadLetterEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return entries, fmt.Errorf("%s %d: %w", ErrMsgDecodeDeadLetter, line, err)
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// ReplayDeadLetters republishes the entries of the file at path on bus, in
// file order, and returns how many were delivered. Payloads arrive as generic
// JSON, so subscribers decode them with DecodePayload. Delivery is at least
// once: an entry whose subscribers partly succeeded before it was dead
// lettered is delivered to them again.
func ReplayDeadLetters(ctx context.Context, bus Bus, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	entries, err := ReadDeadLetters(f)
	if err != nil {
		return 0, err
	}

	delivered := 0
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if err := bus.Publish(ctx, entry.Event); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", ErrMsgReplayDeadLetter, entry.Event.Type, err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}
