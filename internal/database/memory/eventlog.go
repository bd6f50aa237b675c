package memory

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/osse101/PackOpener_Go/internal/eventlog"
)

// LogEvent appends an entry with the next sequence id
func (s *Store) LogEvent(_ context.Context, entry eventlog.Entry) error {
	if err := s.failure(OpLogEvent); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventSeq++
	entry.ID = s.eventSeq
	entry.Payload = maps.Clone(entry.Payload)
	entry.Metadata = maps.Clone(entry.Metadata)
	if entry.UserID != nil {
		uid := *entry.UserID
		entry.UserID = &uid
	}
	s.events = append(s.events, entry)
	return nil
}

// GetEvents returns matching entries, newest first
func (s *Store) GetEvents(_ context.Context, filter eventlog.Filter) ([]eventlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []eventlog.Entry{}
	for _, e := range s.events {
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.EventType != nil && e.EventType != *filter.EventType {
			continue
		}
		if filter.Since != nil && e.OccurredAt.Before(*filter.Since) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CleanupOldEvents drops entries that occurred before cutoff
func (s *Store) CleanupOldEvents(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var deleted int64
	for _, e := range s.events {
		if e.OccurredAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}
