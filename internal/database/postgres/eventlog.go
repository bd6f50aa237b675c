package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PackOpener_Go/internal/eventlog"
)

// EventLogRepository implements eventlog.Repository for PostgreSQL
type EventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a new PostgreSQL event log repository
func NewEventLogRepository(db *pgxpool.Pool) *EventLogRepository {
	return &EventLogRepository{db: db}
}

// LogEvent stores an event in the database
func (r *EventLogRepository) LogEvent(ctx context.Context, entry eventlog.Entry) error {
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeEvent, err)
	}

	var metadataJSON []byte
	if len(entry.Metadata) > 0 {
		if metadataJSON, err = json.Marshal(entry.Metadata); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeEvent, err)
		}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO event_log (event_type, user_id, payload, metadata, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.EventType, entry.UserID, payloadJSON, metadataJSON, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLogEvent, err)
	}
	return nil
}

// GetEvents retrieves events based on filter criteria, newest first
func (r *EventLogRepository) GetEvents(ctx context.Context, filter eventlog.Filter) ([]eventlog.Entry, error) {
	var query strings.Builder
	query.WriteString(`
		SELECT id, event_type, user_id, payload, metadata, occurred_at
		FROM event_log
		WHERE 1=1`)

	args := []any{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		fmt.Fprintf(&query, " AND user_id = $%d", len(args))
	}
	if filter.EventType != nil {
		args = append(args, *filter.EventType)
		fmt.Fprintf(&query, " AND event_type = $%d", len(args))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		fmt.Fprintf(&query, " AND occurred_at >= $%d", len(args))
	}

	query.WriteString(" ORDER BY occurred_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListEvents, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CleanupOldEvents removes events that occurred before cutoff
func (r *EventLogRepository) CleanupOldEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM event_log WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToCleanupEvents, err)
	}
	return tag.RowsAffected(), nil
}

func scanEvents(rows pgx.Rows) ([]eventlog.Entry, error) {
	entries := []eventlog.Entry{}

	for rows.Next() {
		var e eventlog.Entry
		var payloadJSON, metadataJSON []byte

		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &payloadJSON, &metadataJSON, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRow, err)
		}
		if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToIterateRows, err)
	}
	return entries, nil
}
