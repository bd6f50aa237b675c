package event

import "time"

// Event schema versioning
const (
	// EventSchemaVersion is the current event schema version
	EventSchemaVersion = "1.0"
)

// Retry configuration constants
const (
	// RetryInitialDelay is the delay before the first retry
	RetryInitialDelay = 2 * time.Second

	// RetryMaxAttempts is the default maximum number of retry attempts
	RetryMaxAttempts = 5
)

// Dead letter file
const (
	DeadLetterFilePermissions = 0644
	// MaxDeadLetterLineBytes bounds a single entry when reading the file back.
	MaxDeadLetterLineBytes = 1 << 20
)

// Error messages
const (
	ErrMsgEncodeDeadLetter = "failed to encode dead letter entry"
	ErrMsgDecodeDeadLetter = "malformed dead letter entry on line"
	ErrMsgReplayDeadLetter = "failed to replay"
	ErrMsgDecodePayload    = "failed to decode payload as"
)

// Log message constants
const (
	LogMsgEventPublishFailed   = "Event publish failed, retrying in background"
	LogMsgEventRetryFailed     = "Event retry failed"
	LogMsgEventRetrySucceeded  = "Event retry succeeded"
	LogMsgEventDeadLettered    = "Event retries exhausted, written to dead letter"
	LogMsgDeadLetterFailed     = "Failed to write to dead letter"
	LogMsgEventDroppedShutdown = "Event dropped during shutdown"

	// Log message for handler errors
	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %w"
)

// Log field keys
const (
	LogFieldEventType = "event_type"
	LogFieldAttempt   = "attempt"
	LogFieldError     = "error"
)

// CalculateRetryDelay calculates the exponential backoff delay for retry attempts.
// Formula: baseDelay * 2^(attempt-1)
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	return baseDelay * time.Duration(1<<(attempt-1))
}
