package eventlog

// Query limits for reading the log
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// JSON payload field keys
const (
	PayloadKeyUserID = "user_id"
)

// Error context messages for wrapped errors
const (
	ErrContextFailedToList    = "failed to list logged events"
	ErrContextFailedToCleanup = "failed to clean up logged events"
)

// Log messages - service events
const (
	LogMsgFailedToDecodePayload = "Event payload is not an object, skipping log"
	LogMsgFailedToLogEvent      = "Failed to log event"
	LogMsgEventLogged           = "Event logged"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting event log cleanup job"
	LogMsgCleanupJobFailed    = "Event log cleanup failed"
	LogMsgCleanupJobCompleted = "Event log cleanup completed"
)

// Log field keys - structured logging fields
const (
	LogFieldType         = "type"
	LogFieldUserID       = "user_id"
	LogFieldError        = "error"
	LogFieldRetention    = "retention"
	LogFieldDuration     = "duration"
	LogFieldDeletedCount = "deleted_count"
)

// CleanupJobName identifies the cleanup job in worker logs.
const CleanupJobName = "eventlog_cleanup"
