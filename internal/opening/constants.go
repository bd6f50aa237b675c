package opening

import "time"

// DefaultReleaseTimeout bounds a compensating stock release.
const DefaultReleaseTimeout = 3 * time.Second

// Reasons recorded on compensating releases
const (
	ReasonDrawFailed  = "draw_failed"
	ReasonApplyFailed = "apply_failed"
	ReasonCancelled   = "cancelled"
	ReasonDuplicate   = "duplicate_request"
)

// Error context messages for wrapped errors
const (
	ErrContextFailedToLoadUser    = "failed to load user"
	ErrContextFailedToLoadPack    = "failed to load pack"
	ErrContextFailedToLoadBox     = "failed to load box"
	ErrContextFailedToReserve     = "failed to reserve stock"
	ErrContextIllegalTransition   = "illegal opening transition"
	ErrContextBoxReferencesNoPack = "box references missing pack"
)

// Log messages
const (
	LogMsgOpeningReplayed   = "Opening replayed from committed record"
	LogMsgOpeningCompleted  = "Opening completed"
	LogMsgOpeningFailed     = "Opening failed"
	LogMsgStockReleased     = "Reservation released"
	LogMsgReleaseFailed     = "Compensating release failed, stock leaked until manual repair"
	LogMsgPublishFailed     = "Failed to publish opening event"
	LogMsgDuplicateDetected = "Request committed concurrently, discarding draw"
)

// Log field keys for structured logging
const (
	LogFieldUserID        = "user_id"
	LogFieldRequestID     = "idempotency_key"
	LogFieldKind          = "kind"
	LogFieldTargetID      = "target_id"
	LogFieldReservationID = "reservation_id"
	LogFieldReason        = "reason"
	LogFieldState         = "state"
	LogFieldCards         = "cards"
	LogFieldValue         = "value"
	LogFieldError         = "error"
)
