package composer

// Error context messages for wrapped errors
const (
	ErrContextFailedToDraw    = "failed to draw pack"
	ErrContextFailedToPrice   = "failed to snapshot card values"
	ErrContextBoxPackMismatch = "box does not contain this pack"
	ErrMsgMissingPrice        = "no current value for cards"
)

// Log messages
const (
	LogMsgMissingPrice = "Drawn cards have no current value"
)

// Log field keys for structured logging
const (
	LogFieldCardIDs = "card_ids"
)
