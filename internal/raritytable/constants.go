package raritytable

// DefaultCacheSize is the number of activated tables kept in memory.
const DefaultCacheSize = 256

// Error context messages for wrapped errors
const (
	ErrContextFailedToLoadSet   = "failed to load card set"
	ErrContextFailedToLoadCards = "failed to load set cards"
	ErrContextFailedToLoadPacks = "failed to load set packs"
	ErrContextFailedToActivate  = "failed to mark set active"
	ErrContextFailedToBuild     = "failed to build rarity table"
)

// Log messages
const (
	LogMsgSetActivated       = "Card set activated"
	LogMsgSetAlreadyActive   = "Card set already active"
	LogMsgTableBuilt         = "Rarity table built"
	LogMsgUniformFallback    = "Guarantee pool has no weight, falling back to uniform selection"
	LogMsgActivationRejected = "Card set activation rejected"
)

// Log field keys for structured logging
const (
	LogFieldSetID  = "set_id"
	LogFieldPackID = "pack_id"
	LogFieldPool   = "pool"
	LogFieldCards  = "cards"
	LogFieldPacks  = "packs"
	LogFieldError  = "error"
)
