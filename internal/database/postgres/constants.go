package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeSerializationFailure is raised when a serializable transaction loses a conflict
	PgErrorCodeSerializationFailure = "40001"
	// PgErrorCodeDeadlockDetected is raised when Postgres aborts one side of a deadlock
	PgErrorCodeDeadlockDetected = "40P01"
	// PgErrorCodeLockNotAvailable is raised when lock_timeout expires
	PgErrorCodeLockNotAvailable = "55P03"
	// PgErrorCodeForeignKeyViolation is raised when a referenced row is missing
	PgErrorCodeForeignKeyViolation = "23503"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Catalog Operations
const (
	ErrMsgFailedToGetUser        = "failed to get user"
	ErrMsgFailedToGetPack        = "failed to get pack"
	ErrMsgFailedToGetBox         = "failed to get box"
	ErrMsgFailedToGetCardSet     = "failed to get card set"
	ErrMsgFailedToListCards      = "failed to list cards"
	ErrMsgFailedToListPacks      = "failed to list packs"
	ErrMsgFailedToUpdateSet      = "failed to update card set status"
	ErrMsgFailedToGetPrices      = "failed to get card values"
	ErrMsgFailedToDecodeWeights  = "failed to decode rarity weights"
	ErrMsgFailedToScanRow        = "failed to scan row"
	ErrMsgFailedToIterateRows    = "failed to iterate rows"
	ErrMsgInvalidUserID          = "invalid user id"
	ErrMsgInvalidReservationID   = "invalid reservation id"
	ErrMsgInvalidReserveQuantity = "reservation quantity must be positive"
)

// Error Messages - Stock Operations
const (
	ErrMsgFailedToReserveStock = "failed to reserve stock"
	ErrMsgFailedToReleaseStock = "failed to release stock"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToLockInventory     = "failed to lock inventory"
	ErrMsgFailedToGetInventory      = "failed to get inventory"
	ErrMsgFailedToUpsertItem        = "failed to upsert inventory item"
	ErrMsgFailedToUpdateTotals      = "failed to update inventory totals"
	ErrMsgFailedToListItems         = "failed to list inventory items"
	ErrMsgFailedToInsertPackResult  = "failed to insert pack result"
	ErrMsgFailedToInsertBoxResult   = "failed to insert box result"
	ErrMsgFailedToInsertTransaction = "failed to insert transaction"
	ErrMsgFailedToInsertItems       = "failed to insert transaction items"
	ErrMsgFailedToListTransactions  = "failed to list transactions"
	ErrMsgFailedToInsertDedup       = "failed to insert committed opening"
	ErrMsgFailedToGetDedup          = "failed to get committed opening"
	ErrMsgFailedToEncodeResult      = "failed to encode opening result"
	ErrMsgFailedToDecodeResult      = "failed to decode opening result"
)

// Error Messages - Event Log Operations
const (
	ErrMsgFailedToLogEvent      = "failed to log event"
	ErrMsgFailedToListEvents    = "failed to list logged events"
	ErrMsgFailedToCleanupEvents = "failed to delete expired events"
	ErrMsgFailedToEncodeEvent   = "failed to encode event"
	ErrMsgFailedToDecodeEvent   = "failed to decode event"
)

// Log Messages
const (
	LogMsgFailedToRollback = "Failed to rollback transaction"
)
