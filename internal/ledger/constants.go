package ledger

// Error context messages for wrapped errors
const (
	ErrContextFailedToBeginTx       = "failed to begin ledger transaction"
	ErrContextFailedToLockInventory = "failed to lock inventory"
	ErrContextFailedToCheckDedup    = "failed to check request id"
	ErrContextFailedToUpsertItem    = "failed to upsert inventory item"
	ErrContextFailedToUpdateTotals  = "failed to update inventory totals"
	ErrContextFailedToInsertResult  = "failed to insert opening result"
	ErrContextFailedToInsertTxn     = "failed to insert transaction"
	ErrContextFailedToInsertDedup   = "failed to insert dedup record"
	ErrContextFailedToCommit        = "failed to commit ledger transaction"
	ErrContextFailedToGetInventory  = "failed to get inventory"
	ErrContextFailedToListItems     = "failed to list inventory items"
	ErrContextFailedToListTxns      = "failed to list transactions"
)

// Log messages
const (
	LogMsgOpeningApplied  = "Opening applied to inventory"
	LogMsgOpeningReplayed = "Request id already committed, returning stored result"
	LogMsgRequestIDReused = "Request id reused for a different opening"
	LogMsgLockTimeout     = "Timed out waiting for user lock"
	LogMsgInventoryDrift  = "Inventory totals drifted from items, repaired"
	LogMsgInventoryInSync = "Inventory totals match items"
	LogMsgApplyRolledBack = "Ledger apply failed, rolled back"
)

// Log field keys for structured logging
const (
	LogFieldUserID        = "user_id"
	LogFieldRequestID     = "idempotency_key"
	LogFieldKind          = "kind"
	LogFieldTargetID      = "target_id"
	LogFieldTransactionID = "transaction_id"
	LogFieldCards         = "cards"
	LogFieldValue         = "value"
	LogFieldCachedCards   = "cached_cards"
	LogFieldCachedValue   = "cached_value"
	LogFieldError         = "error"
)
