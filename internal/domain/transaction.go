package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies ledger rows.
type TransactionType string

const (
	TransactionTypePackOpening TransactionType = "PACK_OPENING"
)

// TransactionStatus is the lifecycle of a ledger row. COMPLETED rows are immutable.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Transaction is an append-only ledger row.
type Transaction struct {
	ID            uuid.UUID         `json:"transaction_id" db:"transaction_id"`
	UserID        string            `json:"user_id" db:"user_id"`
	Type          TransactionType   `json:"type" db:"transaction_type"`
	Status        TransactionStatus `json:"status" db:"status"`
	RequestID     string            `json:"request_id" db:"request_id"`
	ReferenceKind ProductKind       `json:"reference_kind" db:"reference_kind"`
	ReferenceID   uuid.UUID         `json:"reference_id" db:"reference_id"`
	TotalCards    int               `json:"total_cards" db:"total_cards"`
	TotalValue    int64             `json:"total_value" db:"total_value"`
	Items         []TransactionItem `json:"items"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// TransactionItem is one card line of a ledger row.
type TransactionItem struct {
	CardID    int64 `json:"card_id" db:"card_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
	UnitValue int64 `json:"unit_value" db:"unit_value"`
}
