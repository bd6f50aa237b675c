package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// Ledger defines the persistence needed by the ledger & inventory applier.
// All writes for one opening happen inside a single LedgerTx.
type Ledger interface {
	BeginLedgerTx(ctx context.Context) (LedgerTx, error)
	GetCommittedOpening(ctx context.Context, userID, requestID string) (*domain.CommittedOpening, error)
	GetInventory(ctx context.Context, userID string) (*domain.UserInventory, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// LedgerTx is one atomic unit of ledger work scoped to a single user.
type LedgerTx interface {
	Tx // Commit, Rollback

	// LockInventory takes the row-level write lock on the user's inventory,
	// creating an empty inventory row on first use.
	LockInventory(ctx context.Context, userID string) (*domain.UserInventory, error)
	GetCommittedOpening(ctx context.Context, userID, requestID string) (*domain.CommittedOpening, error)

	UpsertInventoryItem(ctx context.Context, userID string, delta domain.InventoryDelta) error
	IncrementInventoryTotals(ctx context.Context, userID string, cards int, value int64) error
	ListInventoryItems(ctx context.Context, userID string) ([]domain.UserInventoryItem, error)
	SetInventoryTotals(ctx context.Context, userID string, cards int, value int64) error

	InsertPackResult(ctx context.Context, result *domain.PackOpeningResult, boxResultID *uuid.UUID) error
	InsertBoxResult(ctx context.Context, result *domain.BoxOpeningResult) error
	InsertTransaction(ctx context.Context, txn *domain.Transaction) error
	InsertCommittedOpening(ctx context.Context, record *domain.CommittedOpening) error
}
