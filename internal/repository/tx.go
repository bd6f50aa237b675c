package repository

import (
	"context"
	"errors"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/logger"
)

// LogMsgRollbackFailed is logged when an abandoned ledger transaction cannot be rolled back.
const LogMsgRollbackFailed = "Failed to roll back ledger transaction"

// Tx is the commit/rollback half of a repository transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SafeRollback is deferred right after a transaction begins. After a successful
// Commit the rollback reports a closed transaction, which is expected and not logged.
func SafeRollback(ctx context.Context, tx Tx) {
	err := tx.Rollback(ctx)
	if err == nil || errors.Is(err, domain.ErrTxClosed) || err.Error() == domain.ErrMsgTxClosed {
		return
	}
	logger.FromContext(ctx).Error(LogMsgRollbackFailed, "error", err)
}
