package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/repository"
)

const inventoryLockPrefix = "inventory:"

func (s *Store) BeginLedgerTx(_ context.Context) (repository.LedgerTx, error) {
	return &ledgerTx{s: s}, nil
}

func (s *Store) GetCommittedOpening(_ context.Context, userID, requestID string) (*domain.CommittedOpening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedLocked(userID, requestID), nil
}

func (s *Store) GetInventory(_ context.Context, userID string) (*domain.UserInventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.inventories[userID]
	if !ok {
		return nil, nil
	}
	return &domain.UserInventory{
		UserID:     userID,
		TotalCards: inv.totalCards,
		TotalValue: inv.totalValue,
		Items:      sortedItems(inv),
		UpdatedAt:  inv.updatedAt,
	}, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txns := []domain.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			txns = append(txns, t)
		}
	}
	return txns, nil
}

func (s *Store) committedLocked(userID, requestID string) *domain.CommittedOpening {
	rec, ok := s.committed[dedupKey{userID: userID, requestID: requestID}]
	if !ok {
		return nil
	}
	return &rec
}

func sortedItems(inv *inventoryState) []domain.UserInventoryItem {
	items := make([]domain.UserInventoryItem, 0, len(inv.items))
	for _, item := range inv.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CardID != items[j].CardID {
			return items[i].CardID < items[j].CardID
		}
		return items[i].Condition < items[j].Condition
	})
	return items
}

// ledgerTx buffers writes as closures and runs them under the store lock on Commit.
// Reads observe committed state only.
type ledgerTx struct {
	s        *Store
	ops      []func(now time.Time)
	dedup    []dedupKey
	releases []func()
	done     bool
}

func (t *ledgerTx) check(op string) error {
	if t.done {
		return domain.ErrTxClosed
	}
	return t.s.failure(op)
}

func (t *ledgerTx) LockInventory(ctx context.Context, userID string) (*domain.UserInventory, error) {
	if err := t.check(OpLockInventory); err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	_, known := t.s.users[userID]
	t.s.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}

	release, err := t.s.rowLocks.Acquire(ctx, inventoryLockPrefix+userID, 0)
	if err != nil {
		return nil, err
	}
	t.releases = append(t.releases, release)

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	inv := t.s.inventoryLocked(userID)
	return &domain.UserInventory{
		UserID:     userID,
		TotalCards: inv.totalCards,
		TotalValue: inv.totalValue,
		UpdatedAt:  inv.updatedAt,
	}, nil
}

func (t *ledgerTx) GetCommittedOpening(_ context.Context, userID, requestID string) (*domain.CommittedOpening, error) {
	if err := t.check(""); err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.committedLocked(userID, requestID), nil
}

func (t *ledgerTx) UpsertInventoryItem(_ context.Context, userID string, delta domain.InventoryDelta) error {
	if err := t.check(OpUpsertItem); err != nil {
		return err
	}
	t.ops = append(t.ops, func(now time.Time) {
		inv := t.s.inventoryLocked(userID)
		key := itemKey{cardID: delta.CardID, condition: delta.Condition}
		item, ok := inv.items[key]
		if !ok {
			item = domain.UserInventoryItem{UserID: userID, CardID: delta.CardID, Condition: delta.Condition}
		}
		item.Quantity += delta.Quantity
		item.ValueTotal += delta.Value
		item.LastSnapshotValue = delta.LastValue
		item.UpdatedAt = now
		inv.items[key] = item
	})
	return nil
}

func (t *ledgerTx) IncrementInventoryTotals(_ context.Context, userID string, cards int, value int64) error {
	if err := t.check(OpIncrementTotals); err != nil {
		return err
	}
	t.ops = append(t.ops, func(now time.Time) {
		inv := t.s.inventoryLocked(userID)
		inv.totalCards += cards
		inv.totalValue += value
		inv.updatedAt = now
	})
	return nil
}

func (t *ledgerTx) ListInventoryItems(_ context.Context, userID string) ([]domain.UserInventoryItem, error) {
	if err := t.check(""); err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	inv, ok := t.s.inventories[userID]
	if !ok {
		return []domain.UserInventoryItem{}, nil
	}
	return sortedItems(inv), nil
}

func (t *ledgerTx) SetInventoryTotals(_ context.Context, userID string, cards int, value int64) error {
	if err := t.check(""); err != nil {
		return err
	}
	t.ops = append(t.ops, func(now time.Time) {
		inv := t.s.inventoryLocked(userID)
		inv.totalCards = cards
		inv.totalValue = value
		inv.updatedAt = now
	})
	return nil
}

func (t *ledgerTx) InsertPackResult(_ context.Context, result *domain.PackOpeningResult, boxResultID *uuid.UUID) error {
	if err := t.check(OpInsertPackResult); err != nil {
		return err
	}
	row := packResultRow{result: *result, boxResultID: boxResultID}
	t.ops = append(t.ops, func(time.Time) {
		t.s.packResults[row.result.ID] = row
	})
	return nil
}

func (t *ledgerTx) InsertBoxResult(_ context.Context, result *domain.BoxOpeningResult) error {
	if err := t.check(OpInsertBoxResult); err != nil {
		return err
	}
	box := *result
	t.ops = append(t.ops, func(time.Time) {
		t.s.boxResults[box.ID] = box
	})
	return nil
}

func (t *ledgerTx) InsertTransaction(_ context.Context, txn *domain.Transaction) error {
	if err := t.check(OpInsertTransaction); err != nil {
		return err
	}
	row := *txn
	row.Items = append([]domain.TransactionItem(nil), txn.Items...)
	t.ops = append(t.ops, func(time.Time) {
		t.s.transactions = append(t.s.transactions, row)
	})
	return nil
}

func (t *ledgerTx) InsertCommittedOpening(_ context.Context, record *domain.CommittedOpening) error {
	if err := t.check(OpInsertDedup); err != nil {
		return err
	}
	key := dedupKey{userID: record.UserID, requestID: record.RequestID}

	t.s.mu.RLock()
	exists := t.s.committedLocked(key.userID, key.requestID) != nil
	t.s.mu.RUnlock()
	if exists {
		return fmt.Errorf("request %q: %w", record.RequestID, domain.ErrSerialization)
	}

	rec := *record
	rec.Replayed = false
	t.dedup = append(t.dedup, key)
	t.ops = append(t.ops, func(time.Time) {
		t.s.committed[key] = rec
	})
	return nil
}

func (t *ledgerTx) Commit(_ context.Context) error {
	if t.done {
		return domain.ErrTxClosed
	}
	defer t.finish()

	if err := t.s.failure(OpCommit); err != nil {
		return err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, key := range t.dedup {
		if _, ok := t.s.committed[key]; ok {
			return fmt.Errorf("request %q: %w", key.requestID, domain.ErrSerialization)
		}
	}
	now := time.Now().UTC()
	for _, op := range t.ops {
		op(now)
	}
	return nil
}

func (t *ledgerTx) Rollback(_ context.Context) error {
	if t.done {
		return domain.ErrTxClosed
	}
	t.finish()
	return nil
}

func (t *ledgerTx) finish() {
	t.done = true
	t.ops = nil
	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
	t.releases = nil
}
