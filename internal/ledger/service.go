package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/PackOpener_Go/internal/concurrency"
	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/logger"
	"github.com/osse101/PackOpener_Go/internal/metrics"
	"github.com/osse101/PackOpener_Go/internal/repository"
)

// DefaultLockTimeout bounds the wait for a user's lock.
const DefaultLockTimeout = 5 * time.Second

// Service is the single writer of user inventories and the transaction ledger.
type Service interface {
	// Apply commits an opening exactly once per (userID, requestID).
	Apply(ctx context.Context, userID, requestID string, opening domain.Opening) (*domain.CommittedOpening, error)
	// Lookup returns the committed record for a request id, or nil.
	Lookup(ctx context.Context, userID, requestID string) (*domain.CommittedOpening, error)
	Inventory(ctx context.Context, userID string) (*domain.UserInventory, error)
	History(ctx context.Context, userID string) ([]domain.Transaction, error)
	// Reconcile recomputes cached totals from inventory items and repairs drift.
	Reconcile(ctx context.Context, userID string) (*domain.ReconcileReport, error)
}

type service struct {
	repo        repository.Ledger
	locks       *concurrency.LockManager
	lockTimeout time.Duration
	now         func() time.Time
}

// NewService creates a ledger service. A non-positive lockTimeout uses DefaultLockTimeout.
func NewService(repo repository.Ledger, locks *concurrency.LockManager, lockTimeout time.Duration) Service {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &service{
		repo:        repo,
		locks:       locks,
		lockTimeout: lockTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Apply(ctx context.Context, userID, requestID string, opening domain.Opening) (*domain.CommittedOpening, error) {
	if err := validateOpening(userID, requestID, opening); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With(LogFieldUserID, userID, LogFieldRequestID, requestID)

	release, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.repo.BeginLedgerTx(ctx)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	if _, err := tx.LockInventory(ctx, userID); err != nil {
		return nil, persistErr(ErrContextFailedToLockInventory, err)
	}

	existing, err := tx.GetCommittedOpening(ctx, userID, requestID)
	if err != nil {
		return nil, persistErr(ErrContextFailedToCheckDedup, err)
	}
	if existing != nil {
		return replay(ctx, existing, opening)
	}

	cards := opening.Cards()
	deltas, items, totalValue := aggregate(cards)

	for _, delta := range deltas {
		if err := tx.UpsertInventoryItem(ctx, userID, delta); err != nil {
			return nil, persistErr(ErrContextFailedToUpsertItem, err)
		}
	}
	if err := tx.IncrementInventoryTotals(ctx, userID, len(cards), totalValue); err != nil {
		return nil, persistErr(ErrContextFailedToUpdateTotals, err)
	}

	if err := insertResults(ctx, tx, opening); err != nil {
		return nil, err
	}

	now := s.now()
	txn := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          domain.TransactionTypePackOpening,
		Status:        domain.TransactionStatusCompleted,
		RequestID:     requestID,
		ReferenceKind: opening.Kind,
		ReferenceID:   opening.ResultID(),
		TotalCards:    len(cards),
		TotalValue:    totalValue,
		Items:         items,
		CreatedAt:     now,
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return nil, persistErr(ErrContextFailedToInsertTxn, err)
	}

	record := &domain.CommittedOpening{
		UserID:        userID,
		RequestID:     requestID,
		Kind:          opening.Kind,
		TargetID:      opening.TargetID(),
		TransactionID: txn.ID,
		Pack:          opening.Pack,
		Box:           opening.Box,
		CommittedAt:   now,
	}
	if err := tx.InsertCommittedOpening(ctx, record); err != nil {
		return nil, persistErr(ErrContextFailedToInsertDedup, err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Warn(LogMsgApplyRolledBack, LogFieldError, err)
		return nil, persistErr(ErrContextFailedToCommit, err)
	}

	log.Info(LogMsgOpeningApplied,
		LogFieldKind, opening.Kind,
		LogFieldTargetID, record.TargetID,
		LogFieldTransactionID, txn.ID,
		LogFieldCards, len(cards),
		LogFieldValue, totalValue)
	return record, nil
}

func (s *service) Lookup(ctx context.Context, userID, requestID string) (*domain.CommittedOpening, error) {
	record, err := s.repo.GetCommittedOpening(ctx, userID, requestID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToCheckDedup, err)
	}
	if record != nil {
		record.Replayed = true
	}
	return record, nil
}

func (s *service) Inventory(ctx context.Context, userID string) (*domain.UserInventory, error) {
	inv, err := s.repo.GetInventory(ctx, userID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToGetInventory, err)
	}
	if inv == nil {
		return &domain.UserInventory{UserID: userID, Items: []domain.UserInventoryItem{}}, nil
	}
	return inv, nil
}

func (s *service) History(ctx context.Context, userID string) ([]domain.Transaction, error) {
	txns, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToListTxns, err)
	}
	return txns, nil
}

func (s *service) Reconcile(ctx context.Context, userID string) (*domain.ReconcileReport, error) {
	log := logger.FromContext(ctx).With(LogFieldUserID, userID)

	release, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.repo.BeginLedgerTx(ctx)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToBeginTx, err)
	}
	defer repository.SafeRollback(ctx, tx)

	inv, err := tx.LockInventory(ctx, userID)
	if err != nil {
		return nil, persistErr(ErrContextFailedToLockInventory, err)
	}
	items, err := tx.ListInventoryItems(ctx, userID)
	if err != nil {
		return nil, persistErr(ErrContextFailedToListItems, err)
	}

	computed := domain.UserInventory{Items: items}
	cards, value := computed.ComputeTotals()
	report := &domain.ReconcileReport{
		UserID:        userID,
		CachedCards:   inv.TotalCards,
		CachedValue:   inv.TotalValue,
		ComputedCards: cards,
		ComputedValue: value,
		DriftDetected: cards != inv.TotalCards || value != inv.TotalValue,
	}

	if !report.DriftDetected {
		log.Debug(LogMsgInventoryInSync, LogFieldCards, cards, LogFieldValue, value)
		return report, nil
	}

	if err := tx.SetInventoryTotals(ctx, userID, cards, value); err != nil {
		return nil, persistErr(ErrContextFailedToUpdateTotals, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr(ErrContextFailedToCommit, err)
	}
	report.Repaired = true

	metrics.InventoryDrift.Inc()
	log.Warn(LogMsgInventoryDrift,
		LogFieldCachedCards, inv.TotalCards,
		LogFieldCachedValue, inv.TotalValue,
		LogFieldCards, cards,
		LogFieldValue, value)
	return report, nil
}

// lock acquires the per-user lock and records how long the wait took.
func (s *service) lock(ctx context.Context, userID string) (func(), error) {
	start := time.Now()
	release, err := s.locks.Acquire(ctx, userID, s.lockTimeout)
	metrics.LockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, domain.ErrLockTimeout) {
			metrics.LockTimeouts.Inc()
			logger.FromContext(ctx).Warn(LogMsgLockTimeout, LogFieldUserID, userID, LogFieldError, err)
		}
		return nil, err
	}
	return release, nil
}

func replay(ctx context.Context, existing *domain.CommittedOpening, opening domain.Opening) (*domain.CommittedOpening, error) {
	log := logger.FromContext(ctx)
	if !existing.Matches(opening.Kind, opening.TargetID()) {
		log.Warn(LogMsgRequestIDReused,
			LogFieldKind, opening.Kind,
			LogFieldTargetID, opening.TargetID(),
			LogFieldTransactionID, existing.TransactionID)
		return nil, fmt.Errorf("request %q was committed for %s %d: %w",
			existing.RequestID, existing.Kind, existing.TargetID, domain.ErrRequestIDReused)
	}
	existing.Replayed = true
	log.Info(LogMsgOpeningReplayed, LogFieldTransactionID, existing.TransactionID)
	return existing, nil
}

func insertResults(ctx context.Context, tx repository.LedgerTx, opening domain.Opening) error {
	if opening.Kind == domain.ProductPack {
		if err := tx.InsertPackResult(ctx, opening.Pack, nil); err != nil {
			return persistErr(ErrContextFailedToInsertResult, err)
		}
		return nil
	}

	box := opening.Box
	if err := tx.InsertBoxResult(ctx, box); err != nil {
		return persistErr(ErrContextFailedToInsertResult, err)
	}
	for i := range box.Packs {
		if err := tx.InsertPackResult(ctx, &box.Packs[i], &box.ID); err != nil {
			return persistErr(ErrContextFailedToInsertResult, err)
		}
	}
	return nil
}

type itemKey struct {
	cardID    int64
	unitValue int64
}

// aggregate folds drawn cards into one inventory delta per card and one
// transaction line per (card, unit value). Both are ordered by card id so
// concurrent writers touch rows in the same order.
func aggregate(cards []domain.DrawnCard) ([]domain.InventoryDelta, []domain.TransactionItem, int64) {
	deltaIdx := make(map[int64]int)
	itemIdx := make(map[itemKey]int)
	var deltas []domain.InventoryDelta
	var items []domain.TransactionItem
	var total int64

	for _, c := range cards {
		total += c.Value

		if i, ok := deltaIdx[c.CardID]; ok {
			deltas[i].Quantity++
			deltas[i].Value += c.Value
			deltas[i].LastValue = c.Value
		} else {
			deltaIdx[c.CardID] = len(deltas)
			deltas = append(deltas, domain.InventoryDelta{
				CardID:    c.CardID,
				Condition: domain.ConditionMint,
				Quantity:  1,
				Value:     c.Value,
				LastValue: c.Value,
			})
		}

		key := itemKey{cardID: c.CardID, unitValue: c.Value}
		if i, ok := itemIdx[key]; ok {
			items[i].Quantity++
		} else {
			itemIdx[key] = len(items)
			items = append(items, domain.TransactionItem{CardID: c.CardID, Quantity: 1, UnitValue: c.Value})
		}
	}

	sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].CardID < deltas[j].CardID })
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CardID != items[j].CardID {
			return items[i].CardID < items[j].CardID
		}
		return items[i].UnitValue < items[j].UnitValue
	})
	return deltas, items, total
}

func validateOpening(userID, requestID string, opening domain.Opening) error {
	if userID == "" || requestID == "" {
		return fmt.Errorf("%w: user id and request id are required", domain.ErrInvalidRequest)
	}
	switch opening.Kind {
	case domain.ProductPack:
		if opening.Pack == nil || opening.Box != nil {
			return fmt.Errorf("%w: pack opening must carry exactly one pack result", domain.ErrInvalidRequest)
		}
		if opening.Pack.UserID != userID {
			return fmt.Errorf("%w: result belongs to %q", domain.ErrInvalidRequest, opening.Pack.UserID)
		}
	case domain.ProductBox:
		if opening.Box == nil || opening.Pack != nil {
			return fmt.Errorf("%w: box opening must carry exactly one box result", domain.ErrInvalidRequest)
		}
		if opening.Box.UserID != userID {
			return fmt.Errorf("%w: result belongs to %q", domain.ErrInvalidRequest, opening.Box.UserID)
		}
	default:
		return fmt.Errorf("%w: unknown product kind %q", domain.ErrInvalidRequest, opening.Kind)
	}
	return nil
}

// persistErr keeps conflicts, missing rows, invalid input and cancellation as-is
// and wraps everything else as internal.
func persistErr(msg string, err error) error {
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return domain.Internal(msg, err)
}
