package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PackOpener_Go/internal/concurrency"
	"github.com/osse101/PackOpener_Go/internal/database/memory"
	"github.com/osse101/PackOpener_Go/internal/domain"
)

const (
	testUser  = "user-1"
	otherUser = "user-2"
)

func newTestService(t *testing.T) (Service, *memory.Store, *concurrency.LockManager) {
	t.Helper()
	store := memory.NewStore()
	store.AddUser(domain.User{ID: testUser, Username: "alice"})
	store.AddUser(domain.User{ID: otherUser, Username: "bob"})
	locks := concurrency.NewLockManager()
	return NewService(store, locks, 200*time.Millisecond), store, locks
}

func packOpening(userID string, packID int64, cards ...domain.DrawnCard) domain.Opening {
	var total int64
	breakdown := make(map[domain.CardRarity]int)
	for _, c := range cards {
		total += c.Value
		breakdown[c.Rarity]++
	}
	return domain.Opening{
		Kind: domain.ProductPack,
		Pack: &domain.PackOpeningResult{
			ID:              uuid.New(),
			UserID:          userID,
			PackID:          packID,
			Cards:           cards,
			TotalValue:      total,
			RarityBreakdown: breakdown,
			OpenedAt:        time.Now().UTC(),
		},
	}
}

func card(id, value int64, rarity domain.CardRarity) domain.DrawnCard {
	return domain.DrawnCard{CardID: id, Rarity: rarity, Value: value, Slot: domain.SlotFill}
}

func TestApply_CreditsInventoryAndLedger(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	opening := packOpening(testUser, 1,
		card(1, 10, domain.RarityCommon),
		card(1, 10, domain.RarityCommon),
		card(2, 250, domain.RarityRare),
	)

	record, err := svc.Apply(ctx, testUser, "req-1", opening)
	require.NoError(t, err)
	assert.False(t, record.Replayed)
	assert.Equal(t, domain.ProductPack, record.Kind)
	assert.Equal(t, int64(1), record.TargetID)
	assert.Same(t, opening.Pack, record.Pack)

	inv, err := svc.Inventory(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.TotalCards)
	assert.Equal(t, int64(270), inv.TotalValue)
	assert.True(t, inv.IsConsistent())
	require.Len(t, inv.Items, 2)
	assert.Equal(t, 2, inv.Items[0].Quantity)
	assert.Equal(t, int64(20), inv.Items[0].ValueTotal)
	assert.Equal(t, domain.ConditionMint, inv.Items[0].Condition)

	txns, err := svc.History(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	txn := txns[0]
	assert.Equal(t, record.TransactionID, txn.ID)
	assert.Equal(t, domain.TransactionTypePackOpening, txn.Type)
	assert.Equal(t, domain.TransactionStatusCompleted, txn.Status)
	assert.Equal(t, opening.Pack.ID, txn.ReferenceID)
	assert.Equal(t, 3, txn.TotalCards)
	assert.Equal(t, []domain.TransactionItem{
		{CardID: 1, Quantity: 2, UnitValue: 10},
		{CardID: 2, Quantity: 1, UnitValue: 250},
	}, txn.Items)
	assert.Equal(t, 1, store.PackResultCount())
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	opening := packOpening(testUser, 1, card(1, 10, domain.RarityCommon), card(2, 250, domain.RarityRare))
	first, err := svc.Apply(ctx, testUser, "req-1", opening)
	require.NoError(t, err)

	// A retry carries a freshly drawn result; the stored one must win.
	retry := packOpening(testUser, 1, card(3, 9999, domain.RaritySecretRare))
	second, err := svc.Apply(ctx, testUser, "req-1", retry)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, *first.Pack, *second.Pack)

	inv, err := svc.Inventory(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.TotalCards)
	assert.Equal(t, int64(260), inv.TotalValue)

	txns, err := svc.History(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, 1, store.PackResultCount())

	looked, err := svc.Lookup(ctx, testUser, "req-1")
	require.NoError(t, err)
	require.NotNil(t, looked)
	assert.True(t, looked.Replayed)

	none, err := svc.Lookup(ctx, testUser, "req-unknown")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestApply_RequestIDReusedForDifferentTarget(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 1, card(1, 10, domain.RarityCommon)))
	require.NoError(t, err)

	_, err = svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 2, card(1, 10, domain.RarityCommon)))
	assert.ErrorIs(t, err, domain.ErrRequestIDReused)
	assert.False(t, domain.IsRetryable(err))

	// Request ids are scoped per user.
	_, err = svc.Apply(ctx, otherUser, "req-1", packOpening(otherUser, 2, card(1, 10, domain.RarityCommon)))
	assert.NoError(t, err)
}

func TestApply_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc, store, locks := newTestService(t)

	_, err := svc.Apply(ctx, "ghost-user", "req-1", packOpening("ghost-user", 1, card(1, 10, domain.RarityCommon)))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInternal)
	assert.False(t, domain.IsRetryable(err))

	inv, err := svc.Inventory(ctx, "ghost-user")
	require.NoError(t, err)
	assert.Zero(t, inv.TotalCards)
	assert.Empty(t, inv.Items)
	assert.Zero(t, store.PackResultCount())
	assert.Zero(t, locks.Held())

	rec, err := svc.Lookup(ctx, "ghost-user", "req-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = svc.Reconcile(ctx, "ghost-user")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestApply_Box(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	box := &domain.BoxOpeningResult{ID: uuid.New(), UserID: testUser, BoxID: 9, OpenedAt: time.Now()}
	for i := 0; i < 6; i++ {
		p := packOpening(testUser, 1,
			card(1, 10, domain.RarityCommon),
			card(int64(10+i), 100, domain.RarityRare),
		).Pack
		box.Packs = append(box.Packs, *p)
		box.TotalCardsObtained += p.CardCount()
		box.TotalValue += p.TotalValue
	}

	record, err := svc.Apply(ctx, testUser, "box-req", domain.Opening{Kind: domain.ProductBox, Box: box})
	require.NoError(t, err)
	assert.Equal(t, int64(9), record.TargetID)
	assert.Same(t, box, record.Box)

	inv, err := svc.Inventory(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 12, inv.TotalCards)
	assert.Equal(t, int64(660), inv.TotalValue)
	assert.True(t, inv.IsConsistent())
	assert.Len(t, inv.Items, 7)

	assert.Equal(t, 1, store.BoxResultCount())
	assert.Equal(t, 6, store.PackResultCount())

	txns, err := svc.History(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, domain.ProductBox, txns[0].ReferenceKind)
	assert.Equal(t, box.ID, txns[0].ReferenceID)
}

func TestApply_RollsBackOnPersistenceFailure(t *testing.T) {
	ops := []string{
		memory.OpLockInventory,
		memory.OpUpsertItem,
		memory.OpIncrementTotals,
		memory.OpInsertPackResult,
		memory.OpInsertTransaction,
		memory.OpInsertDedup,
		memory.OpCommit,
	}

	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			ctx := context.Background()
			svc, store, locks := newTestService(t)
			store.FailOn(op, nil)

			_, err := svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 1, card(1, 10, domain.RarityCommon)))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInternal)
			assert.ErrorIs(t, err, memory.ErrInjected)
			assert.True(t, domain.IsRetryable(err))

			inv, err := svc.Inventory(ctx, testUser)
			require.NoError(t, err)
			assert.Zero(t, inv.TotalCards)
			assert.Empty(t, inv.Items)
			assert.Zero(t, store.PackResultCount())

			rec, err := svc.Lookup(ctx, testUser, "req-1")
			require.NoError(t, err)
			assert.Nil(t, rec)
			assert.Zero(t, locks.Held(), "user lock released after failure")

			// The same request succeeds once the store recovers.
			store.ClearFailures()
			_, err = svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 1, card(1, 10, domain.RarityCommon)))
			assert.NoError(t, err)
		})
	}
}

func TestApply_ConcurrentOpeningsSameUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddUser(domain.User{ID: testUser})
	svc := NewService(store, concurrency.NewLockManager(), 10*time.Second)

	const n = 100
	var wg sync.WaitGroup
	errs := make(chan error, n)
	var expectedCards int
	var expectedValue int64
	openings := make([]domain.Opening, n)
	for i := 0; i < n; i++ {
		openings[i] = packOpening(testUser, 1,
			card(int64(i%7), int64(i), domain.RarityCommon),
			card(int64(100+i%3), 50, domain.RarityRare),
		)
		expectedCards += 2
		expectedValue += int64(i) + 50
	}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Apply(ctx, testUser, fmt.Sprintf("req-%d", i), openings[i])
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	txns, err := svc.History(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, txns, n)

	inv, err := svc.Inventory(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, expectedCards, inv.TotalCards)
	assert.Equal(t, expectedValue, inv.TotalValue)
	assert.True(t, inv.IsConsistent())
}

func TestApply_LockTimeout(t *testing.T) {
	ctx := context.Background()
	svc, _, locks := newTestService(t)

	release, err := locks.Acquire(ctx, testUser, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 1, card(1, 10, domain.RarityCommon)))
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
	assert.True(t, domain.IsRetryable(err))

	// Other users are unaffected.
	_, err = svc.Apply(ctx, otherUser, "req-1", packOpening(otherUser, 1, card(1, 10, domain.RarityCommon)))
	assert.NoError(t, err)
}

func TestApply_CancelledContext(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 1, card(1, 10, domain.RarityCommon)))
	assert.ErrorIs(t, err, context.Canceled)

	rec, err := svc.Lookup(context.Background(), testUser, "req-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestApply_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	valid := packOpening(testUser, 1, card(1, 10, domain.RarityCommon))

	tests := []struct {
		name      string
		userID    string
		requestID string
		opening   domain.Opening
	}{
		{"missing user", "", "req", valid},
		{"missing request", testUser, "", valid},
		{"unknown kind", testUser, "req", domain.Opening{Kind: "CRATE", Pack: valid.Pack}},
		{"pack kind without pack", testUser, "req", domain.Opening{Kind: domain.ProductPack}},
		{"box kind without box", testUser, "req", domain.Opening{Kind: domain.ProductBox}},
		{"result of another user", otherUser, "req", valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(ctx, tt.userID, tt.requestID, tt.opening)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	_, err := svc.Apply(ctx, testUser, "req-1", packOpening(testUser, 1, card(1, 10, domain.RarityCommon), card(2, 30, domain.RarityRare)))
	require.NoError(t, err)

	report, err := svc.Reconcile(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, report.DriftDetected)
	assert.False(t, report.Repaired)

	store.CorruptTotals(testUser, 99, 1)

	report, err = svc.Reconcile(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, report.DriftDetected)
	assert.True(t, report.Repaired)
	assert.Equal(t, 99, report.CachedCards)
	assert.Equal(t, 2, report.ComputedCards)
	assert.Equal(t, int64(40), report.ComputedValue)

	inv, err := svc.Inventory(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, inv.IsConsistent())
}

func TestInventory_UnknownUserIsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	inv, err := svc.Inventory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", inv.UserID)
	assert.Zero(t, inv.TotalCards)
	assert.NotNil(t, inv.Items)
}
