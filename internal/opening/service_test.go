package opening

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PackOpener_Go/internal/composer"
	"github.com/osse101/PackOpener_Go/internal/concurrency"
	"github.com/osse101/PackOpener_Go/internal/database/memory"
	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/draw"
	"github.com/osse101/PackOpener_Go/internal/event"
	"github.com/osse101/PackOpener_Go/internal/ledger"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
	"github.com/osse101/PackOpener_Go/internal/repository"
)

// MockStock is a testify mock of repository.Stock.
type MockStock struct {
	mock.Mock
}

func (m *MockStock) ReserveStock(ctx context.Context, kind domain.ProductKind, productID int64, qty int) (domain.ReservationToken, error) {
	args := m.Called(ctx, kind, productID, qty)
	return args.Get(0).(domain.ReservationToken), args.Error(1)
}

func (m *MockStock) ReleaseStock(ctx context.Context, token domain.ReservationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type fixture struct {
	svc    Service
	store  *memory.Store
	ledger ledger.Service
	events *recorder
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) handle(_ context.Context, evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) ofType(typ event.Type) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, evt := range r.events {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}

// newFixture wires the service over a seeded memory store. A nil stock uses the store itself.
func newFixture(t *testing.T, stock repository.Stock, activate bool) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	memory.SeedDemo(store)
	if stock == nil {
		stock = store
	}

	tables, err := raritytable.NewService(store, 8)
	require.NoError(t, err)
	if activate {
		_, err = tables.ActivateSet(ctx, memory.DemoSetID)
		require.NoError(t, err)
	}

	comp := composer.New(draw.NewEngine(draw.SeededFactory(7)), store)
	ledgerSvc := ledger.NewService(store, concurrency.NewLockManager(), time.Second)

	rec := &recorder{}
	bus := event.NewMemoryBus()
	bus.Subscribe(event.OpeningCompleted, rec.handle)
	bus.Subscribe(event.StockReleased, rec.handle)

	return &fixture{
		svc:    NewService(store, stock, tables, comp, ledgerSvc, bus, time.Second),
		store:  store,
		ledger: ledgerSvc,
		events: rec,
	}
}

func TestOpenPack_Success(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	before := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)

	result, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 10, result.CardCount())
	assert.Equal(t, memory.DemoUserID, result.UserID)

	assert.Equal(t, before-1, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

	inv, err := f.ledger.Inventory(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.TotalCards)
	assert.Equal(t, result.TotalValue, inv.TotalValue)
	assert.True(t, inv.IsConsistent())

	completed := f.events.ofType(event.OpeningCompleted)
	require.Len(t, completed, 1)
	payload, err := event.DecodePayload[domain.OpeningCompletedPayload](completed[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, result.ID, payload.ResultID)
	assert.Equal(t, "req-1", payload.RequestID)
	assert.Empty(t, f.events.ofType(event.StockReleased))
}

func TestOpenPack_Idempotent(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	before := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)

	first, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	require.NoError(t, err)
	second, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before-1, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

	inv, err := f.ledger.Inventory(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.TotalCards)

	history, err := f.ledger.History(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Len(t, f.events.ofType(event.OpeningCompleted), 1)
}

func TestOpenPack_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	before := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)

	const callers = 20
	results := make([]*domain.PackOpeningResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "same-request")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID)
	}
	assert.Equal(t, before-1, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

	inv, err := f.ledger.Inventory(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.TotalCards)
	assert.Equal(t, 1, f.store.PackResultCount())
}

func TestOpenPack_RequestIDReused(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()

	_, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	require.NoError(t, err)

	_, err = f.svc.OpenBox(ctx, memory.DemoUserID, memory.DemoBoxID, "req-1")
	assert.ErrorIs(t, err, domain.ErrRequestIDReused)
	assert.False(t, domain.IsRetryable(err))
}

func TestOpenBox_Success(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	packsBefore := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)
	boxesBefore := f.store.StockLevel(domain.ProductBox, memory.DemoBoxID)

	result, err := f.svc.OpenBox(ctx, memory.DemoUserID, memory.DemoBoxID, "box-1")
	require.NoError(t, err)
	assert.Len(t, result.Packs, 6)
	assert.Equal(t, 60, result.TotalCardsObtained)

	assert.Equal(t, boxesBefore-1, f.store.StockLevel(domain.ProductBox, memory.DemoBoxID))
	assert.Equal(t, packsBefore, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

	inv, err := f.ledger.Inventory(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, 60, inv.TotalCards)
	assert.Equal(t, result.TotalValue, inv.TotalValue)
	assert.Equal(t, 1, f.store.BoxResultCount())
	assert.Equal(t, 6, f.store.PackResultCount())
}

func TestOpen_RejectedBeforeReservation(t *testing.T) {
	tests := []struct {
		name     string
		activate bool
		open     func(Service) error
		wantErr  error
	}{
		{
			name:     "unknown user",
			activate: true,
			open: func(s Service) error {
				_, err := s.OpenPack(context.Background(), "nobody", memory.DemoPackID, "r")
				return err
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:     "unknown pack",
			activate: true,
			open: func(s Service) error {
				_, err := s.OpenPack(context.Background(), memory.DemoUserID, 404, "r")
				return err
			},
			wantErr: domain.ErrPackNotFound,
		},
		{
			name:     "unknown box",
			activate: true,
			open: func(s Service) error {
				_, err := s.OpenBox(context.Background(), memory.DemoUserID, 404, "r")
				return err
			},
			wantErr: domain.ErrBoxNotFound,
		},
		{
			name:     "set not active",
			activate: false,
			open: func(s Service) error {
				_, err := s.OpenPack(context.Background(), memory.DemoUserID, memory.DemoPackID, "r")
				return err
			},
			wantErr: domain.ErrSetNotActive,
		},
		{
			name:     "missing request id",
			activate: true,
			open: func(s Service) error {
				_, err := s.OpenPack(context.Background(), memory.DemoUserID, memory.DemoPackID, "")
				return err
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:     "missing user id",
			activate: true,
			open: func(s Service) error {
				_, err := s.OpenBox(context.Background(), "", memory.DemoBoxID, "r")
				return err
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := new(MockStock)
			f := newFixture(t, stock, tt.activate)

			err := tt.open(f.svc)
			assert.ErrorIs(t, err, tt.wantErr)
			stock.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOpenPack_OutOfStock(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	f.store.SetStock(domain.ProductPack, memory.DemoPackID, 0)

	_, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.True(t, domain.IsRetryable(err))

	inv, err := f.ledger.Inventory(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Zero(t, inv.TotalCards)
	assert.Empty(t, f.events.ofType(event.StockReleased))
}

func TestOpenPack_ApplyFailureReleasesStock(t *testing.T) {
	ops := []string{memory.OpUpsertItem, memory.OpInsertTransaction, memory.OpCommit}

	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t, nil, true)
			ctx := context.Background()
			before := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)
			f.store.FailOn(op, nil)

			_, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
			assert.ErrorIs(t, err, domain.ErrInternal)
			assert.Equal(t, before, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

			released := f.events.ofType(event.StockReleased)
			require.Len(t, released, 1)
			payload, err := event.DecodePayload[event.StockReleasedPayloadV1](released[0].Payload)
			require.NoError(t, err)
			assert.Equal(t, ReasonApplyFailed, payload.Reason)
			assert.Empty(t, f.events.ofType(event.OpeningCompleted))

			// the same request id succeeds once the store recovers
			f.store.ClearFailures()
			result, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
			require.NoError(t, err)
			assert.Equal(t, 10, result.CardCount())
		})
	}
}

func TestOpenPack_PricingFailureReleasesStock(t *testing.T) {
	f := newFixture(t, nil, true)
	before := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)
	f.store.FailOn(memory.OpCurrentValues, nil)

	_, err := f.svc.OpenPack(context.Background(), memory.DemoUserID, memory.DemoPackID, "req-1")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, before, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

	released := f.events.ofType(event.StockReleased)
	require.Len(t, released, 1)
	payload, err := event.DecodePayload[event.StockReleasedPayloadV1](released[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, ReasonDrawFailed, payload.Reason)
}

type emptyPricer struct{}

func (emptyPricer) CurrentValues(context.Context, []int64) (map[int64]int64, error) {
	return map[int64]int64{}, nil
}

func TestOpenPack_UnpricedCardReleasesStock(t *testing.T) {
	f := newFixture(t, nil, true)
	ctx := context.Background()
	tables, err := raritytable.NewService(f.store, 8)
	require.NoError(t, err)
	_, err = tables.ActivateSet(ctx, memory.DemoSetID)
	require.NoError(t, err)
	svc := NewService(f.store, f.store, tables,
		composer.New(draw.NewEngine(draw.SeededFactory(7)), emptyPricer{}),
		f.ledger, event.NewMemoryBus(), time.Second)
	before := f.store.StockLevel(domain.ProductPack, memory.DemoPackID)

	_, err = svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, before, f.store.StockLevel(domain.ProductPack, memory.DemoPackID))

	inv, err := f.ledger.Inventory(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Zero(t, inv.TotalCards)
	assert.Zero(t, inv.TotalValue)
}

func TestOpenPack_CancelledAfterReservation(t *testing.T) {
	stock := new(MockStock)
	f := newFixture(t, stock, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := domain.ReservationToken{ID: "res-1", Kind: domain.ProductPack, ProductID: memory.DemoPackID, Quantity: 1}
	stock.On("ReserveStock", mock.Anything, domain.ProductPack, memory.DemoPackID, 1).
		Run(func(mock.Arguments) { cancel() }).
		Return(token, nil).Once()
	stock.On("ReleaseStock", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), token).Return(nil).Once()

	_, err := f.svc.OpenPack(ctx, memory.DemoUserID, memory.DemoPackID, "req-1")
	assert.ErrorIs(t, err, context.Canceled)
	stock.AssertExpectations(t)

	inv, err := f.ledger.Inventory(context.Background(), memory.DemoUserID)
	require.NoError(t, err)
	assert.Zero(t, inv.TotalCards)

	released := f.events.ofType(event.StockReleased)
	require.Len(t, released, 1)
	payload, err := event.DecodePayload[event.StockReleasedPayloadV1](released[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancelled, payload.Reason)
	assert.Equal(t, "res-1", payload.ReservationID)
}

func TestOpenPack_ReleaseFailureKeepsOriginalError(t *testing.T) {
	stock := new(MockStock)
	f := newFixture(t, stock, true)
	f.store.FailOn(memory.OpCommit, nil)

	token := domain.ReservationToken{ID: "res-1", Kind: domain.ProductPack, ProductID: memory.DemoPackID, Quantity: 1}
	stock.On("ReserveStock", mock.Anything, domain.ProductPack, memory.DemoPackID, 1).Return(token, nil).Once()
	stock.On("ReleaseStock", mock.Anything, token).Return(errors.New("stock service down")).Once()

	_, err := f.svc.OpenPack(context.Background(), memory.DemoUserID, memory.DemoPackID, "req-1")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.NotContains(t, err.Error(), "stock service down")
	stock.AssertExpectations(t)
}

func TestOpenPack_ReserveInfrastructureError(t *testing.T) {
	stock := new(MockStock)
	f := newFixture(t, stock, true)

	stock.On("ReserveStock", mock.Anything, domain.ProductPack, memory.DemoPackID, 1).
		Return(domain.ReservationToken{}, errors.New("connection reset")).Once()

	_, err := f.svc.OpenPack(context.Background(), memory.DemoUserID, memory.DemoPackID, "req-1")
	assert.ErrorIs(t, err, domain.ErrInternal)
	stock.AssertNotCalled(t, "ReleaseStock", mock.Anything, mock.Anything)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "conflict", outcomeOf(domain.ErrOutOfStock))
	assert.Equal(t, "rejected", outcomeOf(domain.ErrPackNotFound))
	assert.Equal(t, "rejected", outcomeOf(domain.ErrInvalidPackSpec))
	assert.Equal(t, "failed", outcomeOf(domain.Internal("commit", errors.New("boom"))))
	assert.Equal(t, "failed", outcomeOf(context.Canceled))
}
