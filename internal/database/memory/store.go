// Package memory is an in-process implementation of the catalog, stock,
// pricing, ledger and event log repositories. It backs local runs and service tests.
package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/PackOpener_Go/internal/concurrency"
	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/eventlog"
)

// Operation names accepted by FailOn.
const (
	OpLockInventory     = "lock_inventory"
	OpUpsertItem        = "upsert_item"
	OpIncrementTotals   = "increment_totals"
	OpInsertPackResult  = "insert_pack_result"
	OpInsertBoxResult   = "insert_box_result"
	OpInsertTransaction = "insert_transaction"
	OpInsertDedup       = "insert_dedup"
	OpCommit            = "commit"
	OpReserveStock      = "reserve_stock"
	OpReleaseStock      = "release_stock"
	OpCurrentValues     = "current_values"
	OpLogEvent          = "log_event"
)

type stockKey struct {
	kind      domain.ProductKind
	productID int64
}

type itemKey struct {
	cardID    int64
	condition domain.CardCondition
}

type dedupKey struct {
	userID    string
	requestID string
}

type inventoryState struct {
	totalCards int
	totalValue int64
	items      map[itemKey]domain.UserInventoryItem
	updatedAt  time.Time
}

type packResultRow struct {
	result      domain.PackOpeningResult
	boxResultID *uuid.UUID
}

// Store keeps every table in maps guarded by one mutex. Ledger transactions
// buffer their writes and apply them atomically on Commit.
type Store struct {
	mu sync.RWMutex

	users  map[string]domain.User
	sets   map[int64]domain.CardSet
	cards  map[int64]domain.Card
	packs  map[int64]domain.PackSpec
	boxes  map[int64]domain.BoxSpec
	prices map[int64]int64

	stock        map[stockKey]int
	reservations map[string]domain.ReservationToken

	inventories  map[string]*inventoryState
	packResults  map[uuid.UUID]packResultRow
	boxResults   map[uuid.UUID]domain.BoxOpeningResult
	transactions []domain.Transaction
	committed    map[dedupKey]domain.CommittedOpening

	events   []eventlog.Entry
	eventSeq int64

	// rowLocks stands in for SELECT ... FOR UPDATE on the inventory row.
	rowLocks *concurrency.LockManager

	failures map[string]error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		sets:         make(map[int64]domain.CardSet),
		cards:        make(map[int64]domain.Card),
		packs:        make(map[int64]domain.PackSpec),
		boxes:        make(map[int64]domain.BoxSpec),
		prices:       make(map[int64]int64),
		stock:        make(map[stockKey]int),
		reservations: make(map[string]domain.ReservationToken),
		inventories:  make(map[string]*inventoryState),
		packResults:  make(map[uuid.UUID]packResultRow),
		boxResults:   make(map[uuid.UUID]domain.BoxOpeningResult),
		committed:    make(map[dedupKey]domain.CommittedOpening),
		rowLocks:     concurrency.NewLockManager(),
		failures:     make(map[string]error),
	}
}

// ErrInjected is the default error returned by operations registered with FailOn.
var ErrInjected = errors.New("injected failure")

// FailOn makes the named operation return err (ErrInjected when nil) until cleared.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	s.failures[op] = err
}

// ClearFailures removes every injected failure.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

func (s *Store) failure(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures[op]
}

// AddUser registers a user.
func (s *Store) AddUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
}

// AddCardSet registers a card set and copies its weights.
func (s *Store) AddCardSet(set domain.CardSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	weights := make(map[domain.CardRarity]float64, len(set.RarityWeights))
	for r, w := range set.RarityWeights {
		weights[r] = w
	}
	set.RarityWeights = weights
	s.sets[set.ID] = set
}

// AddCard registers a card with its current price.
func (s *Store) AddCard(card domain.Card, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card
	s.prices[card.ID] = value
}

// SetPrice changes the current catalog value of a card.
func (s *Store) SetPrice(cardID, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[cardID] = value
}

// AddPack registers a pack.
func (s *Store) AddPack(pack domain.PackSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packs[pack.ID] = pack
}

// AddBox registers a box.
func (s *Store) AddBox(box domain.BoxSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes[box.ID] = box
}

// SetStock sets the available units of a product.
func (s *Store) SetStock(kind domain.ProductKind, productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey{kind: kind, productID: productID}] = qty
}

// StockLevel returns the available units of a product.
func (s *Store) StockLevel(kind domain.ProductKind, productID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock[stockKey{kind: kind, productID: productID}]
}

// CorruptTotals overwrites a user's cached totals without touching items.
func (s *Store) CorruptTotals(userID string, cards int, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.inventoryLocked(userID)
	inv.totalCards = cards
	inv.totalValue = value
}

// PackResultCount returns the number of stored pack results, including those inside boxes.
func (s *Store) PackResultCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.packResults)
}

// BoxResultCount returns the number of stored box results.
func (s *Store) BoxResultCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boxResults)
}

func (s *Store) inventoryLocked(userID string) *inventoryState {
	inv, ok := s.inventories[userID]
	if !ok {
		inv = &inventoryState{items: make(map[itemKey]domain.UserInventoryItem)}
		s.inventories[userID] = inv
	}
	return inv
}
