package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/repository"
)

// LedgerRepository implements repository.Ledger for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// BeginLedgerTx starts a read-committed transaction; row locks serialize writers per user.
func (r *LedgerRepository) BeginLedgerTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	return &ledgerTx{tx: tx}, nil
}

// GetCommittedOpening returns the dedup record for a request or nil
func (r *LedgerRepository) GetCommittedOpening(ctx context.Context, userID, requestID string) (*domain.CommittedOpening, error) {
	return getCommittedOpening(ctx, r.db, userID, requestID, false)
}

// GetInventory returns the user's inventory with items, or nil when the user never opened anything
func (r *LedgerRepository) GetInventory(ctx context.Context, userID string) (*domain.UserInventory, error) {
	id, err := parseUserUUID(userID)
	if err != nil {
		return nil, nil
	}

	inv := &domain.UserInventory{UserID: userID}
	err = r.db.QueryRow(ctx,
		`SELECT total_cards, total_value, updated_at FROM user_inventories WHERE user_id = $1`, id,
	).Scan(&inv.TotalCards, &inv.TotalValue, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetInventory, err)
	}

	inv.Items, err = listInventoryItems(ctx, r.db, userID, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListTransactions returns the user's ledger rows, oldest first, with their items
func (r *LedgerRepository) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	id, err := parseUserUUID(userID)
	if err != nil {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT transaction_id, transaction_type, status, request_id, reference_kind,
			reference_id, total_cards, total_value, created_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at, transaction_id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransactions, err)
	}

	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		var (
			t                   domain.Transaction
			typ, status, refKnd string
		)
		err := row.Scan(&t.ID, &typ, &status, &t.RequestID, &refKnd,
			&t.ReferenceID, &t.TotalCards, &t.TotalValue, &t.CreatedAt)
		t.UserID = userID
		t.Type = domain.TransactionType(typ)
		t.Status = domain.TransactionStatus(status)
		t.ReferenceKind = domain.ProductKind(refKnd)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransactions, err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	ids := make([]uuid.UUID, len(txns))
	index := make(map[uuid.UUID]int, len(txns))
	for i, t := range txns {
		ids[i] = t.ID
		index[t.ID] = i
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT transaction_id, card_id, quantity, unit_value
		FROM transaction_items WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, card_id, unit_value`, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToListTransactions, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			txnID uuid.UUID
			item  domain.TransactionItem
		)
		if err := itemRows.Scan(&txnID, &item.CardID, &item.Quantity, &item.UnitValue); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanRow, err)
		}
		if i, ok := index[txnID]; ok {
			txns[i].Items = append(txns[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToIterateRows, err)
	}
	return txns, nil
}

// ledgerTx is one opening's worth of writes
type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return mapError(ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}

// Rollback returns pgx.ErrTxClosed unwrapped; its message matches domain.ErrMsgTxClosed.
func (t *ledgerTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// LockInventory creates the inventory row on first use and takes FOR UPDATE on it.
// A user missing from users yields domain.ErrUserNotFound.
func (t *ledgerTx) LockInventory(ctx context.Context, userID string) (*domain.UserInventory, error) {
	id, err := parseUserUUID(userID)
	if err != nil {
		return nil, err
	}

	if _, err := t.tx.Exec(ctx,
		`INSERT INTO user_inventories (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, id); err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, mapError(ErrMsgFailedToLockInventory, err)
	}

	inv := &domain.UserInventory{UserID: userID}
	err = t.tx.QueryRow(ctx, `
		SELECT total_cards, total_value, updated_at
		FROM user_inventories WHERE user_id = $1 FOR UPDATE`, id,
	).Scan(&inv.TotalCards, &inv.TotalValue, &inv.UpdatedAt)
	if err != nil {
		return nil, mapError(ErrMsgFailedToLockInventory, err)
	}
	return inv, nil
}

func (t *ledgerTx) GetCommittedOpening(ctx context.Context, userID, requestID string) (*domain.CommittedOpening, error) {
	return getCommittedOpening(ctx, t.tx, userID, requestID, true)
}

func (t *ledgerTx) UpsertInventoryItem(ctx context.Context, userID string, delta domain.InventoryDelta) error {
	id, err := parseUserUUID(userID)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO user_inventory_items
			(user_id, card_id, condition, quantity, value_total, last_snapshot_value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, card_id, condition) DO UPDATE SET
			quantity = user_inventory_items.quantity + EXCLUDED.quantity,
			value_total = user_inventory_items.value_total + EXCLUDED.value_total,
			last_snapshot_value = EXCLUDED.last_snapshot_value,
			updated_at = NOW()`,
		id, delta.CardID, string(delta.Condition), delta.Quantity, delta.Value, delta.LastValue)
	if err != nil {
		return mapError(ErrMsgFailedToUpsertItem, err)
	}
	return nil
}

func (t *ledgerTx) IncrementInventoryTotals(ctx context.Context, userID string, cards int, value int64) error {
	id, err := parseUserUUID(userID)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		UPDATE user_inventories
		SET total_cards = total_cards + $2, total_value = total_value + $3, updated_at = NOW()
		WHERE user_id = $1`, id, cards, value)
	if err != nil {
		return mapError(ErrMsgFailedToUpdateTotals, err)
	}
	return nil
}

func (t *ledgerTx) ListInventoryItems(ctx context.Context, userID string) ([]domain.UserInventoryItem, error) {
	id, err := parseUserUUID(userID)
	if err != nil {
		return nil, err
	}
	return listInventoryItems(ctx, t.tx, userID, id)
}

func (t *ledgerTx) SetInventoryTotals(ctx context.Context, userID string, cards int, value int64) error {
	id, err := parseUserUUID(userID)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		UPDATE user_inventories SET total_cards = $2, total_value = $3, updated_at = NOW()
		WHERE user_id = $1`, id, cards, value)
	if err != nil {
		return mapError(ErrMsgFailedToUpdateTotals, err)
	}
	return nil
}

func (t *ledgerTx) InsertPackResult(ctx context.Context, result *domain.PackOpeningResult, boxResultID *uuid.UUID) error {
	id, err := parseUserUUID(result.UserID)
	if err != nil {
		return err
	}
	cards, err := json.Marshal(result.Cards)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeResult, err)
	}
	breakdown, err := json.Marshal(result.RarityBreakdown)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeResult, err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO pack_opening_results
			(id, user_id, pack_id, box_result_id, cards, total_value, rarity_breakdown, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID, id, result.PackID, boxResultID, cards, result.TotalValue, breakdown, result.OpenedAt)
	if err != nil {
		return mapError(ErrMsgFailedToInsertPackResult, err)
	}
	return nil
}

func (t *ledgerTx) InsertBoxResult(ctx context.Context, result *domain.BoxOpeningResult) error {
	id, err := parseUserUUID(result.UserID)
	if err != nil {
		return err
	}
	breakdown, err := json.Marshal(result.RarityBreakdown)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeResult, err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO box_opening_results
			(id, user_id, box_id, total_cards_obtained, total_value, rarity_breakdown, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.ID, id, result.BoxID, result.TotalCardsObtained, result.TotalValue, breakdown, result.OpenedAt)
	if err != nil {
		return mapError(ErrMsgFailedToInsertBoxResult, err)
	}
	return nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, txn *domain.Transaction) error {
	id, err := parseUserUUID(txn.UserID)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO transactions
			(transaction_id, user_id, transaction_type, status, request_id, reference_kind,
			 reference_id, total_cards, total_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		txn.ID, id, string(txn.Type), string(txn.Status), txn.RequestID, string(txn.ReferenceKind),
		txn.ReferenceID, txn.TotalCards, txn.TotalValue, txn.CreatedAt)
	for _, item := range txn.Items {
		batch.Queue(`
			INSERT INTO transaction_items (transaction_id, card_id, quantity, unit_value)
			VALUES ($1, $2, $3, $4)`,
			txn.ID, item.CardID, item.Quantity, item.UnitValue)
	}

	results := t.tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			if i == 0 {
				return mapError(ErrMsgFailedToInsertTransaction, err)
			}
			return mapError(ErrMsgFailedToInsertItems, err)
		}
	}
	if err := results.Close(); err != nil {
		return mapError(ErrMsgFailedToInsertTransaction, err)
	}
	return nil
}

// InsertCommittedOpening stores the dedup record with the full result so replays are byte-identical.
// A unique violation means a concurrent writer committed the same request first.
func (t *ledgerTx) InsertCommittedOpening(ctx context.Context, record *domain.CommittedOpening) error {
	id, err := parseUserUUID(record.UserID)
	if err != nil {
		return err
	}

	var payload any = record.Pack
	if record.Kind == domain.ProductBox {
		payload = record.Box
	}
	result, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeResult, err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO committed_openings
			(user_id, request_id, kind, target_id, transaction_id, result, committed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, record.RequestID, string(record.Kind), record.TargetID, record.TransactionID, result, record.CommittedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: request %s already committed", domain.ErrSerialization, record.RequestID)
	}
	if err != nil {
		return mapError(ErrMsgFailedToInsertDedup, err)
	}
	return nil
}

func getCommittedOpening(ctx context.Context, q querier, userID, requestID string, forUpdate bool) (*domain.CommittedOpening, error) {
	id, err := parseUserUUID(userID)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT kind, target_id, transaction_id, result, committed_at
		FROM committed_openings WHERE user_id = $1 AND request_id = $2`
	if forUpdate {
		query += ` FOR SHARE`
	}

	var (
		record      = &domain.CommittedOpening{UserID: userID, RequestID: requestID}
		kind        string
		result      []byte
		committedAt time.Time
	)
	err = q.QueryRow(ctx, query, id, requestID).Scan(&kind, &record.TargetID, &record.TransactionID, &result, &committedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(ErrMsgFailedToGetDedup, err)
	}

	record.Kind = domain.ProductKind(kind)
	record.CommittedAt = committedAt.UTC()
	switch record.Kind {
	case domain.ProductBox:
		record.Box = &domain.BoxOpeningResult{}
		err = json.Unmarshal(result, record.Box)
	default:
		record.Pack = &domain.PackOpeningResult{}
		err = json.Unmarshal(result, record.Pack)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeResult, err)
	}
	return record, nil
}

func listInventoryItems(ctx context.Context, q querier, userID string, id uuid.UUID) ([]domain.UserInventoryItem, error) {
	rows, err := q.Query(ctx, `
		SELECT card_id, condition, quantity, value_total, last_snapshot_value, updated_at
		FROM user_inventory_items WHERE user_id = $1
		ORDER BY card_id, condition`, id)
	if err != nil {
		return nil, mapError(ErrMsgFailedToListItems, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserInventoryItem, error) {
		item := domain.UserInventoryItem{UserID: userID}
		var condition string
		err := row.Scan(&item.CardID, &condition, &item.Quantity, &item.ValueTotal, &item.LastSnapshotValue, &item.UpdatedAt)
		item.Condition = domain.CardCondition(condition)
		return item, err
	})
	if err != nil {
		return nil, mapError(ErrMsgFailedToListItems, err)
	}
	if items == nil {
		items = []domain.UserInventoryItem{}
	}
	return items, nil
}
