package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// StockRepository implements repository.Stock for PostgreSQL.
// Reservations are rows in stock_reservations; a row with released_at set has been handed back.
type StockRepository struct {
	db *pgxpool.Pool
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(db *pgxpool.Pool) *StockRepository {
	return &StockRepository{db: db}
}

// ReserveStock decrements available stock and records the reservation
func (r *StockRepository) ReserveStock(ctx context.Context, kind domain.ProductKind, productID int64, qty int) (domain.ReservationToken, error) {
	if qty <= 0 {
		return domain.ReservationToken{}, fmt.Errorf("%w: %s (got %d)", domain.ErrValidation, ErrMsgInvalidReserveQuantity, qty)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.ReservationToken{}, fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		UPDATE product_stock SET quantity = quantity - $3
		WHERE kind = $1 AND product_id = $2 AND quantity >= $3`,
		string(kind), productID, qty)
	if err != nil {
		return domain.ReservationToken{}, mapError(ErrMsgFailedToReserveStock, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ReservationToken{}, fmt.Errorf("%w: %s %d", domain.ErrOutOfStock, kind, productID)
	}

	token := domain.ReservationToken{
		ID:        uuid.NewString(),
		Kind:      kind,
		ProductID: productID,
		Quantity:  qty,
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_reservations (reservation_id, kind, product_id, quantity)
		VALUES ($1, $2, $3, $4)`,
		token.ID, string(kind), productID, qty); err != nil {
		return domain.ReservationToken{}, mapError(ErrMsgFailedToReserveStock, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ReservationToken{}, mapError(ErrMsgFailedToCommitTransaction, err)
	}
	return token, nil
}

// ReleaseStock returns a reservation to stock. Releasing twice is a no-op.
func (r *StockRepository) ReleaseStock(ctx context.Context, token domain.ReservationToken) error {
	id, err := uuid.Parse(token.ID)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrValidation, ErrMsgInvalidReservationID, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToBeginTransaction, err)
	}
	defer SafeRollback(ctx, tx)

	var (
		kind      string
		productID int64
		qty       int
	)
	err = tx.QueryRow(ctx, `
		UPDATE stock_reservations SET released_at = NOW()
		WHERE reservation_id = $1 AND released_at IS NULL
		RETURNING kind, product_id, quantity`, id,
	).Scan(&kind, &productID, &qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return mapError(ErrMsgFailedToReleaseStock, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE product_stock SET quantity = quantity + $3
		WHERE kind = $1 AND product_id = $2`,
		kind, productID, qty); err != nil {
		return mapError(ErrMsgFailedToReleaseStock, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(ErrMsgFailedToCommitTransaction, err)
	}
	return nil
}
