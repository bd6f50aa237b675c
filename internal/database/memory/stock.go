package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

func (s *Store) ReserveStock(_ context.Context, kind domain.ProductKind, productID int64, qty int) (domain.ReservationToken, error) {
	if err := s.failure(OpReserveStock); err != nil {
		return domain.ReservationToken{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stockKey{kind: kind, productID: productID}
	if available := s.stock[key]; available < qty {
		return domain.ReservationToken{}, fmt.Errorf("%s %d: %d available, %d requested: %w",
			kind, productID, available, qty, domain.ErrOutOfStock)
	}
	s.stock[key] -= qty

	token := domain.ReservationToken{
		ID:        uuid.NewString(),
		Kind:      kind,
		ProductID: productID,
		Quantity:  qty,
	}
	s.reservations[token.ID] = token
	return token, nil
}

// ReleaseStock returns reserved units. Releasing an unknown or already released token is a no-op.
func (s *Store) ReleaseStock(_ context.Context, token domain.ReservationToken) error {
	if err := s.failure(OpReleaseStock); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	held, ok := s.reservations[token.ID]
	if !ok {
		return nil
	}
	delete(s.reservations, token.ID)
	s.stock[stockKey{kind: held.Kind, productID: held.ProductID}] += held.Quantity
	return nil
}
