package repository

import (
	"context"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// Stock reserves sellable units of packs and boxes.
// ReserveStock returns an error wrapping domain.ErrOutOfStock when the quantity is not available.
type Stock interface {
	ReserveStock(ctx context.Context, kind domain.ProductKind, productID int64, qty int) (domain.ReservationToken, error)
	ReleaseStock(ctx context.Context, token domain.ReservationToken) error
}
