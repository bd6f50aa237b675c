package repository

import (
	"context"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// Catalog defines the read access the opening engine needs to users, products and card sets.
// Lookups return (nil, nil) when the record does not exist.
type Catalog interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetPack(ctx context.Context, packID int64) (*domain.PackSpec, error)
	GetBox(ctx context.Context, boxID int64) (*domain.BoxSpec, error)
	GetCardSet(ctx context.Context, setID int64) (*domain.CardSet, error)
	ListCardsBySet(ctx context.Context, setID int64) ([]domain.Card, error)
	ListPacksBySet(ctx context.Context, setID int64) ([]domain.PackSpec, error)
	UpdateCardSetStatus(ctx context.Context, setID int64, status domain.SetStatus) error
}

// Pricer returns the current catalog value of cards. Values are read once per draw and snapshotted.
type Pricer interface {
	CurrentValues(ctx context.Context, cardIDs []int64) (map[int64]int64, error)
}
