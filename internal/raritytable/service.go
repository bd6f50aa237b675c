package raritytable

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/logger"
)

// SetRepository is the catalog access needed to activate card sets.
type SetRepository interface {
	GetCardSet(ctx context.Context, setID int64) (*domain.CardSet, error)
	ListCardsBySet(ctx context.Context, setID int64) ([]domain.Card, error)
	ListPacksBySet(ctx context.Context, setID int64) ([]domain.PackSpec, error)
	UpdateCardSetStatus(ctx context.Context, setID int64, status domain.SetStatus) error
}

// Service activates card sets and serves their immutable rarity tables.
type Service interface {
	ActivateSet(ctx context.Context, setID int64) (*Table, error)
	Table(ctx context.Context, setID int64) (*Table, error)
	Invalidate(setID int64)
}

type service struct {
	repo  SetRepository
	cache *lru.Cache[int64, *Table]
}

// NewService creates a rarity table service caching up to cacheSize tables.
func NewService(repo SetRepository, cacheSize int) (Service, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[int64, *Table](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create rarity table cache: %w", err)
	}
	return &service{repo: repo, cache: cache}, nil
}

// ActivateSet builds the set's table, checks every pack of the set against it
// and only then marks the set ACTIVE. Activating an active set is a no-op.
func (s *service) ActivateSet(ctx context.Context, setID int64) (*Table, error) {
	log := logger.FromContext(ctx)

	set, err := s.loadSet(ctx, setID)
	if err != nil {
		return nil, err
	}

	switch set.Status {
	case domain.SetStatusActive:
		log.Info(LogMsgSetAlreadyActive, LogFieldSetID, setID)
		return s.tableFor(ctx, set)
	case domain.SetStatusRetired:
		log.Warn(LogMsgActivationRejected, LogFieldSetID, setID, "status", set.Status)
		return nil, fmt.Errorf("%w: set %d is retired", domain.ErrValidation, setID)
	}

	table, err := s.build(ctx, set)
	if err != nil {
		log.Warn(LogMsgActivationRejected, LogFieldSetID, setID, LogFieldError, err)
		return nil, err
	}

	packs, err := s.repo.ListPacksBySet(ctx, setID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToLoadPacks, err)
	}
	for _, pack := range packs {
		if err := table.CheckPack(pack); err != nil {
			log.Warn(LogMsgActivationRejected, LogFieldSetID, setID, LogFieldPackID, pack.ID, LogFieldError, err)
			return nil, err
		}
	}

	if err := s.repo.UpdateCardSetStatus(ctx, setID, domain.SetStatusActive); err != nil {
		return nil, domain.Internal(ErrContextFailedToActivate, err)
	}
	s.cache.Add(setID, table)

	log.Info(LogMsgSetActivated, LogFieldSetID, setID, LogFieldPacks, len(packs))
	return table, nil
}

// Table returns the table of an ACTIVE set, building it on a cache miss.
func (s *service) Table(ctx context.Context, setID int64) (*Table, error) {
	if table, ok := s.cache.Get(setID); ok {
		return table, nil
	}

	set, err := s.loadSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if set.Status != domain.SetStatusActive {
		return nil, fmt.Errorf("set %d is %s: %w", setID, set.Status, domain.ErrSetNotActive)
	}
	return s.tableFor(ctx, set)
}

// Invalidate drops a cached table so the next lookup rebuilds it.
func (s *service) Invalidate(setID int64) {
	s.cache.Remove(setID)
}

func (s *service) loadSet(ctx context.Context, setID int64) (*domain.CardSet, error) {
	set, err := s.repo.GetCardSet(ctx, setID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToLoadSet, err)
	}
	if set == nil {
		return nil, fmt.Errorf("set %d: %w", setID, domain.ErrSetNotFound)
	}
	return set, nil
}

func (s *service) tableFor(ctx context.Context, set *domain.CardSet) (*Table, error) {
	if table, ok := s.cache.Get(set.ID); ok {
		return table, nil
	}
	table, err := s.build(ctx, set)
	if err != nil {
		return nil, err
	}
	s.cache.Add(set.ID, table)
	return table, nil
}

func (s *service) build(ctx context.Context, set *domain.CardSet) (*Table, error) {
	cards, err := s.repo.ListCardsBySet(ctx, set.ID)
	if err != nil {
		return nil, domain.Internal(ErrContextFailedToLoadCards, err)
	}
	table, err := Build(*set, cards)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToBuild, err)
	}

	log := logger.FromContext(ctx)
	log.Debug(LogMsgTableBuilt, LogFieldSetID, set.ID, LogFieldCards, table.FullPool().Len())
	if table.RarePool().Uniform() {
		log.Debug(LogMsgUniformFallback, LogFieldSetID, set.ID, LogFieldPool, "rare")
	}
	if table.HoloPool().Uniform() {
		log.Debug(LogMsgUniformFallback, LogFieldSetID, set.ID, LogFieldPool, "holo")
	}
	return table, nil
}
