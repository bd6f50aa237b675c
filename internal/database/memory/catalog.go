package memory

import (
	"context"
	"sort"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

func (s *Store) GetUser(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) GetPack(_ context.Context, packID int64) (*domain.PackSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packs[packID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) GetBox(_ context.Context, boxID int64) (*domain.BoxSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boxes[boxID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) GetCardSet(_ context.Context, setID int64) (*domain.CardSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[setID]
	if !ok {
		return nil, nil
	}
	weights := make(map[domain.CardRarity]float64, len(set.RarityWeights))
	for r, w := range set.RarityWeights {
		weights[r] = w
	}
	set.RarityWeights = weights
	return &set, nil
}

func (s *Store) ListCardsBySet(_ context.Context, setID int64) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cards []domain.Card
	for _, c := range s.cards {
		if c.SetID == setID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func (s *Store) ListPacksBySet(_ context.Context, setID int64) ([]domain.PackSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var packs []domain.PackSpec
	for _, p := range s.packs {
		if p.SetID == setID {
			packs = append(packs, p)
		}
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].ID < packs[j].ID })
	return packs, nil
}

func (s *Store) UpdateCardSetStatus(_ context.Context, setID int64, status domain.SetStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[setID]
	if !ok {
		return domain.ErrSetNotFound
	}
	set.Status = status
	s.sets[setID] = set
	return nil
}

// CurrentValues returns the current price of each known card. Unknown cards are omitted.
func (s *Store) CurrentValues(_ context.Context, cardIDs []int64) (map[int64]int64, error) {
	if err := s.failure(OpCurrentValues); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(map[int64]int64, len(cardIDs))
	for _, id := range cardIDs {
		if v, ok := s.prices[id]; ok {
			values[id] = v
		}
	}
	return values, nil
}
