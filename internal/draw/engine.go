package draw

import (
	"fmt"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
)

// Engine draws the cards of a single pack.
// It holds no mutable state; each Draw obtains its own Source from the factory.
type Engine struct {
	newSource SourceFactory
}

// NewEngine creates an Engine. A nil factory uses NewSource.
func NewEngine(factory SourceFactory) *Engine {
	if factory == nil {
		factory = NewSource
	}
	return &Engine{newSource: factory}
}

// Draw produces one pack's cards in two phases: guaranteed slots from the
// restricted pools, then unconstrained fill slots from the full table.
// The combined slots are shuffled so guarantees cannot be spotted by position.
// Values are left at zero; price snapshots are taken by the caller.
func (e *Engine) Draw(table *raritytable.Table, spec domain.PackSpec) (domain.DrawResult, error) {
	if err := table.CheckPack(spec); err != nil {
		return domain.DrawResult{}, fmt.Errorf("%s: %w", ErrContextPackRejected, err)
	}
	if spec.CardsPerPack == 0 {
		return domain.DrawResult{Cards: []domain.DrawnCard{}}, nil
	}

	rng, err := e.newSource()
	if err != nil {
		return domain.DrawResult{}, domain.Internal(ErrContextFailedToSeed, err)
	}

	cards := make([]domain.DrawnCard, 0, spec.CardsPerPack)
	cards = appendGuaranteed(cards, rng, table.RarePool(), spec.GuaranteedRares, table.NonRepeating(), domain.SlotGuaranteedRare)
	cards = appendGuaranteed(cards, rng, table.HoloPool(), spec.GuaranteedHolos, table.NonRepeating(), domain.SlotGuaranteedHolo)

	full := table.FullPool()
	for i := 0; i < spec.FillSlots(); i++ {
		cards = append(cards, drawnCard(full.Select(rng.Float64()), domain.SlotFill))
	}

	shuffle(rng, cards)
	return domain.DrawResult{Cards: cards}, nil
}

// appendGuaranteed samples n cards from pool. Without replacement, each pick
// removes the chosen card and the remaining weights are renormalised.
func appendGuaranteed(cards []domain.DrawnCard, rng Source, pool *raritytable.Pool, n int, distinct bool, slot domain.SlotKind) []domain.DrawnCard {
	for i := 0; i < n; i++ {
		ref := pool.Select(rng.Float64())
		cards = append(cards, drawnCard(ref, slot))
		if distinct {
			pool = pool.Without(ref.ID)
		}
	}
	return cards
}

// shuffle is a Fisher-Yates shuffle driven by the draw's own source.
func shuffle(rng Source, cards []domain.DrawnCard) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

func drawnCard(ref raritytable.CardRef, slot domain.SlotKind) domain.DrawnCard {
	return domain.DrawnCard{
		CardID: ref.ID,
		Name:   ref.Name,
		Rarity: ref.Rarity,
		IsHolo: ref.IsHolo,
		Slot:   slot,
	}
}
