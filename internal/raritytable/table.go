package raritytable

import (
	"fmt"
	"math"
	"sort"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// Table is the weighted distribution over rarities for one card set.
// It is built once when the set is activated and is read-only thereafter,
// so a single Table may be shared by concurrent draws.
type Table struct {
	setID        int64
	nonRepeating bool
	weights      map[domain.CardRarity]float64
	totalWeight  float64
	eligible     map[domain.CardRarity][]CardRef

	full *Pool // every card of a positively weighted rarity
	rare *Pool // cards of rarity RARE or higher
	holo *Pool // holo cards of any rarity
}

// Build flattens a card set and its cards into a Table.
// Cards are ordered by ID inside each rarity so that table construction is deterministic.
func Build(set domain.CardSet, cards []domain.Card) (*Table, error) {
	t := &Table{
		setID:        set.ID,
		nonRepeating: set.NonRepeating,
		weights:      make(map[domain.CardRarity]float64, len(set.RarityWeights)),
		eligible:     make(map[domain.CardRarity][]CardRef),
	}

	for rarity, w := range set.RarityWeights {
		if !rarity.IsValid() {
			return nil, fmt.Errorf("%w: set %d has weight for unknown rarity %q", domain.ErrInvalidRarityTbl, set.ID, rarity)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: set %d has invalid weight %v for %s", domain.ErrInvalidRarityTbl, set.ID, w, rarity)
		}
		t.weights[rarity] = w
		t.totalWeight += w
	}
	if t.totalWeight <= 0 {
		return nil, fmt.Errorf("%w: set %d has total weight %v", domain.ErrInvalidRarityTbl, set.ID, t.totalWeight)
	}

	for _, c := range cards {
		if c.SetID != set.ID {
			continue
		}
		if !c.Rarity.IsValid() {
			return nil, fmt.Errorf("%w: card %d has unknown rarity %q", domain.ErrInvalidRarityTbl, c.ID, c.Rarity)
		}
		t.eligible[c.Rarity] = append(t.eligible[c.Rarity], CardRef{
			ID:     c.ID,
			Name:   c.Name,
			Rarity: c.Rarity,
			IsHolo: c.IsHolo,
		})
	}
	for rarity := range t.eligible {
		refs := t.eligible[rarity]
		sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	}

	for rarity, w := range t.weights {
		if w > 0 && len(t.eligible[rarity]) == 0 {
			return nil, fmt.Errorf("%w: set %d weights %s at %v but has no %s cards",
				domain.ErrInvalidRarityTbl, set.ID, rarity, w, rarity)
		}
	}

	t.full = t.buildPool(func(CardRef) bool { return true }, true)
	t.rare = t.buildPool(func(c CardRef) bool { return c.Rarity.AtLeast(domain.RarityRare) }, false)
	t.holo = t.buildPool(func(c CardRef) bool { return c.IsHolo }, false)

	return t, nil
}

// buildPool flattens the eligible cards accepted by keep, walking rarities in ladder order.
// Each card carries weight(rarity)/len(eligible(rarity)), so picking a card from the pool
// picks its rarity with probability proportional to the rarity weight.
// When positiveOnly is set, cards of zero-weight rarities are left out entirely.
func (t *Table) buildPool(keep func(CardRef) bool, positiveOnly bool) *Pool {
	var cards []CardRef
	var weights []float64

	for _, rarity := range domain.AllRarities {
		refs := t.eligible[rarity]
		w := t.weights[rarity]
		if len(refs) == 0 || (positiveOnly && w <= 0) {
			continue
		}
		perCard := w / float64(len(refs))
		for _, ref := range refs {
			if !keep(ref) {
				continue
			}
			cards = append(cards, ref)
			weights = append(weights, perCard)
		}
	}

	return newPool(cards, weights)
}

// SetID returns the owning card set.
func (t *Table) SetID() int64 {
	return t.setID
}

// NonRepeating reports whether guarantee pools sample without replacement.
func (t *Table) NonRepeating() bool {
	return t.nonRepeating
}

// WeightOf returns the configured weight of a rarity (0 if absent).
func (t *Table) WeightOf(rarity domain.CardRarity) float64 {
	return t.weights[rarity]
}

// TotalWeight returns the sum of all rarity weights.
func (t *Table) TotalWeight() float64 {
	return t.totalWeight
}

// Probability returns weight/totalWeight for a rarity.
func (t *Table) Probability(rarity domain.CardRarity) float64 {
	return t.weights[rarity] / t.totalWeight
}

// EligibleCards returns the cards of a rarity ordered by card ID.
func (t *Table) EligibleCards(rarity domain.CardRarity) []CardRef {
	refs := t.eligible[rarity]
	out := make([]CardRef, len(refs))
	copy(out, refs)
	return out
}

// FullPool is the pool used for unconstrained slots.
func (t *Table) FullPool() *Pool {
	return t.full
}

// RarePool is the pool used for guaranteed rare slots.
func (t *Table) RarePool() *Pool {
	return t.rare
}

// HoloPool is the pool used for guaranteed holo slots.
func (t *Table) HoloPool() *Pool {
	return t.holo
}

// CheckPack verifies that every guarantee of the pack can be satisfied by this table.
func (t *Table) CheckPack(spec domain.PackSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if spec.SetID != t.setID {
		return fmt.Errorf("%w: pack %d belongs to set %d, table is for set %d", domain.ErrInvalidPackSpec, spec.ID, spec.SetID, t.setID)
	}
	if err := checkGuaranteePool("rare", t.rare, spec.GuaranteedRares, t.nonRepeating); err != nil {
		return fmt.Errorf("pack %d: %w", spec.ID, err)
	}
	if err := checkGuaranteePool("holo", t.holo, spec.GuaranteedHolos, t.nonRepeating); err != nil {
		return fmt.Errorf("pack %d: %w", spec.ID, err)
	}
	return nil
}

func checkGuaranteePool(name string, pool *Pool, want int, nonRepeating bool) error {
	if want == 0 {
		return nil
	}
	if pool.Len() == 0 {
		return fmt.Errorf("%w: %s pool has no cards for %d guaranteed slots", domain.ErrEmptyGuaranteePl, name, want)
	}
	if nonRepeating && pool.Len() < want {
		return fmt.Errorf("%w: %s pool has %d distinct cards, %d requested without repeats",
			domain.ErrInsufficientPool, name, pool.Len(), want)
	}
	return nil
}
