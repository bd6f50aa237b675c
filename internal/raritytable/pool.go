package raritytable

import (
	"sort"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// CardRef is the immutable view of a card held by a table.
type CardRef struct {
	ID     int64
	Name   string
	Rarity domain.CardRarity
	IsHolo bool
}

// PoolEntry is one card in a flattened pool.
type PoolEntry struct {
	Card        CardRef
	Weight      float64
	CumulWeight float64 // cumulative weight up to and including this entry
}

// Pool is a set of cards whose weights have been flattened into cumulative form.
type Pool struct {
	entries     []PoolEntry
	totalWeight float64
	uniform     bool
}

// newPool builds a pool from cards and their per-card weights.
// A pool whose weights are all zero falls back to uniform selection.
func newPool(cards []CardRef, weights []float64) *Pool {
	p := &Pool{entries: make([]PoolEntry, 0, len(cards))}

	for i, card := range cards {
		p.totalWeight += weights[i]
		p.entries = append(p.entries, PoolEntry{
			Card:        card,
			Weight:      weights[i],
			CumulWeight: p.totalWeight,
		})
	}

	if len(p.entries) > 0 && p.totalWeight <= 0 {
		p.uniform = true
		p.totalWeight = 0
		for i := range p.entries {
			p.totalWeight++
			p.entries[i].Weight = 1
			p.entries[i].CumulWeight = p.totalWeight
		}
	}

	return p
}

// Len returns the number of distinct cards in the pool.
func (p *Pool) Len() int {
	return len(p.entries)
}

// TotalWeight returns the sum of the entry weights.
func (p *Pool) TotalWeight() float64 {
	return p.totalWeight
}

// Uniform reports whether the pool fell back to equal weights.
func (p *Pool) Uniform() bool {
	return p.uniform
}

// Entries returns a copy of the pool entries in cumulative order.
func (p *Pool) Entries() []PoolEntry {
	out := make([]PoolEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Select returns the card chosen by a uniform roll in [0, 1).
// It binary-searches the first entry whose cumulative weight exceeds roll*TotalWeight,
// so zero-weight entries are never selected.
func (p *Pool) Select(roll float64) CardRef {
	target := roll * p.totalWeight
	idx := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].CumulWeight > target
	})
	if idx >= len(p.entries) {
		// roll*total can round up to total
		idx = len(p.entries) - 1
		for idx > 0 && p.entries[idx].Weight == 0 {
			idx--
		}
	}
	return p.entries[idx].Card
}

// Without returns a new pool lacking the given card, keeping the remaining weights.
// Used for sampling without replacement; the receiver is left untouched.
func (p *Pool) Without(cardID int64) *Pool {
	cards := make([]CardRef, 0, len(p.entries))
	weights := make([]float64, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Card.ID == cardID {
			continue
		}
		cards = append(cards, e.Card)
		weights = append(weights, e.Weight)
	}
	return newPool(cards, weights)
}
