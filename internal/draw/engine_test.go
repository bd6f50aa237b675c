package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
)

func buildTable(t *testing.T, weights map[domain.CardRarity]float64, nonRepeating bool, cards []domain.Card) *raritytable.Table {
	t.Helper()
	table, err := raritytable.Build(domain.CardSet{
		ID:            1,
		RarityWeights: weights,
		NonRepeating:  nonRepeating,
	}, cards)
	require.NoError(t, err)
	return table
}

func standardCards() []domain.Card {
	return []domain.Card{
		{ID: 1, SetID: 1, Name: "Goblin", Rarity: domain.RarityCommon},
		{ID: 2, SetID: 1, Name: "Slime", Rarity: domain.RarityCommon},
		{ID: 3, SetID: 1, Name: "Wolf", Rarity: domain.RarityCommon, IsHolo: true},
		{ID: 4, SetID: 1, Name: "Knight", Rarity: domain.RarityUncommon},
		{ID: 5, SetID: 1, Name: "Dragon", Rarity: domain.RarityRare},
		{ID: 6, SetID: 1, Name: "Phoenix", Rarity: domain.RarityUltraRare, IsHolo: true},
		{ID: 7, SetID: 1, Name: "Void", Rarity: domain.RaritySecretRare},
	}
}

func standardWeights() map[domain.CardRarity]float64 {
	return map[domain.CardRarity]float64{
		domain.RarityCommon:     60,
		domain.RarityUncommon:   25,
		domain.RarityRare:       10,
		domain.RarityUltraRare:  4,
		domain.RaritySecretRare: 1,
	}
}

func TestDraw_WeightedFrequency(t *testing.T) {
	table := buildTable(t, map[domain.CardRarity]float64{
		domain.RarityCommon: 70,
		domain.RarityRare:   30,
	}, false, []domain.Card{
		{ID: 1, SetID: 1, Rarity: domain.RarityCommon},
		{ID: 2, SetID: 1, Rarity: domain.RarityCommon},
		{ID: 3, SetID: 1, Rarity: domain.RarityRare},
	})

	const draws = 100_000
	spec := domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: draws}
	engine := NewEngine(SeededFactory(42))

	result, err := engine.Draw(table, spec)
	require.NoError(t, err)
	require.Len(t, result.Cards, draws)

	rares := 0
	for _, c := range result.Cards {
		if c.Rarity == domain.RarityRare {
			rares++
		}
		assert.Equal(t, domain.SlotFill, c.Slot)
	}

	// Standard error is ~0.00145; 0.01 is about seven of them.
	assert.InDelta(t, 0.30, float64(rares)/draws, 0.01)
}

func TestDraw_GuaranteeInvariant(t *testing.T) {
	tests := []struct {
		name         string
		nonRepeating bool
		spec         domain.PackSpec
	}{
		{"standard booster", false, domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: 10, GuaranteedRares: 2, GuaranteedHolos: 1}},
		{"all guaranteed", false, domain.PackSpec{ID: 2, SetID: 1, CardsPerPack: 5, GuaranteedRares: 3, GuaranteedHolos: 2}},
		{"non-repeating", true, domain.PackSpec{ID: 3, SetID: 1, CardsPerPack: 8, GuaranteedRares: 3, GuaranteedHolos: 2}},
		{"no guarantees", false, domain.PackSpec{ID: 4, SetID: 1, CardsPerPack: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := buildTable(t, standardWeights(), tt.nonRepeating, standardCards())
			engine := NewEngine(SeededFactory(7))

			for i := 0; i < 2000; i++ {
				result, err := engine.Draw(table, tt.spec)
				require.NoError(t, err)
				require.Len(t, result.Cards, tt.spec.CardsPerPack)

				rares, holos := 0, 0
				for _, c := range result.Cards {
					if c.Rarity.AtLeast(domain.RarityRare) {
						rares++
					}
					if c.IsHolo {
						holos++
					}
				}
				require.GreaterOrEqual(t, rares, tt.spec.GuaranteedRares)
				require.GreaterOrEqual(t, holos, tt.spec.GuaranteedHolos)
			}
		})
	}
}

func TestDraw_NonRepeatingGuaranteesAreDistinct(t *testing.T) {
	table := buildTable(t, standardWeights(), true, standardCards())
	engine := NewEngine(SeededFactory(3))
	spec := domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: 3, GuaranteedRares: 3}

	for i := 0; i < 500; i++ {
		result, err := engine.Draw(table, spec)
		require.NoError(t, err)

		seen := make(map[int64]bool)
		for _, c := range result.Cards {
			require.Equal(t, domain.SlotGuaranteedRare, c.Slot)
			require.False(t, seen[c.CardID], "card %d drawn twice", c.CardID)
			seen[c.CardID] = true
		}
	}
}

func TestDraw_InsufficientPool(t *testing.T) {
	table := buildTable(t, standardWeights(), true, standardCards())
	engine := NewEngine(func() (Source, error) {
		t.Fatal("source must not be created for a rejected pack")
		return nil, nil
	})

	_, err := engine.Draw(table, domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: 4, GuaranteedRares: 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientPool)
}

func TestDraw_EmptyPackNeverTouchesSource(t *testing.T) {
	table := buildTable(t, standardWeights(), false, standardCards())
	calls := 0
	engine := NewEngine(func() (Source, error) {
		calls++
		return NewSeededSource(1), nil
	})

	result, err := engine.Draw(table, domain.PackSpec{ID: 1, SetID: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Cards)
	assert.Zero(t, calls)
}

func TestDraw_DegenerateWeights(t *testing.T) {
	// Only commons are weighted; rare and holo guarantees still apply.
	table := buildTable(t, map[domain.CardRarity]float64{domain.RarityCommon: 1}, false, standardCards())
	engine := NewEngine(SeededFactory(11))
	spec := domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: 10, GuaranteedRares: 2, GuaranteedHolos: 1}

	seenRare := make(map[int64]bool)
	for i := 0; i < 300; i++ {
		result, err := engine.Draw(table, spec)
		require.NoError(t, err)

		for _, c := range result.Cards {
			switch c.Slot {
			case domain.SlotFill:
				require.Equal(t, domain.RarityCommon, c.Rarity)
			case domain.SlotGuaranteedRare:
				require.True(t, c.Rarity.AtLeast(domain.RarityRare))
				seenRare[c.CardID] = true
			case domain.SlotGuaranteedHolo:
				require.True(t, c.IsHolo)
			}
		}
	}
	assert.Len(t, seenRare, 3, "zero-weight rare pool is sampled uniformly")
}

func TestDraw_ShuffleHidesGuaranteedSlots(t *testing.T) {
	table := buildTable(t, standardWeights(), false, standardCards())
	engine := NewEngine(SeededFactory(5))
	spec := domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: 10, GuaranteedRares: 1}

	positions := make(map[int]bool)
	for i := 0; i < 500; i++ {
		result, err := engine.Draw(table, spec)
		require.NoError(t, err)
		for pos, c := range result.Cards {
			if c.Slot == domain.SlotGuaranteedRare {
				positions[pos] = true
			}
		}
	}
	assert.Len(t, positions, 10)
}

func TestDraw_Deterministic(t *testing.T) {
	table := buildTable(t, standardWeights(), false, standardCards())
	spec := domain.PackSpec{ID: 1, SetID: 1, CardsPerPack: 10, GuaranteedRares: 2, GuaranteedHolos: 1}

	a, err := NewEngine(SeededFactory(99)).Draw(table, spec)
	require.NoError(t, err)
	b, err := NewEngine(SeededFactory(99)).Draw(table, spec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDraw_RejectsForeignPack(t *testing.T) {
	table := buildTable(t, standardWeights(), false, standardCards())
	_, err := NewEngine(nil).Draw(table, domain.PackSpec{ID: 1, SetID: 2, CardsPerPack: 5})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNewSource_Independent(t *testing.T) {
	a, err := NewSource()
	require.NoError(t, err)
	b, err := NewSource()
	require.NoError(t, err)
	assert.NotEqual(t, a.Float64(), b.Float64())
}
