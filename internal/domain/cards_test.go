package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRarity_AtLeast(t *testing.T) {
	tests := []struct {
		name   string
		rarity CardRarity
		other  CardRarity
		want   bool
	}{
		{"common vs rare", RarityCommon, RarityRare, false},
		{"uncommon vs rare", RarityUncommon, RarityRare, false},
		{"rare vs rare", RarityRare, RarityRare, true},
		{"ultra vs rare", RarityUltraRare, RarityRare, true},
		{"secret vs rare", RaritySecretRare, RarityRare, true},
		{"unknown vs common", CardRarity("SHINY"), RarityCommon, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rarity.AtLeast(tt.other))
		})
	}
}

func TestParseRarity(t *testing.T) {
	r, err := ParseRarity("ULTRA_RARE")
	require.NoError(t, err)
	assert.Equal(t, RarityUltraRare, r)

	_, err = ParseRarity("MYTHIC")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewPackSpec(t *testing.T) {
	tests := []struct {
		name    string
		cards   int
		rares   int
		holos   int
		wantErr bool
	}{
		{"standard booster", 10, 2, 1, false},
		{"all guaranteed", 3, 2, 1, false},
		{"empty pack", 0, 0, 0, false},
		{"guarantees exceed slots", 2, 2, 1, true},
		{"negative cards", -1, 0, 0, true},
		{"negative rares", 5, -1, 0, true},
		{"negative holos", 5, 0, -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewPackSpec(1, 1, "booster", tt.cards, tt.rares, tt.holos)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				assert.ErrorIs(t, err, ErrInvalidPackSpec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cards-tt.rares-tt.holos, spec.FillSlots())
		})
	}
}

func TestBoxSpec_Validate(t *testing.T) {
	assert.NoError(t, BoxSpec{PacksPerBox: 6}.Validate())
	assert.ErrorIs(t, BoxSpec{PacksPerBox: 0}.Validate(), ErrValidation)
}

func TestErrorCategories(t *testing.T) {
	assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
	assert.Equal(t, "user not found", ErrUserNotFound.Error())
	assert.ErrorIs(t, ErrLockTimeout, ErrConflict)
	assert.ErrorIs(t, ErrSetNotActive, ErrValidation)

	assert.True(t, IsRetryable(ErrOutOfStock))
	assert.True(t, IsRetryable(ErrLockTimeout))
	assert.True(t, IsRetryable(Internal("commit", errors.New("connection reset"))))
	assert.False(t, IsRetryable(ErrRequestIDReused))
	assert.False(t, IsRetryable(ErrInvalidPackSpec))
	assert.False(t, IsRetryable(ErrInsufficientPool))
}

func TestUserInventory_IsConsistent(t *testing.T) {
	inv := UserInventory{
		TotalCards: 5,
		TotalValue: 350,
		Items: []UserInventoryItem{
			{CardID: 1, Quantity: 3, ValueTotal: 150},
			{CardID: 2, Quantity: 2, ValueTotal: 200},
		},
	}
	assert.True(t, inv.IsConsistent())

	inv.TotalCards = 6
	assert.False(t, inv.IsConsistent())
}

func TestOpening_Accessors(t *testing.T) {
	pack := PackOpeningResult{PackID: 7, TotalValue: 30, Cards: []DrawnCard{{CardID: 1, Value: 10}, {CardID: 2, Value: 20}}}
	o := Opening{Kind: ProductPack, Pack: &pack}
	assert.Equal(t, int64(7), o.TargetID())
	assert.Equal(t, int64(30), o.TotalValue())
	assert.Len(t, o.Cards(), 2)

	box := BoxOpeningResult{BoxID: 9, TotalValue: 60, TotalCardsObtained: 4, Packs: []PackOpeningResult{pack, pack}}
	o = Opening{Kind: ProductBox, Box: &box}
	assert.Equal(t, int64(9), o.TargetID())
	assert.Len(t, o.Cards(), 4)
}
