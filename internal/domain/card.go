package domain

import "fmt"

// CardRarity is the printed rarity of a card. Rarities are ordered; see Rank.
type CardRarity string

const (
	RarityCommon     CardRarity = "COMMON"
	RarityUncommon   CardRarity = "UNCOMMON"
	RarityRare       CardRarity = "RARE"
	RarityUltraRare  CardRarity = "ULTRA_RARE"
	RaritySecretRare CardRarity = "SECRET_RARE"
)

// AllRarities lists every rarity from most to least common.
var AllRarities = []CardRarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityUltraRare,
	RaritySecretRare,
}

// Rank returns the position of the rarity in the rarity ladder, or -1 if unknown.
func (r CardRarity) Rank() int {
	switch r {
	case RarityCommon:
		return 0
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityUltraRare:
		return 3
	case RaritySecretRare:
		return 4
	default:
		return -1
	}
}

// AtLeast reports whether r is the same as or rarer than other.
func (r CardRarity) AtLeast(other CardRarity) bool {
	return r.Rank() >= 0 && r.Rank() >= other.Rank()
}

// IsValid reports whether r is a known rarity.
func (r CardRarity) IsValid() bool {
	return r.Rank() >= 0
}

// ParseRarity converts a raw string into a CardRarity.
func ParseRarity(s string) (CardRarity, error) {
	r := CardRarity(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown rarity %q", ErrValidation, s)
	}
	return r, nil
}

// SetStatus is the lifecycle state of a card set.
type SetStatus string

const (
	SetStatusDraft   SetStatus = "DRAFT"
	SetStatusActive  SetStatus = "ACTIVE"
	SetStatusRetired SetStatus = "RETIRED"
)

// Card is a catalog card. Prices are not part of the card; they come from the pricing lookup.
type Card struct {
	ID     int64      `json:"card_id" db:"card_id"`
	SetID  int64      `json:"set_id" db:"set_id"`
	Name   string     `json:"name" db:"card_name"`
	Rarity CardRarity `json:"rarity" db:"rarity"`
	IsHolo bool       `json:"is_holo" db:"is_holo"`
}

// CardSet groups cards that are sold together and owns the rarity weights.
type CardSet struct {
	ID            int64                  `json:"set_id" db:"set_id"`
	Name          string                 `json:"name" db:"set_name"`
	Status        SetStatus              `json:"status" db:"status"`
	RarityWeights map[CardRarity]float64 `json:"rarity_weights" db:"rarity_weights"`
	// NonRepeating makes guarantee pools sample without replacement.
	NonRepeating bool `json:"non_repeating" db:"non_repeating"`
}
