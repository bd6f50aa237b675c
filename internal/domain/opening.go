package domain

import (
	"time"

	"github.com/google/uuid"
)

// SlotKind records which phase of the draw produced a card.
type SlotKind string

const (
	SlotFill           SlotKind = "FILL"
	SlotGuaranteedRare SlotKind = "GUARANTEED_RARE"
	SlotGuaranteedHolo SlotKind = "GUARANTEED_HOLO"
)

// DrawnCard is one card pulled from a pack, with its value snapshot.
type DrawnCard struct {
	CardID int64      `json:"card_id"`
	Name   string     `json:"name"`
	Rarity CardRarity `json:"rarity"`
	IsHolo bool       `json:"is_holo"`
	Value  int64      `json:"value"`
	Slot   SlotKind   `json:"slot"`
}

// DrawResult is the ordered output of a single pack draw. It is never persisted on its own.
type DrawResult struct {
	Cards []DrawnCard
}

// PackOpeningResult is the persisted outcome of opening one pack.
type PackOpeningResult struct {
	ID              uuid.UUID          `json:"id"`
	UserID          string             `json:"user_id"`
	PackID          int64              `json:"pack_id"`
	Cards           []DrawnCard        `json:"cards"`
	TotalValue      int64              `json:"total_value"`
	RarityBreakdown map[CardRarity]int `json:"rarity_breakdown"`
	OpenedAt        time.Time          `json:"opened_at"`
}

// CardCount returns the number of cards obtained.
func (r *PackOpeningResult) CardCount() int {
	return len(r.Cards)
}

// BoxOpeningResult aggregates the packs opened from one box.
type BoxOpeningResult struct {
	ID                 uuid.UUID           `json:"id"`
	UserID             string              `json:"user_id"`
	BoxID              int64               `json:"box_id"`
	Packs              []PackOpeningResult `json:"packs"`
	TotalCardsObtained int                 `json:"total_cards_obtained"`
	TotalValue         int64               `json:"total_value"`
	RarityBreakdown    map[CardRarity]int  `json:"rarity_breakdown"`
	OpenedAt           time.Time           `json:"opened_at"`
}

// Opening is what the ledger applies: exactly one of Pack or Box is set.
type Opening struct {
	Kind ProductKind
	Pack *PackOpeningResult
	Box  *BoxOpeningResult
}

// TargetID returns the pack or box id the opening was made from.
func (o Opening) TargetID() int64 {
	if o.Kind == ProductBox && o.Box != nil {
		return o.Box.BoxID
	}
	if o.Pack != nil {
		return o.Pack.PackID
	}
	return 0
}

// ResultID returns the id of the pack or box result.
func (o Opening) ResultID() uuid.UUID {
	if o.Kind == ProductBox && o.Box != nil {
		return o.Box.ID
	}
	if o.Pack != nil {
		return o.Pack.ID
	}
	return uuid.Nil
}

// Cards returns every drawn card in the opening, pack order preserved.
func (o Opening) Cards() []DrawnCard {
	if o.Kind == ProductBox && o.Box != nil {
		cards := make([]DrawnCard, 0, o.Box.TotalCardsObtained)
		for i := range o.Box.Packs {
			cards = append(cards, o.Box.Packs[i].Cards...)
		}
		return cards
	}
	if o.Pack != nil {
		return o.Pack.Cards
	}
	return nil
}

// TotalValue returns the summed snapshot value of the opening.
func (o Opening) TotalValue() int64 {
	if o.Kind == ProductBox && o.Box != nil {
		return o.Box.TotalValue
	}
	if o.Pack != nil {
		return o.Pack.TotalValue
	}
	return 0
}

// CommittedOpening is the dedup record stored with every applied opening.
type CommittedOpening struct {
	UserID        string             `json:"user_id"`
	RequestID     string             `json:"request_id"`
	Kind          ProductKind        `json:"kind"`
	TargetID      int64              `json:"target_id"`
	TransactionID uuid.UUID          `json:"transaction_id"`
	Pack          *PackOpeningResult `json:"pack,omitempty"`
	Box           *BoxOpeningResult  `json:"box,omitempty"`
	CommittedAt   time.Time          `json:"committed_at"`

	// Replayed is set when the record was returned for a repeated request id.
	Replayed bool `json:"-"`
}

// Matches reports whether the record was created for the given kind and target.
func (c *CommittedOpening) Matches(kind ProductKind, targetID int64) bool {
	return c.Kind == kind && c.TargetID == targetID
}

// OpeningCompletedPayload is published after an opening is committed.
type OpeningCompletedPayload struct {
	UserID        string      `json:"user_id"`
	RequestID     string      `json:"request_id"`
	Kind          ProductKind `json:"kind"`
	TargetID      int64       `json:"target_id"`
	ResultID      uuid.UUID   `json:"result_id"`
	TransactionID uuid.UUID   `json:"transaction_id"`
	TotalCards    int         `json:"total_cards"`
	TotalValue    int64       `json:"total_value"`
}
