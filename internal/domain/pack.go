package domain

import "fmt"

// PackSpec is the immutable definition of a purchasable pack.
type PackSpec struct {
	ID              int64  `json:"pack_id" db:"pack_id"`
	SetID           int64  `json:"set_id" db:"set_id"`
	Name            string `json:"name" db:"pack_name"`
	CardsPerPack    int    `json:"cards_per_pack" db:"cards_per_pack"`
	GuaranteedRares int    `json:"guaranteed_rares" db:"guaranteed_rares"`
	GuaranteedHolos int    `json:"guaranteed_holos" db:"guaranteed_holos"`
}

// NewPackSpec builds a PackSpec and rejects impossible guarantee combinations.
func NewPackSpec(id, setID int64, name string, cardsPerPack, guaranteedRares, guaranteedHolos int) (PackSpec, error) {
	spec := PackSpec{
		ID:              id,
		SetID:           setID,
		Name:            name,
		CardsPerPack:    cardsPerPack,
		GuaranteedRares: guaranteedRares,
		GuaranteedHolos: guaranteedHolos,
	}
	if err := spec.Validate(); err != nil {
		return PackSpec{}, err
	}
	return spec, nil
}

// Validate checks the slot arithmetic of the pack.
func (p PackSpec) Validate() error {
	if p.CardsPerPack < 0 {
		return fmt.Errorf("%w: cards_per_pack must not be negative (got %d)", ErrInvalidPackSpec, p.CardsPerPack)
	}
	if p.GuaranteedRares < 0 || p.GuaranteedHolos < 0 {
		return fmt.Errorf("%w: guarantees must not be negative (rares=%d, holos=%d)", ErrInvalidPackSpec, p.GuaranteedRares, p.GuaranteedHolos)
	}
	if p.GuaranteedRares+p.GuaranteedHolos > p.CardsPerPack {
		return fmt.Errorf("%w: guaranteed rares (%d) + holos (%d) exceed cards per pack (%d)",
			ErrInvalidPackSpec, p.GuaranteedRares, p.GuaranteedHolos, p.CardsPerPack)
	}
	return nil
}

// FillSlots is the number of slots drawn from the full table.
func (p PackSpec) FillSlots() int {
	return p.CardsPerPack - p.GuaranteedRares - p.GuaranteedHolos
}

// BoxSpec is a bundle of identical packs opened as one event.
type BoxSpec struct {
	ID          int64  `json:"box_id" db:"box_id"`
	Name        string `json:"name" db:"box_name"`
	PackID      int64  `json:"pack_id" db:"pack_id"`
	PacksPerBox int    `json:"packs_per_box" db:"packs_per_box"`
}

// Validate checks that the box contains at least one pack.
func (b BoxSpec) Validate() error {
	if b.PacksPerBox < 1 {
		return fmt.Errorf("%w: packs_per_box must be at least 1 (got %d)", ErrInvalidBoxSpec, b.PacksPerBox)
	}
	return nil
}

// ProductKind distinguishes the two purchasable product types.
type ProductKind string

const (
	ProductPack ProductKind = "PACK"
	ProductBox  ProductKind = "BOX"
)

// ReservationToken identifies held stock until it is released or consumed.
type ReservationToken struct {
	ID        string      `json:"reservation_id"`
	Kind      ProductKind `json:"kind"`
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
}
