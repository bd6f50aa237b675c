// Package catalog loads card sets, packs and boxes from a JSON file.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/validation"
)

// File is the on-disk catalog format.
type File struct {
	Users []domain.User     `json:"users"`
	Sets  []Set             `json:"sets"`
	Packs []domain.PackSpec `json:"packs"`
	Boxes []domain.BoxSpec  `json:"boxes"`
	Stock []StockLevel      `json:"stock"`
}

// Set is a card set with its cards inline.
type Set struct {
	ID            int64                         `json:"set_id"`
	Name          string                        `json:"name"`
	NonRepeating  bool                          `json:"non_repeating"`
	RarityWeights map[domain.CardRarity]float64 `json:"rarity_weights"`
	Cards         []Card                        `json:"cards"`
}

// Card is a catalog card with its starting value in minor units.
type Card struct {
	ID     int64             `json:"card_id"`
	Name   string            `json:"name"`
	Rarity domain.CardRarity `json:"rarity"`
	IsHolo bool              `json:"is_holo"`
	Value  int64             `json:"value"`
}

// StockLevel is the sellable quantity of one product.
type StockLevel struct {
	Kind      domain.ProductKind `json:"kind"`
	ProductID int64              `json:"product_id"`
	Quantity  int                `json:"quantity"`
}

// Seeder receives a loaded catalog. The in-memory store implements it.
type Seeder interface {
	AddUser(user domain.User)
	AddCardSet(set domain.CardSet)
	AddCard(card domain.Card, value int64)
	AddPack(pack domain.PackSpec)
	AddBox(box domain.BoxSpec)
	SetStock(kind domain.ProductKind, productID int64, qty int)
}

// Load reads, schema-validates and cross-checks a catalog file.
func Load(path string, v validation.SchemaValidator) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ErrContextFailedToRead, path, err)
	}
	f, err := Parse(data, v)
	if err != nil {
		return nil, err
	}

	slog.Default().Info(LogMsgCatalogLoaded,
		LogFieldPath, path,
		LogFieldSets, len(f.Sets),
		LogFieldCards, f.CardCount(),
		LogFieldPacks, len(f.Packs),
		LogFieldBoxes, len(f.Boxes))
	return f, nil
}

// Parse validates raw catalog JSON.
func Parse(data []byte, v validation.SchemaValidator) (*File, error) {
	if err := v.ValidateBytes(data, validation.SchemaCatalog); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrValidation, ErrContextInvalidSchema, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrValidation, ErrContextFailedToDecode, err)
	}
	if err := f.Check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Check verifies the references the schema cannot express.
func (f *File) Check() error {
	sets := make(map[int64]bool, len(f.Sets))
	cards := make(map[int64]bool)
	for _, s := range f.Sets {
		if sets[s.ID] {
			return fmt.Errorf("%w: duplicate set %d", domain.ErrValidation, s.ID)
		}
		sets[s.ID] = true
		for _, c := range s.Cards {
			if cards[c.ID] {
				return fmt.Errorf("%w: duplicate card %d", domain.ErrValidation, c.ID)
			}
			cards[c.ID] = true
		}
	}

	packs := make(map[int64]bool, len(f.Packs))
	for _, p := range f.Packs {
		if packs[p.ID] {
			return fmt.Errorf("%w: duplicate pack %d", domain.ErrValidation, p.ID)
		}
		if !sets[p.SetID] {
			return fmt.Errorf("%w: pack %d references unknown set %d", domain.ErrValidation, p.ID, p.SetID)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		packs[p.ID] = true
	}

	boxes := make(map[int64]bool, len(f.Boxes))
	for _, b := range f.Boxes {
		if boxes[b.ID] {
			return fmt.Errorf("%w: duplicate box %d", domain.ErrValidation, b.ID)
		}
		if !packs[b.PackID] {
			return fmt.Errorf("%w: box %d references unknown pack %d", domain.ErrValidation, b.ID, b.PackID)
		}
		if err := b.Validate(); err != nil {
			return err
		}
		boxes[b.ID] = true
	}

	for _, s := range f.Stock {
		known := packs[s.ProductID]
		if s.Kind == domain.ProductBox {
			known = boxes[s.ProductID]
		}
		if !known {
			return fmt.Errorf("%w: stock for unknown %s %d", domain.ErrValidation, s.Kind, s.ProductID)
		}
	}
	return nil
}

// CardCount returns the number of cards across all sets.
func (f *File) CardCount() int {
	n := 0
	for _, s := range f.Sets {
		n += len(s.Cards)
	}
	return n
}

// Apply seeds every entity into s. Sets start in DRAFT and must be activated.
func (f *File) Apply(s Seeder) {
	for _, u := range f.Users {
		s.AddUser(u)
	}
	for _, set := range f.Sets {
		s.AddCardSet(domain.CardSet{
			ID:            set.ID,
			Name:          set.Name,
			Status:        domain.SetStatusDraft,
			RarityWeights: set.RarityWeights,
			NonRepeating:  set.NonRepeating,
		})
		for _, c := range set.Cards {
			s.AddCard(domain.Card{
				ID:     c.ID,
				SetID:  set.ID,
				Name:   c.Name,
				Rarity: c.Rarity,
				IsHolo: c.IsHolo,
			}, c.Value)
		}
	}
	for _, p := range f.Packs {
		s.AddPack(p)
	}
	for _, b := range f.Boxes {
		s.AddBox(b)
	}
	for _, st := range f.Stock {
		s.SetStock(st.Kind, st.ProductID, st.Quantity)
	}
}

// SetIDs returns the id of every set in file order.
func (f *File) SetIDs() []int64 {
	ids := make([]int64, len(f.Sets))
	for i, s := range f.Sets {
		ids[i] = s.ID
	}
	return ids
}
