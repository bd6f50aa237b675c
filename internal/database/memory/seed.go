package memory

import (
	"fmt"

	"github.com/osse101/PackOpener_Go/internal/domain"
)

// Demo catalog identifiers created by SeedDemo.
const (
	DemoUserID    = "00000000-0000-4000-8000-000000000001"
	DemoSetID     = int64(1)
	DemoPackID    = int64(1)
	DemoBoxID     = int64(1)
	demoStock     = 10_000
	demoBoxStock  = 1_000
	demoPackCount = 6
)

type demoCard struct {
	name   string
	rarity domain.CardRarity
	holo   bool
	value  int64
}

var demoCards = []demoCard{
	{"Ember Sprite", domain.RarityCommon, false, 10},
	{"Tide Crab", domain.RarityCommon, false, 10},
	{"Moss Golem", domain.RarityCommon, false, 12},
	{"Dust Wisp", domain.RarityCommon, true, 40},
	{"Field Mouse", domain.RarityCommon, false, 8},
	{"Gale Hawk", domain.RarityUncommon, false, 30},
	{"Iron Boar", domain.RarityUncommon, false, 35},
	{"Coral Siren", domain.RarityUncommon, true, 90},
	{"Storm Drake", domain.RarityRare, false, 250},
	{"Night Lynx", domain.RarityRare, true, 600},
	{"Glacier Titan", domain.RarityUltraRare, false, 1500},
	{"Sun Phoenix", domain.RarityUltraRare, true, 4000},
	{"Void Leviathan", domain.RaritySecretRare, true, 12000},
}

// SeedDemo loads a small playable catalog: one set in DRAFT, a 10-card
// booster (2 rares, 1 holo), a 6-pack box, stock and one demo user.
func SeedDemo(s *Store) {
	s.AddUser(domain.User{ID: DemoUserID, Username: "demo"})

	s.AddCardSet(domain.CardSet{
		ID:     DemoSetID,
		Name:   "Genesis",
		Status: domain.SetStatusDraft,
		RarityWeights: map[domain.CardRarity]float64{
			domain.RarityCommon:     64,
			domain.RarityUncommon:   25,
			domain.RarityRare:       8,
			domain.RarityUltraRare:  2.5,
			domain.RaritySecretRare: 0.5,
		},
	})

	for i, c := range demoCards {
		s.AddCard(domain.Card{
			ID:     int64(i + 1),
			SetID:  DemoSetID,
			Name:   c.name,
			Rarity: c.rarity,
			IsHolo: c.holo,
		}, c.value)
	}

	s.AddPack(domain.PackSpec{
		ID:              DemoPackID,
		SetID:           DemoSetID,
		Name:            "Genesis Booster",
		CardsPerPack:    10,
		GuaranteedRares: 2,
		GuaranteedHolos: 1,
	})
	s.AddBox(domain.BoxSpec{
		ID:          DemoBoxID,
		Name:        fmt.Sprintf("Genesis Booster Box (%d packs)", demoPackCount),
		PackID:      DemoPackID,
		PacksPerBox: demoPackCount,
	})

	s.SetStock(domain.ProductPack, DemoPackID, demoStock)
	s.SetStock(domain.ProductBox, DemoBoxID, demoBoxStock)
}
