package draw

import (
	"fmt"
	"math"

	"github.com/osse101/PackOpener_Go/internal/domain"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
)

// RarityStats compares a rarity's advertised fill-slot odds with what was drawn.
type RarityStats struct {
	Rarity     domain.CardRarity
	Advertised float64
	Observed   float64
	Count      int
}

// Deviation is the absolute gap between observed and advertised odds.
func (s RarityStats) Deviation() float64 {
	return math.Abs(s.Observed - s.Advertised)
}

// SimulationReport summarises many draws of one pack spec.
type SimulationReport struct {
	SetID     int64
	PackID    int64
	Packs     int
	FillSlots int
	Fill      []RarityStats // ladder order
	// Guaranteed counts the rarities drawn into guaranteed rare slots.
	Guaranteed  map[domain.CardRarity]int
	HoloCards   int
	TotalCards  int
	ShortPacks  int // packs whose guarantees were not met; always zero for a correct engine
	UniqueCards int
}

// MaxDeviation returns the largest fill-slot deviation across rarities.
func (r *SimulationReport) MaxDeviation() float64 {
	var worst float64
	for _, s := range r.Fill {
		worst = max(worst, s.Deviation())
	}
	return worst
}

// Simulate draws the pack n times and tallies rarities, so advertised odds can
// be checked offline against the engine's actual output.
func (e *Engine) Simulate(table *raritytable.Table, spec domain.PackSpec, n int) (*SimulationReport, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: simulation needs a positive pack count, got %d", domain.ErrValidation, n)
	}

	report := &SimulationReport{
		SetID:      table.SetID(),
		PackID:     spec.ID,
		Packs:      n,
		Guaranteed: make(map[domain.CardRarity]int),
	}
	fill := make(map[domain.CardRarity]int)
	seen := make(map[int64]struct{})

	for i := 0; i < n; i++ {
		result, err := e.Draw(table, spec)
		if err != nil {
			return nil, err
		}

		var rares, holos int
		for _, c := range result.Cards {
			seen[c.CardID] = struct{}{}
			report.TotalCards++
			if c.IsHolo {
				report.HoloCards++
				holos++
			}
			if c.Rarity.AtLeast(domain.RarityRare) {
				rares++
			}
			switch c.Slot {
			case domain.SlotFill:
				fill[c.Rarity]++
				report.FillSlots++
			case domain.SlotGuaranteedRare:
				report.Guaranteed[c.Rarity]++
			}
		}
		if rares < spec.GuaranteedRares || holos < spec.GuaranteedHolos {
			report.ShortPacks++
		}
	}

	report.UniqueCards = len(seen)
	for _, rarity := range domain.AllRarities {
		advertised := table.Probability(rarity)
		if advertised == 0 && fill[rarity] == 0 {
			continue
		}
		stats := RarityStats{Rarity: rarity, Advertised: advertised, Count: fill[rarity]}
		if report.FillSlots > 0 {
			stats.Observed = float64(fill[rarity]) / float64(report.FillSlots)
		}
		report.Fill = append(report.Fill, stats)
	}

	return report, nil
}
