package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/osse101/PackOpener_Go/internal/catalog"
	"github.com/osse101/PackOpener_Go/internal/database/memory"
	"github.com/osse101/PackOpener_Go/internal/draw"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
	"github.com/osse101/PackOpener_Go/internal/validation"
)

func main() {
	catalogPath := flag.String("catalog", "", "Catalog JSON file (defaults to the built-in demo set)")
	packID := flag.Int64("pack", memory.DemoPackID, "Pack to simulate")
	packs := flag.Int("n", 10000, "Number of packs to open")
	seed := flag.Uint64("seed", 0, "Deterministic seed (0 uses crypto/rand)")
	tolerance := flag.Float64("tolerance", 0.01, "Maximum allowed gap between observed and advertised fill odds")
	flag.Parse()

	store := memory.NewStore()
	if *catalogPath == "" {
		memory.SeedDemo(store)
	} else {
		file, err := catalog.Load(*catalogPath, validation.NewSchemaValidator())
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		file.Apply(store)
	}

	ctx := context.Background()
	pack, err := store.GetPack(ctx, *packID)
	if err != nil {
		log.Fatalf("Failed to load pack %d: %v", *packID, err)
	}

	tables, err := raritytable.NewService(store, raritytable.DefaultCacheSize)
	if err != nil {
		log.Fatalf("Failed to create rarity table service: %v", err)
	}
	table, err := tables.ActivateSet(ctx, pack.SetID)
	if err != nil {
		log.Fatalf("Failed to activate set %d: %v", pack.SetID, err)
	}

	factory := draw.NewSource
	if *seed != 0 {
		factory = draw.SeededFactory(*seed)
	}

	report, err := draw.NewEngine(factory).Simulate(table, *pack, *packs)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	printReport(report, pack.Name)

	if dev := report.MaxDeviation(); dev > *tolerance || report.ShortPacks > 0 {
		fmt.Printf("\nFAIL: max deviation %.4f (tolerance %.4f), %d packs missed guarantees\n", dev, *tolerance, report.ShortPacks)
		os.Exit(1)
	}
	fmt.Println("\nOK")
}

func printReport(r *draw.SimulationReport, packName string) {
	fmt.Printf("Set %d, pack %d (%s): %d packs, %d cards, %d fill slots, %d distinct cards, %d holo\n\n",
		r.SetID, r.PackID, packName, r.Packs, r.TotalCards, r.FillSlots, r.UniqueCards, r.HoloCards)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RARITY\tADVERTISED\tOBSERVED\tDEVIATION\tCOUNT\tGUARANTEED")
	for _, s := range r.Fill {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%d\t%d\n",
			s.Rarity, s.Advertised, s.Observed, s.Deviation(), s.Count, r.Guaranteed[s.Rarity])
	}
	_ = w.Flush()
}
