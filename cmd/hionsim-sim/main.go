package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/daniacca/hionsim/internal/hion"
)

type seedParticle struct {
	PDG      int        `json:"pdg"`
	Momentum [4]float64 `json:"momentum"`
	Position [4]float64 `json:"position"`
}

func main() {
	var (
		catalogFile = flag.String("catalog-file", "", "path to species catalog JSON file (required)")
		seedFile    = flag.String("seed", "", "path to seed particles JSON file (required)")
		dt          = flag.Float64("dt", 0.1, "time step for collision probabilities (fm/c)")
		cellVolume  = flag.Float64("cell-volume", 5.0, "interaction cell volume (fm^3)")
		rngSeed     = flag.Int64("rng-seed", 42, "random generator seed")
	)
	flag.Parse()

	if *catalogFile == "" || *seedFile == "" {
		fmt.Fprintf(os.Stderr, "error: --catalog-file and --seed are required\n")
		flag.Usage()
		os.Exit(1)
	}

	table, err := loadCatalog(*catalogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading catalog: %v\n", err)
		os.Exit(1)
	}

	particles, incoming, err := loadSeedParticles(*seedFile, table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading seed particles: %v\n", err)
		os.Exit(1)
	}

	ctx := hion.NewContext(hion.NewRandomSource(*rngSeed), table)
	act := hion.NewMultiParticleAction(ctx, incoming, 0)
	act.AddPossibleReactions(*dt, *cellVolume, true)

	if act.TotalWeight() <= 0 {
		fmt.Println("No open channels for the seed particles.")
		printSummary(act, particles)
		return
	}

	if err := act.GenerateFinalState(); err != nil {
		fmt.Fprintf(os.Stderr, "error generating final state: %v\n", err)
		os.Exit(1)
	}
	if err := act.Perform(particles, 1); err != nil {
		fmt.Fprintf(os.Stderr, "error performing action: %v\n", err)
		os.Exit(1)
	}

	printSummary(act, particles)
}

func loadCatalog(path string) (*hion.SpeciesTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var cfg hion.CatalogConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}

	table, err := hion.BuildSpeciesTableFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	return table, nil
}

func loadSeedParticles(path string, table *hion.SpeciesTable) (*hion.Particles, []hion.Particle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seeds []seedParticle
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, nil, fmt.Errorf("parsing seed JSON: %w", err)
	}

	particles := hion.NewParticles()
	incoming := make([]hion.Particle, 0, len(seeds))
	for _, seed := range seeds {
		p, err := hion.RestoreParticle(hion.ParticleSnapshot{
			PDG:      seed.PDG,
			Momentum: seed.Momentum,
			Position: seed.Position,
		}, table)
		if err != nil {
			return nil, nil, err
		}
		incoming = append(incoming, particles.Insert(p))
	}
	return particles, incoming, nil
}

func printSummary(act *hion.MultiParticleAction, particles *hion.Particles) {
	fmt.Printf("Resolution finished (process=%s, total_weight=%g, partial_weight=%g)\n",
		act.ProcessType(), act.TotalWeight(), act.PartialWeight())
	fmt.Println("Species counts:")

	counts := make(map[string]int)
	for _, p := range particles.All() {
		counts[p.Species.Name]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, counts[name])
	}
}
