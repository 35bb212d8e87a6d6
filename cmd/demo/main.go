package main

import (
	"fmt"
	"os"

	"github.com/daniacca/hionsim/internal/hion"
)

// A self-contained walkthrough of the collision core: build a small hadron
// catalog in code, scan the three-pion fusion probability around the omega
// pole, then resolve one fusion end to end.
func main() {
	table, err := hion.BuildSpeciesTableFromConfig(demoCatalog())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building catalog: %v\n", err)
		os.Exit(1)
	}
	ctx := hion.NewContext(hion.NewRandomSource(42), table)

	omega, _ := table.TryFind(hion.PDGOmega)

	fmt.Println("Fusion probability scan (dt=0.1, V=5.0):")
	for _, sqrts := range []float64{0.45, 0.60, omega.Mass, 0.90, 1.10} {
		act := hion.NewMultiParticleAction(ctx, threePionsAtRest(table, sqrts), 0)
		p := act.ProbabilityThreePiToOne(omega, 0.1, 5.0)
		fmt.Printf("  sqrt(s)=%.5f GeV  P=%.3e\n", sqrts, p)
	}

	fmt.Println()
	fmt.Println("Resolving one fusion at the omega pole:")

	particles := hion.NewParticles()
	incoming := make([]hion.Particle, 0, 3)
	for _, p := range threePionsAtRest(table, omega.Mass) {
		incoming = append(incoming, particles.Insert(p))
	}

	act := hion.NewMultiParticleAction(ctx, incoming, 0.1)
	act.AddPossibleReactions(0.1, 5.0, true)
	if err := act.GenerateFinalState(); err != nil {
		fmt.Fprintf(os.Stderr, "error generating final state: %v\n", err)
		os.Exit(1)
	}
	if err := act.Perform(particles, 1); err != nil {
		fmt.Fprintf(os.Stderr, "error performing action: %v\n", err)
		os.Exit(1)
	}

	for _, p := range particles.All() {
		fmt.Printf("  %s  E=%.5f GeV  m=%.5f GeV  (process %s)\n",
			p.Species.Name, p.Momentum.X0, p.EffectiveMass(), p.History.ProcessType)
	}
}

func demoCatalog() hion.CatalogConfig {
	return hion.CatalogConfig{
		Name: "demo-hadrons",
		Species: []hion.SpeciesConfig{
			{PDG: 111, Name: "pi0", Mass: 0.1349768, SpinDegeneracy: 1, Stable: true, Isospin: 2},
			{PDG: 211, Name: "pi+", Mass: 0.1395704, SpinDegeneracy: 1, Stable: true, Charge: 1, Isospin: 2, Isospin3: 2},
			{PDG: -211, Name: "pi-", Mass: 0.1395704, SpinDegeneracy: 1, Stable: true, Charge: -1, Isospin: 2, Isospin3: -2},
			{
				PDG: 223, Name: "omega", Mass: 0.78265, Width: 0.00849,
				SpinDegeneracy: 3,
				DecayModes: []hion.DecayModeConfig{
					{Products: []int{211, -211, 111}, BranchingRatio: 0.892},
				},
			},
		},
	}
}

// threePionsAtRest builds a pi+ pi- pi0 triple collectively at rest with
// total energy sqrts, shared equally.
func threePionsAtRest(table *hion.SpeciesTable, sqrts float64) []hion.Particle {
	out := make([]hion.Particle, 0, 3)
	for _, code := range []int{211, -211, 111} {
		p, _ := hion.RestoreParticle(hion.ParticleSnapshot{
			PDG:      code,
			Momentum: [4]float64{sqrts / 3, 0, 0, 0},
		}, table)
		out = append(out, p)
	}
	return out
}
