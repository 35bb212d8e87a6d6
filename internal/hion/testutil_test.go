package hion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// loadCatalogFromExamples loads a species catalog from the examples directory.
func loadCatalogFromExamples(t *testing.T, filename string) (CatalogConfig, *SpeciesTable) {
	t.Helper()

	// This file is in internal/hion/, so examples/catalog is at ../../examples/catalog/
	examplesPath := filepath.Join("..", "..", "examples", "catalog", filename)

	data, err := os.ReadFile(examplesPath)
	if err != nil {
		t.Fatalf("Failed to read catalog file %s: %v", examplesPath, err)
	}

	var cfg CatalogConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Failed to parse catalog JSON: %v", err)
	}

	table, err := BuildSpeciesTableFromConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to build species table: %v", err)
	}

	return cfg, table
}

// testSpecies builds a minimal species table in code: the three pion charge
// states, the omega resonance decaying into them, and the proton.
func testSpecies() *SpeciesTable {
	piZero := &Species{
		PDG: PDGPiZero, Name: "pi0", Mass: 0.1349768,
		SpinDegeneracy: 1, Stable: true, Isospin: 2,
	}
	piPlus := &Species{
		PDG: PDGPiPlus, Name: "pi+", Mass: 0.1395704,
		SpinDegeneracy: 1, Stable: true, Charge: 1, Isospin: 2, Isospin3: 2,
	}
	piMinus := &Species{
		PDG: PDGPiMinus, Name: "pi-", Mass: 0.1395704,
		SpinDegeneracy: 1, Stable: true, Charge: -1, Isospin: 2, Isospin3: -2,
	}
	omega := &Species{
		PDG: PDGOmega, Name: "omega", Mass: 0.78265, Width: 0.00849,
		SpinDegeneracy: 3, Stable: false,
		DecayModes: []DecayMode{
			{Products: []PDGCode{PDGPiPlus, PDGPiMinus, PDGPiZero}, BranchingRatio: 0.892},
		},
		minMass: piZero.Mass + 2*piPlus.Mass,
	}
	proton := &Species{
		PDG: 2212, Name: "p", Mass: 0.938272,
		SpinDegeneracy: 2, Stable: true, Charge: 1, BaryonNumber: 1,
		Isospin: 1, Isospin3: 1,
	}
	return NewSpeciesTable("test").WithSpecies(piZero, piPlus, piMinus, omega, proton)
}

// mustFind fails the test if the species is missing from the table.
func mustFind(t *testing.T, table *SpeciesTable, code PDGCode) *Species {
	t.Helper()
	sp, ok := table.TryFind(code)
	if !ok {
		t.Fatalf("species %d not in table", code)
	}
	return sp
}

// particleAt builds a particle of the given species with an explicit
// four-momentum and position.
func particleAt(sp *Species, momentum, position FourVector) Particle {
	p := NewParticle(sp)
	p.Momentum = momentum
	p.Position = position
	return p
}

// scriptedSource replays a fixed list of draws; each Uniform call consumes
// one entry scaled into [low, high).
type scriptedSource struct {
	draws []float64
	next  int
}

func (s *scriptedSource) Uniform(low, high float64) float64 {
	if s.next >= len(s.draws) {
		return low
	}
	v := s.draws[s.next]
	s.next++
	return low + (high-low)*v
}
