package hion

// DecayModeConfig declares one decay channel of a species: outgoing PDG
// codes and the branching ratio at the pole mass.
type DecayModeConfig struct {
	Products       []int   `json:"products"`
	BranchingRatio float64 `json:"branching_ratio"`
}

// SpeciesConfig is the JSON description of one species in a catalog file.
// Masses and widths are in GeV; isospin and isospin3 carry twice their
// physical value so they stay integers.
type SpeciesConfig struct {
	PDG            int               `json:"pdg"`
	Name           string            `json:"name"`
	Mass           float64           `json:"mass"`
	Width          float64           `json:"width,omitempty"`
	SpinDegeneracy int               `json:"spin_degeneracy"`
	Stable         bool              `json:"stable"`
	Charge         int               `json:"charge"`
	BaryonNumber   int               `json:"baryon_number,omitempty"`
	Strangeness    int               `json:"strangeness,omitempty"`
	Isospin        int               `json:"isospin,omitempty"`
	Isospin3       int               `json:"isospin3,omitempty"`
	DecayModes     []DecayModeConfig `json:"decay_modes,omitempty"`
}

// CatalogConfig is the top-level species catalog file format.
type CatalogConfig struct {
	Name    string          `json:"name"`
	Species []SpeciesConfig `json:"species"`
}
