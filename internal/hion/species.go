package hion

import "math"

// PDGCode identifies a particle species by its Monte-Carlo numbering scheme
// code. Antiparticles carry the negated code.
type PDGCode int

// Codes used by the built-in reaction channels.
const (
	PDGPiZero  PDGCode = 111
	PDGPiPlus  PDGCode = 211
	PDGPiMinus PDGCode = -211
	PDGOmega   PDGCode = 223
)

// IsPion reports whether the code is one of the three pion charge states.
func (p PDGCode) IsPion() bool {
	return p == PDGPiZero || p == PDGPiPlus || p == PDGPiMinus
}

// DecayMode is one decay channel of an unstable species: the outgoing
// species codes and the branching ratio of the channel at the pole mass.
type DecayMode struct {
	Products       []PDGCode
	BranchingRatio float64
}

// Species is the immutable, globally shared descriptor of a particle type.
// Multiple particles of the same species reference the same descriptor; it
// is never mutated after the table is built.
type Species struct {
	PDG            PDGCode
	Name           string
	Mass           float64 // pole mass in GeV
	Width          float64 // total width at the pole in GeV
	SpinDegeneracy int     // 2J+1
	Stable         bool
	Charge         int
	BaryonNumber   int
	Strangeness    int
	Isospin        int // twice the total isospin
	Isospin3       int // twice the isospin projection
	DecayModes     []DecayMode

	// minMass is the lowest kinematically reachable mass, resolved from the
	// decay modes when the table is built.
	minMass float64
}

// Isospin3Rel returns I3/I, the relative isospin projection, or 0 for an
// isospin singlet.
func (s *Species) Isospin3Rel() float64 {
	if s.Isospin == 0 {
		return 0
	}
	return float64(s.Isospin3) / float64(s.Isospin)
}

// MinMassKinematic returns the minimum mass the species can be produced
// with: the pole mass for stable species, the lightest decay threshold for
// resonances.
func (s *Species) MinMassKinematic() float64 {
	if s.Stable || s.minMass == 0 {
		return s.Mass
	}
	return s.minMass
}

// matchProducts reports whether the two species lists contain the same
// codes, ignoring order.
func matchProducts(mode []PDGCode, products []*Species) bool {
	if len(mode) != len(products) {
		return false
	}
	counts := make(map[PDGCode]int, len(mode))
	for _, c := range mode {
		counts[c]++
	}
	for _, p := range products {
		counts[p.PDG]--
		if counts[p.PDG] < 0 {
			return false
		}
	}
	return true
}

// PartialWidth returns the partial decay width into exactly the given
// product species at center-of-mass energy sqrts. The width is treated as
// constant over the resonance peak, so the energy dependence reduces to the
// channel threshold. Returns 0 if the species has no matching decay mode or
// sqrts is below threshold.
func (s *Species) PartialWidth(sqrts float64, products []*Species) float64 {
	threshold := 0.0
	for _, p := range products {
		threshold += p.MinMassKinematic()
	}
	if sqrts < threshold {
		return 0
	}
	for _, mode := range s.DecayModes {
		if matchProducts(mode.Products, products) {
			return s.Width * mode.BranchingRatio
		}
	}
	return 0
}

// SpectralFunction returns the relativistic Breit-Wigner spectral function
// of the species evaluated at mass m:
//
//	A(m) = 2/pi * m^2 Gamma / ((m^2 - M0^2)^2 + (m Gamma)^2)
//
// For a stable species (zero width) the spectral function degenerates to a
// delta distribution and this returns 0.
func (s *Species) SpectralFunction(m float64) float64 {
	if s.Width <= 0 {
		return 0
	}
	m2 := m * m
	diff := m2 - s.Mass*s.Mass
	return 2.0 / math.Pi * m2 * s.Width / (diff*diff + m2*s.Width*s.Width)
}

// SampleResonanceMass draws a mass for the resonance from its spectral
// function, conditioned on a stable partner of mass partnerMass and total
// available energy cmsEnergy. Sampling is by rejection against the spectral
// function maximum inside [minMass, cmsEnergy-partnerMass]. The caller must
// have checked that the window is non-empty.
func (s *Species) SampleResonanceMass(partnerMass, cmsEnergy float64, rng RandomSource) float64 {
	lo := s.MinMassKinematic()
	hi := cmsEnergy - partnerMass
	if hi <= lo {
		return lo
	}
	// The spectral function is unimodal with its peak at the pole mass, so
	// the maximum over the window sits at the pole or the nearest edge.
	peak := math.Max(lo, math.Min(hi, s.Mass))
	fMax := s.SpectralFunction(peak)
	if fMax <= 0 {
		return s.Mass
	}
	for i := 0; i < 1000000; i++ {
		m := rng.Uniform(lo, hi)
		if rng.Uniform(0, fMax) < s.SpectralFunction(m) {
			return m
		}
	}
	// Statistically unreachable for any physical width.
	return peak
}

// SampleResonanceMasses draws masses for two unstable species sharing the
// available energy. The first mass is sampled against the partner's
// threshold, the second conditioned on the first.
func (s *Species) SampleResonanceMasses(other *Species, cmsEnergy float64, rng RandomSource) (float64, float64) {
	mA := s.SampleResonanceMass(other.MinMassKinematic(), cmsEnergy, rng)
	mB := other.SampleResonanceMass(mA, cmsEnergy, rng)
	return mA, mB
}

// SpeciesTable is the registry of all species known to a run. Descriptors
// are shared: lookups return pointers into the table.
type SpeciesTable struct {
	Name    string
	species map[PDGCode]*Species
}

// NewSpeciesTable creates an empty species table with the given name.
func NewSpeciesTable(name string) *SpeciesTable {
	return &SpeciesTable{
		Name:    name,
		species: make(map[PDGCode]*Species),
	}
}

// WithSpecies adds species descriptors to the table and returns the table
// for method chaining.
func (t *SpeciesTable) WithSpecies(species ...*Species) *SpeciesTable {
	for _, sp := range species {
		t.species[sp.PDG] = sp
	}
	return t
}

// TryFind retrieves a species descriptor by code.
// Returns the descriptor and a boolean indicating if it was found.
func (t *SpeciesTable) TryFind(code PDGCode) (*Species, bool) {
	sp, ok := t.species[code]
	return sp, ok
}

// All returns all registered species descriptors.
func (t *SpeciesTable) All() []*Species {
	out := make([]*Species, 0, len(t.species))
	for _, sp := range t.species {
		out = append(out, sp)
	}
	return out
}
