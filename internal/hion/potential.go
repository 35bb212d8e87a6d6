package hion

// ScalarField is an optional external mean-field provider: a spatially
// varying scalar potential in GeV. ValueAt reports false when the position
// lies outside the field's domain, which callers treat the same as an
// absent field.
type ScalarField interface {
	ValueAt(r ThreeVector) (float64, bool)
}

// Potential exposes the force scale of a species under the mean-field
// potentials: the baryonic (Skyrme) scale and the symmetry scale factor,
// the latter still to be weighted by the relative isospin projection.
type Potential interface {
	ForceScale(sp *Species) (scaleB, scaleI3 float64)
}

// BaryonicPotential is the default Potential: both scales follow the
// absolute baryon number, so mesons feel no mean field.
type BaryonicPotential struct{}

// ForceScale implements Potential.
func (BaryonicPotential) ForceScale(sp *Species) (float64, float64) {
	b := sp.BaryonNumber
	if b < 0 {
		b = -b
	}
	return float64(b), float64(b)
}

// RectLattice is a ScalarField backed by a rectangular grid of node values
// with uniform spacing. Lookups use the nearest node; positions outside the
// grid report absence.
type RectLattice struct {
	Origin  ThreeVector
	Spacing float64
	Dims    [3]int
	values  []float64
}

// NewRectLattice allocates a lattice with the given origin, node spacing
// and dimensions, all node values zero.
func NewRectLattice(origin ThreeVector, spacing float64, dims [3]int) *RectLattice {
	return &RectLattice{
		Origin:  origin,
		Spacing: spacing,
		Dims:    dims,
		values:  make([]float64, dims[0]*dims[1]*dims[2]),
	}
}

func (l *RectLattice) index(i, j, k int) int {
	return (i*l.Dims[1]+j)*l.Dims[2] + k
}

// SetNode assigns the value at node (i, j, k).
func (l *RectLattice) SetNode(i, j, k int, v float64) {
	l.values[l.index(i, j, k)] = v
}

// ValueAt implements ScalarField with nearest-node lookup.
func (l *RectLattice) ValueAt(r ThreeVector) (float64, bool) {
	if l.Spacing <= 0 {
		return 0, false
	}
	i := int((r.X-l.Origin.X)/l.Spacing + 0.5)
	j := int((r.Y-l.Origin.Y)/l.Spacing + 0.5)
	k := int((r.Z-l.Origin.Z)/l.Spacing + 0.5)
	if i < 0 || i >= l.Dims[0] || j < 0 || j >= l.Dims[1] || k < 0 || k >= l.Dims[2] {
		return 0, false
	}
	return l.values[l.index(i, j, k)], true
}
