package hion

import "math"

// Physical and numerical constants, in GeV/fm natural units.
const (
	// HbarC converts between GeV and 1/fm.
	HbarC = 0.197327

	// reallySmall is the tolerance for strict floating-point comparisons.
	reallySmall = 1.0e-16

	// smallNumber is the looser tolerance for physics checks such as
	// energy-momentum conservation.
	smallNumber = 1.0e-4
)

// AlmostEqual checks two numbers for relative approximate equality with the
// strict tolerance.
func AlmostEqual(x, y float64) bool {
	d := math.Abs(x - y)
	return d <= reallySmall ||
		d <= 0.5*reallySmall*(math.Abs(x)+math.Abs(y))
}

// AlmostEqualPhysics is AlmostEqual with the physics tolerance, which is
// enough precision for checks like energy-momentum conservation.
func AlmostEqualPhysics(x, y float64) bool {
	d := math.Abs(x - y)
	return d <= smallNumber ||
		d <= 0.5*smallNumber*(math.Abs(x)+math.Abs(y))
}

// PCM returns the magnitude of the three-momentum of either particle in the
// rest frame of a two-body system with total energy sqrts and masses mA, mB.
// Below threshold the result is 0.
func PCM(sqrts, mA, mB float64) float64 {
	s := sqrts * sqrts
	num := (s - (mA+mB)*(mA+mB)) * (s - (mA-mB)*(mA-mB))
	if num <= 0 {
		return 0
	}
	return math.Sqrt(num / (4.0 * s))
}

// Angles holds a spatial direction as an azimuthal angle and the cosine of
// the polar angle. The cosine is stored directly since that is what every
// consumer needs.
type Angles struct {
	phi      float64
	costheta float64
}

// DistributeIsotropically draws a new direction uniformly on the unit
// sphere: phi uniform in [0, 2pi), cos(theta) uniform in [-1, 1]. It
// consumes exactly two draws from rng, phi first.
func (a *Angles) DistributeIsotropically(rng RandomSource) {
	a.phi = rng.Uniform(0, 2.0*math.Pi)
	a.costheta = rng.Uniform(-1.0, 1.0)
}

// SetPhi sets the azimuthal angle, normalized into [0, 2pi).
func (a *Angles) SetPhi(phi float64) {
	if phi < 0 || phi >= 2.0*math.Pi {
		phi -= 2.0 * math.Pi * math.Floor(phi/(2.0*math.Pi))
	}
	a.phi = phi
}

// SetCosTheta sets the cosine of the polar angle. Values outside [-1, 1]
// are clamped; they can only come from rounding in upstream arithmetic.
func (a *Angles) SetCosTheta(c float64) {
	a.costheta = math.Max(-1.0, math.Min(1.0, c))
}

// Phi returns the azimuthal angle.
func (a *Angles) Phi() float64 { return a.phi }

// CosTheta returns the cosine of the polar angle.
func (a *Angles) CosTheta() float64 { return a.costheta }

// SinTheta returns sqrt(1 - cos^2 theta).
func (a *Angles) SinTheta() float64 {
	return math.Sqrt(1.0 - a.costheta*a.costheta)
}

// ThreeVec returns the unit vector pointing along the stored direction.
func (a *Angles) ThreeVec() ThreeVector {
	return ThreeVector{
		X: a.SinTheta() * math.Cos(a.phi),
		Y: a.SinTheta() * math.Sin(a.phi),
		Z: a.costheta,
	}
}
