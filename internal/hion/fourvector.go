package hion

import "math"

// ThreeVector is a spatial vector in the computational frame (fm or GeV,
// depending on whether it holds a position or a momentum).
type ThreeVector struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of two three-vectors.
func (v ThreeVector) Add(o ThreeVector) ThreeVector {
	return ThreeVector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Mul returns the vector scaled by s.
func (v ThreeVector) Mul(s float64) ThreeVector {
	return ThreeVector{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns the vector with all components negated.
func (v ThreeVector) Neg() ThreeVector {
	return ThreeVector{-v.X, -v.Y, -v.Z}
}

// Dot returns the scalar product of two three-vectors.
func (v ThreeVector) Dot(o ThreeVector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Sqr returns the squared Euclidean norm.
func (v ThreeVector) Sqr() float64 { return v.Dot(v) }

// Abs returns the Euclidean norm.
func (v ThreeVector) Abs() float64 { return math.Sqrt(v.Sqr()) }

// FourVector is a Minkowski four-vector with metric (+,-,-,-).
// For momenta X0 is the energy, for positions X0 is the time coordinate.
type FourVector struct {
	X0, X1, X2, X3 float64
}

// NewFourVector builds a four-vector from a time-like component and a
// three-vector.
func NewFourVector(x0 float64, v ThreeVector) FourVector {
	return FourVector{x0, v.X, v.Y, v.Z}
}

// Add returns the component-wise sum of two four-vectors.
func (f FourVector) Add(o FourVector) FourVector {
	return FourVector{f.X0 + o.X0, f.X1 + o.X1, f.X2 + o.X2, f.X3 + o.X3}
}

// Sub returns the component-wise difference of two four-vectors.
func (f FourVector) Sub(o FourVector) FourVector {
	return FourVector{f.X0 - o.X0, f.X1 - o.X1, f.X2 - o.X2, f.X3 - o.X3}
}

// Div returns the four-vector with all components divided by s.
func (f FourVector) Div(s float64) FourVector {
	return FourVector{f.X0 / s, f.X1 / s, f.X2 / s, f.X3 / s}
}

// ThreeVec returns the spatial part of the four-vector.
func (f FourVector) ThreeVec() ThreeVector {
	return ThreeVector{f.X1, f.X2, f.X3}
}

// Sqr returns the Minkowski square x0^2 - |x|^2. For an on-shell momentum
// this is the squared invariant mass.
func (f FourVector) Sqr() float64 {
	return f.X0*f.X0 - f.X1*f.X1 - f.X2*f.X2 - f.X3*f.X3
}

// Abs returns sqrt(Sqr()). Small negative squares from floating-point
// cancellation are clamped to zero.
func (f FourVector) Abs() float64 {
	s := f.Sqr()
	if s < 0 {
		return 0
	}
	return math.Sqrt(s)
}

// Velocity returns the three-velocity x/x0 of an on-shell momentum.
func (f FourVector) Velocity() ThreeVector {
	return ThreeVector{f.X1 / f.X0, f.X2 / f.X0, f.X3 / f.X0}
}

// LorentzBoost applies a pure boost with velocity v to the four-vector.
// Boosting the momentum of a particle at rest by -u gives a particle moving
// with velocity u, so undoing a center-of-mass boost is LorentzBoost(u.Neg())
// with u the velocity of the total momentum.
func (f FourVector) LorentzBoost(v ThreeVector) FourVector {
	vSqr := v.Sqr()
	if vSqr >= 1 {
		// Unphysical velocity; the caller has already produced garbage.
		return f
	}
	gamma := 1.0 / math.Sqrt(1.0-vSqr)
	r := f.ThreeVec()
	vr := v.Dot(r)
	// (gamma-1)/v^2 written as gamma^2/(gamma+1) to stay finite as v -> 0.
	spatial := r.Add(v.Mul(gamma*gamma/(gamma+1.0)*vr - gamma*f.X0))
	return NewFourVector(gamma*(f.X0-vr), spatial)
}
