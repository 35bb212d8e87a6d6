package hion

import (
	"fmt"
	"strings"
)

// QuantumNumbers is a snapshot of the additively conserved charges of a
// particle list. Two snapshots taken before and after an action must agree
// within the physics tolerance for the action to be conserving.
type QuantumNumbers struct {
	Momentum     FourVector
	Charge       int
	Isospin3     int // twice the isospin projection
	Strangeness  int
	BaryonNumber int
}

// NewQuantumNumbers computes the conserved charges of a particle list.
func NewQuantumNumbers(particles []Particle) QuantumNumbers {
	var qn QuantumNumbers
	for _, p := range particles {
		qn.Momentum = qn.Momentum.Add(p.Momentum)
		qn.Charge += p.Species.Charge
		qn.Isospin3 += p.Species.Isospin3
		qn.Strangeness += p.Species.Strangeness
		qn.BaryonNumber += p.Species.BaryonNumber
	}
	return qn
}

// EqualWithin reports whether two ledgers agree: exactly on the discrete
// charges, within the physics tolerance on each momentum component.
func (qn QuantumNumbers) EqualWithin(other QuantumNumbers) bool {
	return qn.Charge == other.Charge &&
		qn.Isospin3 == other.Isospin3 &&
		qn.Strangeness == other.Strangeness &&
		qn.BaryonNumber == other.BaryonNumber &&
		AlmostEqualPhysics(qn.Momentum.X0, other.Momentum.X0) &&
		AlmostEqualPhysics(qn.Momentum.X1, other.Momentum.X1) &&
		AlmostEqualPhysics(qn.Momentum.X2, other.Momentum.X2) &&
		AlmostEqualPhysics(qn.Momentum.X3, other.Momentum.X3)
}

// ReportDeviations builds a human-readable description of every quantity on
// which the two ledgers disagree. Empty when they agree.
func (qn QuantumNumbers) ReportDeviations(after QuantumNumbers) string {
	var b strings.Builder
	reportInt := func(name string, before, now int) {
		if before != now {
			fmt.Fprintf(&b, "%s: %d before vs. %d after\n", name, before, now)
		}
	}
	mom := [4]struct {
		name          string
		before, after float64
	}{
		{"E", qn.Momentum.X0, after.Momentum.X0},
		{"px", qn.Momentum.X1, after.Momentum.X1},
		{"py", qn.Momentum.X2, after.Momentum.X2},
		{"pz", qn.Momentum.X3, after.Momentum.X3},
	}
	for _, c := range mom {
		if !AlmostEqualPhysics(c.before, c.after) {
			fmt.Fprintf(&b, "%s: %g before vs. %g after (Delta = %g)\n",
				c.name, c.before, c.after, c.after-c.before)
		}
	}
	reportInt("charge", qn.Charge, after.Charge)
	reportInt("isospin3", qn.Isospin3, after.Isospin3)
	reportInt("strangeness", qn.Strangeness, after.Strangeness)
	reportInt("baryon number", qn.BaryonNumber, after.BaryonNumber)
	return b.String()
}
