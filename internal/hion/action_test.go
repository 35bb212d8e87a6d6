package hion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(seed int64) *Context {
	return NewContext(NewRandomSource(seed), testSpecies())
}

// threePionsAtEnergy builds pi+, pi-, pi0 sharing the given total energy
// equally, at rest relative to each other at the given positions.
func threePionsAtEnergy(t *testing.T, ctx *Context, total float64, positions [3]FourVector) []Particle {
	t.Helper()
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	piMinus := mustFind(t, ctx.Species, PDGPiMinus)
	piZero := mustFind(t, ctx.Species, PDGPiZero)
	return []Particle{
		particleAt(piPlus, FourVector{X0: total / 3}, positions[0]),
		particleAt(piMinus, FourVector{X0: total / 3}, positions[1]),
		particleAt(piZero, FourVector{X0: total / 3}, positions[2]),
	}
}

func TestInteractionPointIsMeanAndIdempotent(t *testing.T) {
	ctx := newTestContext(1)
	in := threePionsAtEnergy(t, ctx, 0.9, [3]FourVector{
		{X0: 1.0, X1: 0.0},
		{X0: 1.0, X1: 3.0},
		{X0: 1.0, X1: 6.0},
	})
	act := NewMultiParticleAction(ctx, in, 0.1)

	point := act.InteractionPoint()
	assert.InDelta(t, 1.0, point.X0, 1e-12)
	assert.InDelta(t, 3.0, point.X1, 1e-12)

	again := act.InteractionPoint()
	assert.Equal(t, point, again, "interaction point must be a pure function of the incoming positions")
}

func TestTimeOfExecution(t *testing.T) {
	ctx := newTestContext(1)
	in := threePionsAtEnergy(t, ctx, 0.9, [3]FourVector{
		{X0: 2.5}, {X0: 3.0}, {X0: 3.5},
	})
	act := NewMultiParticleAction(ctx, in, 0.25)
	assert.InDelta(t, 2.75, act.TimeOfExecution(), 1e-12)
}

func TestPotentialAtInteractionPointAbsentFields(t *testing.T) {
	ctx := newTestContext(1)
	in := threePionsAtEnergy(t, ctx, 0.9, [3]FourVector{{}, {}, {}})
	act := NewMultiParticleAction(ctx, in, 0.1)

	b, i3 := act.PotentialAtInteractionPoint()
	assert.Equal(t, 0.0, b)
	assert.Equal(t, 0.0, i3)
}

func TestPotentialAtInteractionPointLattice(t *testing.T) {
	ctx := newTestContext(1)
	in := threePionsAtEnergy(t, ctx, 0.9, [3]FourVector{{}, {}, {}})
	act := NewMultiParticleAction(ctx, in, 0.1)

	lat := NewRectLattice(ThreeVector{X: -1, Y: -1, Z: -1}, 1.0, [3]int{3, 3, 3})
	lat.SetNode(1, 1, 1, 0.05) // node at the origin
	act.SetPotentials(BaryonicPotential{}, lat, nil)

	b, i3 := act.PotentialAtInteractionPoint()
	assert.InDelta(t, 0.05, b, 1e-12)
	assert.Equal(t, 0.0, i3)
}

func TestPotentialOutsideLatticeDomain(t *testing.T) {
	ctx := newTestContext(1)
	piZero := mustFind(t, ctx.Species, PDGPiZero)
	far := particleAt(piZero, FourVector{X0: 0.3}, FourVector{X1: 100})
	act := NewMultiParticleAction(ctx, []Particle{far}, 0.1)

	lat := NewRectLattice(ThreeVector{X: -1, Y: -1, Z: -1}, 1.0, [3]int{3, 3, 3})
	lat.SetNode(1, 1, 1, 0.05)
	act.SetPotentials(BaryonicPotential{}, lat, nil)

	b, _ := act.PotentialAtInteractionPoint()
	assert.Equal(t, 0.0, b, "point outside the lattice domain contributes nothing")
}

func TestKineticEnergyCMSWithoutPotentials(t *testing.T) {
	ctx := newTestContext(1)
	in := threePionsAtEnergy(t, ctx, 0.78265, [3]FourVector{{}, {}, {}})
	act := NewMultiParticleAction(ctx, in, 0.1)

	assert.InDelta(t, act.SqrtS(), act.KineticEnergyCMS(), 1e-12)
}

func TestKineticEnergyCMSWithBaryonPotential(t *testing.T) {
	ctx := newTestContext(1)
	proton := mustFind(t, ctx.Species, 2212)
	in := []Particle{particleAt(proton, FourVector{X0: proton.Mass}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)

	lat := NewRectLattice(ThreeVector{X: -1, Y: -1, Z: -1}, 1.0, [3]int{3, 3, 3})
	lat.SetNode(1, 1, 1, 0.05)
	act.SetPotentials(BaryonicPotential{}, lat, nil)

	// One incoming baryon, no outgoing particles yet: the full force scale
	// difference is the incoming proton's.
	assert.InDelta(t, proton.Mass+0.05, act.KineticEnergyCMS(), 1e-9)
}

func TestIsValidAndUpdateIncoming(t *testing.T) {
	ctx := newTestContext(1)
	in := threePionsAtEnergy(t, ctx, 0.9, [3]FourVector{{}, {}, {}})

	ps := NewParticles()
	for i := range in {
		in[i] = ps.Insert(in[i])
	}
	act := NewMultiParticleAction(ctx, in, 0.1)
	require.True(t, act.IsValid(ps))

	// Advance one particle in the collection, as propagation would.
	moved := in[1]
	moved.Position = FourVector{X0: 1.0, X1: 0.5}
	require.NoError(t, ps.Update([]Particle{in[1]}, []Particle{moved}, false))
	require.True(t, act.IsValid(ps), "propagation does not invalidate the snapshot")

	require.NoError(t, act.UpdateIncoming(ps))
	assert.InDelta(t, 0.5, act.IncomingParticles()[1].Position.X1, 1e-12)

	// Consume the particle through another process.
	consumed := in[1]
	consumed.History.IDProcess = 99
	consumed.History.CollisionsPerParticle = 1
	require.NoError(t, ps.Update([]Particle{in[1]}, []Particle{consumed}, false))
	assert.False(t, act.IsValid(ps), "a consumed incoming particle invalidates the action")
}

func TestSampleMassesInsufficientEnergy(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	piMinus := mustFind(t, ctx.Species, PDGPiMinus)
	piZero := mustFind(t, ctx.Species, PDGPiZero)
	omega := mustFind(t, ctx.Species, PDGOmega)

	in := []Particle{
		particleAt(piPlus, FourVector{X0: 0.2}, FourVector{}),
		particleAt(piMinus, FourVector{X0: 0.2}, FourVector{}),
	}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{NewParticle(omega), NewParticle(piZero)}

	_, _, err := act.SampleMasses()
	var rfe *ResonanceFormationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &rfe), "expected ResonanceFormationError, got %v", err)
}

func TestSample2BodyPhasespaceClosure(t *testing.T) {
	ctx := newTestContext(3)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	piMinus := mustFind(t, ctx.Species, PDGPiMinus)

	in := []Particle{
		particleAt(piPlus, FourVector{X0: 0.5}, FourVector{}),
		particleAt(piMinus, FourVector{X0: 0.5}, FourVector{}),
	}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{NewParticle(piPlus), NewParticle(piMinus)}

	require.NoError(t, act.Sample2BodyPhasespace())

	out := act.OutgoingParticles()
	tot := out[0].Momentum.Add(out[1].Momentum)
	assert.InDelta(t, 1.0, tot.X0, 1e-9, "total energy in the CM frame")
	assert.InDelta(t, 0.0, tot.ThreeVec().Abs(), 1e-12, "back-to-back momenta")
	assert.InDelta(t, piPlus.Mass, out[0].Momentum.Abs(), 1e-9)
	assert.InDelta(t, piMinus.Mass, out[1].Momentum.Abs(), 1e-9)
}

func TestSample2BodyPhasespaceWrongMultiplicity(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	in := []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{NewParticle(piPlus)}

	err := act.Sample2BodyPhasespace()
	var ipe *InvalidProcessError
	require.Error(t, err)
	assert.True(t, errors.As(err, &ipe))
}

func TestCheckConservationPasses(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	piMinus := mustFind(t, ctx.Species, PDGPiMinus)

	in := []Particle{
		particleAt(piPlus, FourVector{X0: 0.5, X3: 0.1}, FourVector{}),
		particleAt(piMinus, FourVector{X0: 0.5, X3: -0.1}, FourVector{}),
	}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{
		particleAt(piMinus, FourVector{X0: 0.5, X3: 0.1}, FourVector{}),
		particleAt(piPlus, FourVector{X0: 0.5, X3: -0.1}, FourVector{}),
	}

	assert.NoError(t, act.CheckConservation(1))
}

func TestCheckConservationViolation(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	piZero := mustFind(t, ctx.Species, PDGPiZero)

	in := []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{particleAt(piZero, FourVector{X0: 0.5}, FourVector{})}
	act.processType = ProcessTwoToTwo

	err := act.CheckConservation(42)
	var ce *ConservationError
	require.Error(t, err)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, uint32(42), ce.IDProcess)
}

func TestCheckConservationToleratedForStringProcesses(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)

	in := []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{particleAt(piPlus, FourVector{X0: 0.7}, FourVector{})}
	act.processType = ProcessStringSoft

	assert.NoError(t, act.CheckConservation(1), "string processes tolerate approximate conservation")

	act.processType = ProcessStringHard
	assert.NoError(t, act.CheckConservation(1))
}

func TestCheckConservationForcedProcessFatal(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)

	in := []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.outgoing = []Particle{particleAt(piPlus, FourVector{X0: 0.7}, FourVector{})}
	act.processType = ProcessTwoToTwo

	err := act.CheckConservation(IDProcessForced)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forced process")
}

func TestPerformRejectsProcessIDZero(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	in := []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)

	err := act.Perform(NewParticles(), 0)
	require.Error(t, err)
}

func TestPerformElasticKeepsIdentity(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)
	piMinus := mustFind(t, ctx.Species, PDGPiMinus)

	ps := NewParticles()
	a := ps.Insert(particleAt(piPlus, FourVector{X0: 0.5, X3: 0.1}, FourVector{}))
	b := ps.Insert(particleAt(piMinus, FourVector{X0: 0.5, X3: -0.1}, FourVector{}))

	act := NewMultiParticleAction(ctx, []Particle{a, b}, 0.1)
	act.processType = ProcessElastic
	outA, outB := a, b
	outA.Momentum = FourVector{X0: 0.5, X3: -0.1}
	outB.Momentum = FourVector{X0: 0.5, X3: 0.1}
	act.outgoing = []Particle{outA, outB}

	require.NoError(t, act.Perform(ps, 7))

	got, ok := ps.Lookup(a)
	require.True(t, ok, "elastic scattering keeps particle identities")
	assert.InDelta(t, -0.1, got.Momentum.X3, 1e-12)
	assert.Equal(t, uint32(7), got.History.IDProcess)
	assert.Equal(t, 1, got.History.CollisionsPerParticle)
}

func TestPerformWallSkipsHistory(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)

	ps := NewParticles()
	a := ps.Insert(particleAt(piPlus, FourVector{X0: 0.5}, FourVector{}))

	act := NewMultiParticleAction(ctx, []Particle{a}, 0.1)
	act.processType = ProcessWall
	out := a
	out.Position = FourVector{X1: -5.0}
	act.outgoing = []Particle{out}

	require.NoError(t, act.Perform(ps, 7))

	got, ok := ps.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, uint32(0), got.History.IDProcess, "wall crossings leave the history untouched")
	assert.Equal(t, 0, got.History.CollisionsPerParticle)
}

type stubBlocker struct {
	density float64
}

func (b stubBlocker) PhasespaceDensity(pos, mom ThreeVector, particles *Particles, pdg PDGCode, excluded []Particle) float64 {
	return b.density
}

func TestIsPauliBlocked(t *testing.T) {
	ctx := newTestContext(1)
	proton := mustFind(t, ctx.Species, 2212)

	in := []Particle{particleAt(proton, FourVector{X0: proton.Mass}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.processType = ProcessTwoToTwo
	act.outgoing = []Particle{particleAt(proton, FourVector{X0: proton.Mass}, FourVector{})}

	ps := NewParticles()
	assert.True(t, act.IsPauliBlocked(ps, stubBlocker{density: 2.0}),
		"a fully occupied phase-space cell always blocks")
	assert.False(t, act.IsPauliBlocked(ps, stubBlocker{density: -1.0}),
		"an empty phase-space cell never blocks")

	act.processType = ProcessWall
	assert.False(t, act.IsPauliBlocked(ps, stubBlocker{density: 2.0}),
		"wall crossings are never blocked")
}

func TestIsPauliBlockedIgnoresMesons(t *testing.T) {
	ctx := newTestContext(1)
	piPlus := mustFind(t, ctx.Species, PDGPiPlus)

	in := []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.processType = ProcessTwoToTwo
	act.outgoing = []Particle{particleAt(piPlus, FourVector{X0: 0.5}, FourVector{})}

	assert.False(t, act.IsPauliBlocked(NewParticles(), stubBlocker{density: 2.0}))
}
