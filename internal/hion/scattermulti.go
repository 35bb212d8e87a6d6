package hion

import (
	"fmt"
	"math"
)

// i3Pi is the isospin coupling of the three-pion channel, approximated by
// its value at the omega pole mass.
const i3Pi = 0.07514

// MultiParticleAction resolves fusion-type n->1 processes. It owns a
// channel list built by AddPossibleReactions and reuses the generic
// weighted-channel registry for selection.
type MultiParticleAction struct {
	actionBase
	channels      ChannelList[*CollisionBranch]
	partialWeight float64
}

// NewMultiParticleAction constructs a multi-particle action over the given
// incoming particles. The execution time is the first particle's time plus
// timeIncrement.
func NewMultiParticleAction(ctx *Context, in []Particle, timeIncrement float64) *MultiParticleAction {
	return &MultiParticleAction{
		actionBase: newActionBase(ctx, in, timeIncrement),
	}
}

// AddReaction registers one candidate channel.
func (a *MultiParticleAction) AddReaction(b *CollisionBranch) {
	a.channels.Add(b)
	channelsRegistered.Inc()
	channelWeights.Observe(b.Weight())
}

// AddReactions registers a batch of candidate channels.
func (a *MultiParticleAction) AddReactions(bs ...*CollisionBranch) {
	for _, b := range bs {
		a.AddReaction(b)
	}
}

// TotalWeight returns the summed probability of all registered channels.
func (a *MultiParticleAction) TotalWeight() float64 { return a.channels.Total() }

// PartialWeight returns the probability of the chosen channel, 0 before
// GenerateFinalState.
func (a *MultiParticleAction) PartialWeight() float64 { return a.partialWeight }

// AddPossibleReactions finds all multi-particle reactions the incoming
// particles admit and registers them with their probabilities. Currently
// this is the 3pi -> omega fusion, offered when enabled, exactly three
// pairwise-distinct pion charge states are incoming, and the omega species
// is registered. An absent omega is a configuration choice, not an error,
// and silently disables the channel.
func (a *MultiParticleAction) AddPossibleReactions(dt, cellVol float64, threeToOne bool) {
	if threeToOne && len(a.incoming) == 3 &&
		threeDifferentPions(a.incoming[0], a.incoming[1], a.incoming[2]) {
		typeOmega, ok := a.ctx.Species.TryFind(PDGOmega)
		if ok {
			a.AddReaction(NewCollisionBranch(
				a.ProbabilityThreePiToOne(typeOmega, dt, cellVol),
				ProcessMultiThreePionsToOmega, typeOmega))
		}
	}
}

// ProbabilityThreePiToOne computes the probability of the three incoming
// pions fusing into typeOut within one time step dt inside a spatial cell
// of volume cellVol. The probability scales linearly with dt and inversely
// with the cell volume squared.
func (a *MultiParticleAction) ProbabilityThreePiToOne(typeOut *Species, dt, cellVol float64) float64 {
	e1 := a.incoming[0].Momentum.X0
	e2 := a.incoming[1].Momentum.X0
	e3 := a.incoming[2].Momentum.X0
	sqrts := a.SqrtS()

	gammaDecay := typeOut.PartialWidth(sqrts, []*Species{
		a.incoming[0].Species, a.incoming[1].Species, a.incoming[2].Species})

	spinDeg := float64(typeOut.SpinDegeneracy)
	// Three-body phase-space normalization at the current invariant mass.
	phSp3 := 1.0 / (8 * math.Pi * math.Pi * math.Pi) * 1.0 / (16 * sqrts * sqrts) * i3Pi

	specF := typeOut.SpectralFunction(sqrts)

	return dt / (cellVol * cellVol) * math.Pi / (4.0 * e1 * e2 * e3) *
		gammaDecay / phSp3 * specF * math.Pow(HbarC, 5.0) * spinDeg
}

// GenerateFinalState decides for one of the registered channels and builds
// the outgoing particle state for it. Only the fusion process family is
// implemented; any other process type reaching this point is a contract
// violation.
func (a *MultiParticleAction) GenerateFinalState() error {
	a.ctx.Logger.Debugf("incoming particles: %v", particleNames(a.incoming))

	proc, err := a.channels.Choose(a.ctx.Rand)
	if err != nil {
		return err
	}
	a.processType = proc.Type
	a.outgoing = make([]Particle, len(proc.Products))
	for i, sp := range proc.Products {
		a.outgoing[i] = NewParticle(sp)
	}
	a.partialWeight = proc.Weight()

	a.ctx.Logger.Debugf("chosen channel: %s %v", a.processType, particleNames(a.outgoing))

	switch a.processType {
	case ProcessMultiThreePionsToOmega:
		// n->1 annihilation
		if err := a.annihilation(); err != nil {
			return err
		}
	default:
		return &InvalidProcessError{
			Type:   a.processType,
			Reason: "not implemented by multi-particle actions",
		}
	}

	// The production point of the new particles.
	middlePoint := a.InteractionPoint()
	totVelocity := a.TotalMomentum().Velocity()

	for i := range a.outgoing {
		// Boost back to the computational frame and place the particle at
		// the interaction point.
		a.outgoing[i].BoostMomentum(totVelocity.Neg())
		a.outgoing[i].Position = middlePoint
	}
	return nil
}

// annihilation builds the fusion final state: the single outgoing particle
// at rest in the rest frame of the incoming system, with the full invariant
// mass. Any formation-time offset of the new particle is the caller's
// policy.
func (a *MultiParticleAction) annihilation() error {
	if len(a.outgoing) != 1 {
		return &InvalidProcessError{
			Type:   a.processType,
			Reason: fmt.Sprintf("annihilation with %d particles in final state", len(a.outgoing)),
		}
	}
	a.outgoing[0].Momentum = FourVector{X0: a.TotalMomentum().Abs()}
	a.ctx.Logger.Debugf("momentum of the new particle: %v", a.outgoing[0].Momentum)
	return nil
}

// threeDifferentPions reports whether the three particles are a
// combination of pi+, pi- and pi0: all pions and pairwise species-distinct.
func threeDifferentPions(pa, pb, pc Particle) bool {
	pdgA := pa.Species.PDG
	pdgB := pb.Species.PDG
	pdgC := pc.Species.PDG
	return pdgA.IsPion() && pdgB.IsPion() && pdgC.IsPion() &&
		pdgA != pdgB && pdgB != pdgC && pdgC != pdgA
}

func particleNames(parts []Particle) string {
	out := ""
	for _, p := range parts {
		out += p.Species.Name
	}
	return out
}
