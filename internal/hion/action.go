package hion

import "fmt"

// Action is one candidate elementary process: a set of incoming particles
// sampled at a common spacetime point together with everything needed to
// decide whether and how they interact. Lifecycle: construct, populate
// channels, GenerateFinalState, then either Perform against the global
// collection or discard. An action that is never performed has no effect.
//
// Concrete process families (multi-particle fusion, binary scatter, decay)
// implement this interface by embedding actionBase.
type Action interface {
	IncomingParticles() []Particle
	OutgoingParticles() []Particle
	TimeOfExecution() float64
	ProcessType() ProcessType
	TotalWeight() float64
	PartialWeight() float64

	// IsValid reports whether every incoming particle still exists
	// unmodified in the collection. Callers must re-check immediately
	// before Perform and discard the action on false.
	IsValid(particles *Particles) bool
	UpdateIncoming(particles *Particles) error
	GenerateFinalState() error
	Perform(particles *Particles, idProcess uint32) error
}

// PauliBlocker estimates the phase-space density of baryons around a given
// position and momentum, excluding the listed particles.
type PauliBlocker interface {
	PhasespaceDensity(pos, mom ThreeVector, particles *Particles, pdg PDGCode, excluded []Particle) float64
}

// actionBase carries the state and operations shared by all action
// variants.
type actionBase struct {
	ctx             *Context
	incoming        []Particle
	outgoing        []Particle
	timeOfExecution float64
	processType     ProcessType

	// Optional mean-field collaborators; nil means "not configured".
	pot     Potential
	bField  ScalarField
	i3Field ScalarField
}

// newActionBase builds the shared action state. The execution time is the
// first incoming particle's time plus the given increment.
func newActionBase(ctx *Context, in []Particle, timeIncrement float64) actionBase {
	return actionBase{
		ctx:             ctx,
		incoming:        in,
		timeOfExecution: timeIncrement + in[0].Position.X0,
	}
}

// SetPotentials wires the optional mean-field collaborators into the
// action. Any of them may be nil.
func (a *actionBase) SetPotentials(pot Potential, bField, i3Field ScalarField) {
	a.pot = pot
	a.bField = bField
	a.i3Field = i3Field
}

func (a *actionBase) IncomingParticles() []Particle { return a.incoming }
func (a *actionBase) OutgoingParticles() []Particle { return a.outgoing }
func (a *actionBase) TimeOfExecution() float64      { return a.timeOfExecution }
func (a *actionBase) ProcessType() ProcessType      { return a.processType }

// IsValid reports whether all incoming particles are still present
// unmodified in the collection, guarding against stale actions after an
// earlier action already consumed one of the same particles.
func (a *actionBase) IsValid(particles *Particles) bool {
	for _, p := range a.incoming {
		if !particles.IsValid(p) {
			return false
		}
	}
	return true
}

// UpdateIncoming refreshes each incoming snapshot from the authoritative
// copy; positions and momenta may have advanced between scheduling and
// execution.
func (a *actionBase) UpdateIncoming(particles *Particles) error {
	for i, p := range a.incoming {
		stored, ok := particles.Lookup(p)
		if !ok {
			return fmt.Errorf("update incoming: particle %s no longer in collection", p.ID)
		}
		a.incoming[i] = stored
	}
	return nil
}

// InteractionPoint estimates the interaction point in the computational
// frame as the arithmetic mean of the incoming positions. Pure function of
// the incoming particles.
func (a *actionBase) InteractionPoint() FourVector {
	var point FourVector
	for _, p := range a.incoming {
		point = point.Add(p.Position)
	}
	return point.Div(float64(len(a.incoming)))
}

// PotentialAtInteractionPoint queries the baryon and isospin mean fields at
// the interaction point. A field that is absent, or whose domain does not
// contain the point, contributes 0.
func (a *actionBase) PotentialAtInteractionPoint() (float64, float64) {
	r := a.InteractionPoint().ThreeVec()
	bPot, i3Pot := 0.0, 0.0
	if a.bField != nil {
		if v, ok := a.bField.ValueAt(r); ok {
			bPot = v
		}
	}
	if a.i3Field != nil {
		if v, ok := a.i3Field.ValueAt(r); ok {
			i3Pot = v
		}
	}
	return bPot, i3Pot
}

// TotalMomentum returns the summed four-momentum of the incoming particles.
func (a *actionBase) TotalMomentum() FourVector {
	var tot FourVector
	for _, p := range a.incoming {
		tot = tot.Add(p.Momentum)
	}
	return tot
}

// SqrtS returns the invariant mass of the incoming system.
func (a *actionBase) SqrtS() float64 { return a.TotalMomentum().Abs() }

// forceScale returns the potential force scales of a species, (0, 0) when
// no potential is configured.
func (a *actionBase) forceScale(sp *Species) (float64, float64) {
	if a.pot == nil {
		return 0, 0
	}
	return a.pot.ForceScale(sp)
}

// KineticEnergyCMS returns the total center-of-mass energy available for
// the outgoing kinematics: sqrt(s) shifted by the difference of the
// field-weighted force scales between incoming and outgoing species at the
// interaction point. This lets the mean fields move the energy budget
// without re-deriving field gradients per particle.
func (a *actionBase) KineticEnergyCMS() float64 {
	// scaleB/scaleI3 accumulate the difference of the total force scales of
	// the baryonic and symmetry potentials between initial and final state.
	scaleB, scaleI3 := 0.0, 0.0
	for _, p := range a.incoming {
		sB, sI3 := a.forceScale(p.Species)
		scaleB += sB
		scaleI3 += sI3 * p.Species.Isospin3Rel()
	}
	for _, p := range a.outgoing {
		sB, sI3 := a.forceScale(p.Species)
		scaleB -= sB
		scaleI3 -= sI3 * p.Species.Isospin3Rel()
	}
	bPot, i3Pot := a.PotentialAtInteractionPoint()
	return a.SqrtS() + bPot*scaleB + i3Pot*scaleI3
}

// SampleMasses samples masses for a two-particle final state. Stable
// species keep their pole mass; resonances are sampled from their spectral
// function conditioned on the partner mass and the available energy.
func (a *actionBase) SampleMasses() (float64, float64, error) {
	tA := a.outgoing[0].Species
	tB := a.outgoing[1].Species
	mA, mB := tA.Mass, tB.Mass

	cmsKinEnergy := a.KineticEnergyCMS()

	threshold := tA.MinMassKinematic() + tB.MinMassKinematic()
	if cmsKinEnergy < threshold {
		reaction := ""
		for _, p := range a.incoming {
			reaction += p.Species.Name
		}
		return 0, 0, &ResonanceFormationError{
			Reaction:  reaction + "->" + tA.Name + tB.Name,
			Available: cmsKinEnergy,
			Threshold: threshold,
		}
	}

	switch {
	case !tA.Stable && tB.Stable:
		mA = tA.SampleResonanceMass(tB.Mass, cmsKinEnergy, a.ctx.Rand)
	case !tB.Stable && tA.Stable:
		mB = tB.SampleResonanceMass(tA.Mass, cmsKinEnergy, a.ctx.Rand)
	case !tA.Stable && !tB.Stable:
		mA, mB = tA.SampleResonanceMasses(tB, cmsKinEnergy, a.ctx.Rand)
	}
	return mA, mB, nil
}

// SampleAngles draws an isotropic direction and assigns back-to-back
// momenta of magnitude pCM to the two outgoing particles, in the
// center-of-mass frame.
func (a *actionBase) SampleAngles(mA, mB float64) {
	cmsKinEnergy := a.KineticEnergyCMS()
	pcm := PCM(cmsKinEnergy, mA, mB)
	if !(pcm > 0.0) {
		a.ctx.Logger.Warnf("radial momentum %g for %s, Ektot %g m_a %g m_b %g",
			pcm, a.outgoing[0].Species.Name, cmsKinEnergy, mA, mB)
	}
	var phitheta Angles
	phitheta.DistributeIsotropically(a.ctx.Rand)
	dir := phitheta.ThreeVec()

	a.outgoing[0].SetMomentum(mA, dir.Mul(pcm))
	a.outgoing[1].SetMomentum(mB, dir.Mul(-pcm))
}

// Sample2BodyPhasespace composes mass and angle sampling for exactly two
// outgoing particles. Masses are fixed first so that pCM is fixed before
// the angles are drawn.
func (a *actionBase) Sample2BodyPhasespace() error {
	if len(a.outgoing) != 2 {
		return &InvalidProcessError{
			Type:   a.processType,
			Reason: fmt.Sprintf("two-body phase space with %d outgoing particles", len(a.outgoing)),
		}
	}
	mA, mB, err := a.SampleMasses()
	if err != nil {
		return err
	}
	a.SampleAngles(mA, mB)
	return nil
}

// CheckConservation verifies the quantum-number ledgers before and after
// the action. A mismatch is always logged with the full deviation report.
// String-fragmentation processes are known not to conserve energy-momentum
// exactly and continue; everything else, and in particular the forced
// process id, fails hard.
func (a *actionBase) CheckConservation(idProcess uint32) error {
	before := NewQuantumNumbers(a.incoming)
	after := NewQuantumNumbers(a.outgoing)
	if before.EqualWithin(after) {
		return nil
	}

	names := ""
	for _, p := range a.incoming {
		names += p.Species.Name
	}
	names += " vs. "
	for _, p := range a.outgoing {
		names += p.Species.Name
	}
	report := before.ReportDeviations(after)
	a.ctx.Logger.Errorf("%s\n%s", names, report)
	conservationViolations.WithLabelValues(a.processType.String()).Inc()

	if a.processType.isStringProcess() {
		return nil
	}
	return &ConservationError{IDProcess: idProcess, Report: report}
}

// IsPauliBlocked reports whether any outgoing baryon lands in an occupied
// phase-space cell. Wall-crossing actions are never blocked: a blocked wall
// crossing would let the particle propagate straight out of the box.
func (a *actionBase) IsPauliBlocked(particles *Particles, blocker PauliBlocker) bool {
	if a.processType == ProcessWall {
		return false
	}
	for _, p := range a.outgoing {
		if !p.IsBaryon() {
			continue
		}
		f := blocker.PhasespaceDensity(p.Position.ThreeVec(), p.Momentum.ThreeVec(),
			particles, p.Species.PDG, a.incoming)
		if f > a.ctx.Rand.Uniform(0, 1) {
			a.ctx.Logger.Debugf("action pauli-blocked with f = %g", f)
			return true
		}
	}
	return false
}

// Perform commits the incoming->outgoing replacement into the collection.
// Elastic collisions and wall crossings update particles in place and keep
// their identities; everything else removes and re-inserts. The
// conservation check runs unless mean-field potentials are active, in which
// case the potential rescaling of the outgoing kinetic energy is a
// tolerated deviation.
func (a *actionBase) Perform(particles *Particles, idProcess uint32) error {
	if idProcess == 0 {
		return fmt.Errorf("perform: process id 0 is reserved for \"no process\"")
	}

	if a.processType != ProcessWall {
		for i := range a.outgoing {
			p := &a.outgoing[i]
			p.SetHistory(p.History.CollisionsPerParticle+1, idProcess,
				a.processType, a.timeOfExecution, a.incoming)
		}
	}

	fullReplace := a.processType != ProcessElastic && a.processType != ProcessWall
	if err := particles.Update(a.incoming, a.outgoing, fullReplace); err != nil {
		return err
	}
	a.ctx.Logger.Debugf("particle map now has %d elements", particles.Size())
	actionsPerformed.WithLabelValues(a.processType.String()).Inc()

	if a.bField == nil && a.i3Field == nil {
		return a.CheckConservation(idProcess)
	}
	return nil
}
