package hion

import "math"

// ParticleID is a unique identifier for a particle instance.
type ParticleID string

// HistoryData records how a particle came to be: its collision counter, the
// process that produced it and when, and the particles it came from.
type HistoryData struct {
	CollisionsPerParticle int
	IDProcess             uint32
	ProcessType           ProcessType
	TimeLastCollision     float64
	ParentIDs             []ParticleID
}

// Particle is one particle instance in the computational frame. Identity is
// the ID; the species descriptor is shared and never mutated. Momentum and
// position are mutated in place during kinematics sampling, the history
// during commit.
type Particle struct {
	ID       ParticleID
	Species  *Species
	Momentum FourVector
	Position FourVector
	History  HistoryData
}

// NewParticle creates a particle of the given species with a fresh random
// ID and zero momentum and position.
func NewParticle(sp *Species) Particle {
	return Particle{
		ID:      ParticleID(NewRandomID()),
		Species: sp,
	}
}

// IsPion reports whether the particle is one of the pion charge states.
func (p *Particle) IsPion() bool { return p.Species.PDG.IsPion() }

// IsBaryon reports whether the particle carries baryon number.
func (p *Particle) IsBaryon() bool { return p.Species.BaryonNumber != 0 }

// EffectiveMass returns the invariant mass of the particle's current
// four-momentum, which can differ from the pole mass for resonances.
func (p *Particle) EffectiveMass() float64 { return p.Momentum.Abs() }

// SetMomentum puts the particle on shell with the given mass and
// three-momentum.
func (p *Particle) SetMomentum(mass float64, mom ThreeVector) {
	p.Momentum = NewFourVector(math.Sqrt(mass*mass+mom.Sqr()), mom)
}

// BoostMomentum boosts the particle momentum by velocity v. The position is
// untouched; boosting positions is the caller's business.
func (p *Particle) BoostMomentum(v ThreeVector) {
	p.Momentum = p.Momentum.LorentzBoost(v)
}

// SetHistory stamps the interaction history after a collision: the new
// collision count, the id and type of the owning process, the time of
// execution, and the identities of the incoming particles.
func (p *Particle) SetHistory(collisions int, idProcess uint32, pt ProcessType, time float64, parents []Particle) {
	ids := make([]ParticleID, len(parents))
	for i, parent := range parents {
		ids[i] = parent.ID
	}
	p.History = HistoryData{
		CollisionsPerParticle: collisions,
		IDProcess:             idProcess,
		ProcessType:           pt,
		TimeLastCollision:     time,
		ParentIDs:             ids,
	}
}
