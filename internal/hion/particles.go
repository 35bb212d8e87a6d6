package hion

import (
	"fmt"
	"sync"
)

// Particles is the authoritative collection of all particles in a system.
// Actions hold copies of subsets for the duration of one resolution step and
// commit their effect through Update. The mutex only serializes collection
// access for callers like the server; the action core itself is
// single-threaded and relies on the IsValid/UpdateIncoming protocol to
// detect stale snapshots.
type Particles struct {
	mu    sync.RWMutex
	parts map[ParticleID]Particle
}

// NewParticles creates an empty particle collection.
func NewParticles() *Particles {
	return &Particles{
		parts: make(map[ParticleID]Particle),
	}
}

// Insert adds a particle to the collection, assigning a fresh ID if it has
// none, and returns the stored copy.
func (ps *Particles) Insert(p Particle) Particle {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if p.ID == "" {
		p.ID = ParticleID(NewRandomID())
	}
	ps.parts[p.ID] = p
	return p
}

// Lookup returns the authoritative copy of a particle by identity.
// Returns the particle and a boolean indicating if it was found.
func (ps *Particles) Lookup(p Particle) (Particle, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	stored, ok := ps.parts[p.ID]
	return stored, ok
}

// IsValid reports whether the given snapshot still matches the collection:
// the particle exists and has not been consumed or re-created by another
// process since the snapshot was taken.
func (ps *Particles) IsValid(p Particle) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	stored, ok := ps.parts[p.ID]
	if !ok {
		return false
	}
	return stored.History.IDProcess == p.History.IDProcess &&
		stored.History.CollisionsPerParticle == p.History.CollisionsPerParticle
}

// Update commits an action's incoming->outgoing replacement. With
// fullReplace the incoming particles are removed and the outgoing inserted
// as new identities. Without it (elastic collisions, wall crossings) the
// outgoing list must pair up with the incoming one and each particle keeps
// its identity, only its properties are updated.
func (ps *Particles) Update(in, out []Particle, fullReplace bool) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if fullReplace {
		for _, p := range in {
			if _, ok := ps.parts[p.ID]; !ok {
				return fmt.Errorf("update: incoming particle %s not in collection", p.ID)
			}
		}
		for _, p := range in {
			delete(ps.parts, p.ID)
		}
		for _, p := range out {
			if p.ID == "" {
				p.ID = ParticleID(NewRandomID())
			}
			ps.parts[p.ID] = p
		}
		return nil
	}

	if len(in) != len(out) {
		return fmt.Errorf("update: in-place update needs matching lists, got %d vs %d",
			len(in), len(out))
	}
	for i, p := range out {
		p.ID = in[i].ID
		if _, ok := ps.parts[p.ID]; !ok {
			return fmt.Errorf("update: incoming particle %s not in collection", p.ID)
		}
		ps.parts[p.ID] = p
	}
	return nil
}

// Size returns the number of particles in the collection.
func (ps *Particles) Size() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.parts)
}

// All returns a snapshot of all particles.
func (ps *Particles) All() []Particle {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	out := make([]Particle, 0, len(ps.parts))
	for _, p := range ps.parts {
		out = append(out, p)
	}
	return out
}
