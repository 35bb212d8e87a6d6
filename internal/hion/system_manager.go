package hion

import (
	"fmt"
	"sync"
)

// SystemID is a unique identifier for a particle system.
type SystemID string

// System is one independent particle system: a particle collection plus
// the simulation clock of the external stepping loop.
type System struct {
	ID        SystemID
	Particles *Particles

	mu   sync.Mutex
	time float64
}

// Time returns the current simulation time of the system.
func (s *System) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

// AdvanceTime moves the simulation clock forward and returns the new time.
func (s *System) AdvanceTime(dt float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.time += dt
	return s.time
}

// Capture takes a snapshot of the system state.
func (s *System) Capture() Snapshot {
	return Snapshot{
		SystemID:  s.ID,
		Time:      s.Time(),
		Particles: SnapshotParticles(s.Particles.All()),
	}
}

// Restore replaces the system state with a snapshot, resolving species
// against the table.
func (s *System) Restore(snapshot Snapshot, table *SpeciesTable) error {
	if err := ValidateSnapshot(snapshot, table); err != nil {
		return err
	}
	parts := NewParticles()
	for _, ps := range snapshot.Particles {
		p, err := RestoreParticle(ps, table)
		if err != nil {
			return err
		}
		parts.Insert(p)
	}
	s.mu.Lock()
	s.time = snapshot.Time
	s.mu.Unlock()
	s.Particles = parts
	return nil
}

// SystemManager manages multiple particle systems, each isolated from the
// others.
type SystemManager struct {
	mu      sync.RWMutex
	systems map[SystemID]*System
	logger  Logger
}

// NewSystemManager creates a new system manager.
func NewSystemManager() *SystemManager {
	return NewSystemManagerWithLogger(NewNoOpLogger())
}

// NewSystemManagerWithLogger creates a system manager with an injected
// logger.
func NewSystemManagerWithLogger(logger Logger) *SystemManager {
	return &SystemManager{
		systems: make(map[SystemID]*System),
		logger:  logger,
	}
}

// CreateSystem creates a new empty system with the given ID.
// Returns an error if a system with that ID already exists.
func (sm *SystemManager) CreateSystem(id SystemID) (*System, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.systems[id]; exists {
		return nil, fmt.Errorf("system with id %s already exists", id)
	}
	sys := &System{ID: id, Particles: NewParticles()}
	sm.systems[id] = sys
	sm.logger.Debugf("created system %s", id)
	return sys, nil
}

// GetSystem retrieves a system by ID.
// Returns the system and a boolean indicating if it was found.
func (sm *SystemManager) GetSystem(id SystemID) (*System, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sys, exists := sm.systems[id]
	return sys, exists
}

// DeleteSystem removes a system by ID.
// Returns an error if the system doesn't exist.
func (sm *SystemManager) DeleteSystem(id SystemID) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, exists := sm.systems[id]; !exists {
		return fmt.Errorf("system with id %s does not exist", id)
	}
	delete(sm.systems, id)
	return nil
}

// ListSystems returns a list of all system IDs.
func (sm *SystemManager) ListSystems() []SystemID {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]SystemID, 0, len(sm.systems))
	for id := range sm.systems {
		ids = append(ids, id)
	}
	return ids
}
