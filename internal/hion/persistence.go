package hion

import (
	"encoding/json"
	"fmt"
)

// ParticleSnapshot is the serializable form of a particle. The species is
// referenced by PDG code and re-resolved against a species table when the
// snapshot is restored. Four-vectors are stored as [x0, x1, x2, x3].
type ParticleSnapshot struct {
	ID       ParticleID `json:"id"`
	PDG      int        `json:"pdg"`
	Momentum [4]float64 `json:"momentum"`
	Position [4]float64 `json:"position"`

	Collisions        int     `json:"collisions,omitempty"`
	IDProcess         uint32  `json:"id_process,omitempty"`
	ProcessType       int     `json:"process_type,omitempty"`
	TimeLastCollision float64 `json:"time_last_collision,omitempty"`
}

// Snapshot represents a point-in-time capture of a particle system's state.
type Snapshot struct {
	SystemID  SystemID           `json:"system_id"`
	Time      float64            `json:"time"`
	Particles []ParticleSnapshot `json:"particles"`
}

func fourToArray(f FourVector) [4]float64 {
	return [4]float64{f.X0, f.X1, f.X2, f.X3}
}

func arrayToFour(a [4]float64) FourVector {
	return FourVector{a[0], a[1], a[2], a[3]}
}

// SnapshotParticle converts a particle to its serializable form.
func SnapshotParticle(p Particle) ParticleSnapshot {
	return ParticleSnapshot{
		ID:                p.ID,
		PDG:               int(p.Species.PDG),
		Momentum:          fourToArray(p.Momentum),
		Position:          fourToArray(p.Position),
		Collisions:        p.History.CollisionsPerParticle,
		IDProcess:         p.History.IDProcess,
		ProcessType:       int(p.History.ProcessType),
		TimeLastCollision: p.History.TimeLastCollision,
	}
}

// SnapshotParticles converts a particle list to its serializable form.
func SnapshotParticles(parts []Particle) []ParticleSnapshot {
	out := make([]ParticleSnapshot, len(parts))
	for i, p := range parts {
		out[i] = SnapshotParticle(p)
	}
	return out
}

// RestoreParticle converts a snapshot back into a particle, resolving the
// species against the table.
func RestoreParticle(ps ParticleSnapshot, table *SpeciesTable) (Particle, error) {
	sp, ok := table.TryFind(PDGCode(ps.PDG))
	if !ok {
		return Particle{}, fmt.Errorf("particle %s has unknown species code %d", ps.ID, ps.PDG)
	}
	return Particle{
		ID:       ps.ID,
		Species:  sp,
		Momentum: arrayToFour(ps.Momentum),
		Position: arrayToFour(ps.Position),
		History: HistoryData{
			CollisionsPerParticle: ps.Collisions,
			IDProcess:             ps.IDProcess,
			ProcessType:           ProcessType(ps.ProcessType),
			TimeLastCollision:     ps.TimeLastCollision,
		},
	}, nil
}

// ValidateSnapshot performs validation checks on a snapshot.
// It verifies that:
//   - All particle IDs are non-empty and unique
//   - All species codes exist in the provided table (if table is not nil)
//
// If table is nil, only ID validation is performed.
func ValidateSnapshot(snapshot Snapshot, table *SpeciesTable) error {
	seenIDs := make(map[ParticleID]struct{})

	for i, ps := range snapshot.Particles {
		if ps.ID == "" {
			return fmt.Errorf("particle at index %d has empty ID", i)
		}
		if _, exists := seenIDs[ps.ID]; exists {
			return fmt.Errorf("duplicate particle ID: %s", ps.ID)
		}
		seenIDs[ps.ID] = struct{}{}

		if table != nil {
			if _, exists := table.TryFind(PDGCode(ps.PDG)); !exists {
				return fmt.Errorf("particle %s has invalid species code: %d (not found in table)", ps.ID, ps.PDG)
			}
		}
	}
	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON format.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON format.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
