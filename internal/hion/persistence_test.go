package hion

import (
	"strings"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	table := testSpecies()
	piPlus := mustFind(t, table, PDGPiPlus)

	p := particleAt(piPlus, FourVector{X0: 0.5, X3: 0.2}, FourVector{X0: 1.0, X1: 3.0})
	p.ID = "p-1"
	p.History.CollisionsPerParticle = 2
	p.History.IDProcess = 7
	p.History.ProcessType = ProcessElastic
	p.History.TimeLastCollision = 0.9

	snap := Snapshot{SystemID: "sys-1", Time: 1.5, Particles: SnapshotParticles([]Particle{p})}

	data, err := EncodeSnapshotJSON(snap)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := DecodeSnapshotJSON(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.SystemID != "sys-1" || decoded.Time != 1.5 {
		t.Errorf("Expected system sys-1 at t=1.5, got %s at t=%g", decoded.SystemID, decoded.Time)
	}
	if len(decoded.Particles) != 1 {
		t.Fatalf("Expected 1 particle, got %d", len(decoded.Particles))
	}

	restored, err := RestoreParticle(decoded.Particles[0], table)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.ID != "p-1" {
		t.Errorf("Expected ID p-1, got %s", restored.ID)
	}
	if restored.Species != piPlus {
		t.Error("Expected restored species to resolve against the table")
	}
	if restored.Momentum != p.Momentum || restored.Position != p.Position {
		t.Errorf("Expected kinematics preserved, got %+v / %+v", restored.Momentum, restored.Position)
	}
	if restored.History.IDProcess != 7 || restored.History.ProcessType != ProcessElastic {
		t.Errorf("Expected history preserved, got %+v", restored.History)
	}
}

func TestRestoreParticleUnknownSpecies(t *testing.T) {
	table := testSpecies()
	_, err := RestoreParticle(ParticleSnapshot{ID: "p-1", PDG: 999}, table)
	if err == nil {
		t.Fatal("Expected error for unknown species code")
	}
	if !strings.Contains(err.Error(), "unknown species") {
		t.Errorf("Expected unknown species error, got: %v", err)
	}
}

func TestValidateSnapshotEmptyID(t *testing.T) {
	snap := Snapshot{Particles: []ParticleSnapshot{{PDG: 111}}}
	if err := ValidateSnapshot(snap, nil); err == nil {
		t.Error("Expected error for empty particle ID")
	}
}

func TestValidateSnapshotDuplicateID(t *testing.T) {
	snap := Snapshot{Particles: []ParticleSnapshot{
		{ID: "p-1", PDG: 111},
		{ID: "p-1", PDG: 211},
	}}
	if err := ValidateSnapshot(snap, nil); err == nil {
		t.Error("Expected error for duplicate particle ID")
	}
}

func TestValidateSnapshotUnknownSpecies(t *testing.T) {
	table := testSpecies()
	snap := Snapshot{Particles: []ParticleSnapshot{{ID: "p-1", PDG: 999}}}
	if err := ValidateSnapshot(snap, table); err == nil {
		t.Error("Expected error for species missing from the table")
	}
	if err := ValidateSnapshot(snap, nil); err != nil {
		t.Errorf("Expected species check skipped without a table, got: %v", err)
	}
}
