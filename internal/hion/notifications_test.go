package hion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockNotifier records received events and can be told to fail.
type mockNotifier struct {
	id     string
	mu     sync.Mutex
	events []CollisionEvent
	fails  int
	closed bool
}

func (m *mockNotifier) ID() string   { return m.id }
func (m *mockNotifier) Type() string { return "mock" }

func (m *mockNotifier) Notify(ctx context.Context, event CollisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails > 0 {
		m.fails--
		return fmt.Errorf("transient failure")
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockNotifier) received() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for condition")
}

func TestNotificationManagerRegister(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.RegisterNotifier(&mockNotifier{id: "a"}); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}
	if err := nm.RegisterNotifier(&mockNotifier{id: "a"}); err == nil {
		t.Error("Expected error registering duplicate notifier ID")
	}
	if err := nm.RegisterNotifier(&mockNotifier{id: ""}); err == nil {
		t.Error("Expected error registering notifier with empty ID")
	}
	if err := nm.RegisterNotifier(nil); err == nil {
		t.Error("Expected error registering nil notifier")
	}
	if got := len(nm.ListNotifiers()); got != 1 {
		t.Errorf("Expected 1 notifier, got %d", got)
	}
}

func TestNotificationManagerUnregister(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	n := &mockNotifier{id: "a"}
	if err := nm.RegisterNotifier(n); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}
	if err := nm.UnregisterNotifier("a"); err != nil {
		t.Errorf("UnregisterNotifier failed: %v", err)
	}
	if !n.closed {
		t.Error("Expected notifier to be closed on unregister")
	}
	if err := nm.UnregisterNotifier("a"); err == nil {
		t.Error("Expected error unregistering unknown notifier")
	}
}

func TestNotificationManagerBroadcast(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	a := &mockNotifier{id: "a"}
	b := &mockNotifier{id: "b"}
	if err := nm.RegisterNotifier(a); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}
	if err := nm.RegisterNotifier(b); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}

	nm.Broadcast(CollisionEvent{SystemID: "sys-1", IDProcess: 5})

	waitFor(t, func() bool { return a.received() == 1 && b.received() == 1 })
}

func TestNotificationManagerRetries(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	// Fails twice, then succeeds within the retry budget.
	n := &mockNotifier{id: "flaky", fails: 2}
	if err := nm.RegisterNotifier(n); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}

	nm.Enqueue(CollisionEvent{IDProcess: 1}, []string{"flaky"})

	waitFor(t, func() bool { return n.received() == 1 })
}

func TestNotificationManagerCloseIdempotent(t *testing.T) {
	nm := NewNotificationManager()
	n := &mockNotifier{id: "a"}
	if err := nm.RegisterNotifier(n); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}

	if err := nm.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if !n.closed {
		t.Error("Expected notifier closed on manager close")
	}
	if err := nm.Close(); err != nil {
		t.Errorf("Expected second Close to be a no-op, got: %v", err)
	}

	// Events enqueued after close are silently dropped.
	nm.Enqueue(CollisionEvent{IDProcess: 1}, []string{"a"})
}

func TestNewCollisionEvent(t *testing.T) {
	ctx := NewContext(NewRandomSource(1), testSpecies())
	omega, _ := ctx.Species.TryFind(PDGOmega)

	in := []Particle{
		particleAt(mustFind(t, ctx.Species, PDGPiPlus), FourVector{X0: omega.Mass / 3}, FourVector{}),
		particleAt(mustFind(t, ctx.Species, PDGPiMinus), FourVector{X0: omega.Mass / 3}, FourVector{}),
		particleAt(mustFind(t, ctx.Species, PDGPiZero), FourVector{X0: omega.Mass / 3}, FourVector{}),
	}
	act := NewMultiParticleAction(ctx, in, 0.1)
	act.AddPossibleReactions(0.1, 5.0, true)
	if err := act.GenerateFinalState(); err != nil {
		t.Fatalf("GenerateFinalState failed: %v", err)
	}

	event := NewCollisionEvent("sys-1", act, 12)
	if event.SystemID != "sys-1" || event.IDProcess != 12 {
		t.Errorf("Expected sys-1/12, got %s/%d", event.SystemID, event.IDProcess)
	}
	if event.ProcessType != "three-pions-to-omega" {
		t.Errorf("Expected process type three-pions-to-omega, got %s", event.ProcessType)
	}
	if len(event.Incoming) != 3 || len(event.Outgoing) != 1 {
		t.Errorf("Expected 3 incoming / 1 outgoing, got %d / %d",
			len(event.Incoming), len(event.Outgoing))
	}
	if event.TotalWeight <= 0 || event.PartialWeight != event.TotalWeight {
		t.Errorf("Expected positive matching weights, got %g / %g",
			event.TotalWeight, event.PartialWeight)
	}

	data, err := event.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	var decoded CollisionEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.ProcessType != event.ProcessType {
		t.Errorf("Expected process type preserved, got %s", decoded.ProcessType)
	}
}
