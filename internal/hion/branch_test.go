package hion

import (
	"math"
	"testing"
)

func TestChannelListAdd(t *testing.T) {
	var list ChannelList[*CollisionBranch]

	if list.Total() != 0 {
		t.Errorf("Expected empty list total 0, got %g", list.Total())
	}

	list.Add(NewCollisionBranch(0.25, ProcessElastic))
	list.Add(NewCollisionBranch(0.75, ProcessTwoToTwo))

	if got := list.Total(); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("Expected total 1.0, got %g", got)
	}
	if len(list.Channels()) != 2 {
		t.Errorf("Expected 2 channels, got %d", len(list.Channels()))
	}
}

func TestChannelListAddAll(t *testing.T) {
	var list ChannelList[*CollisionBranch]
	list.AddAll(
		NewCollisionBranch(0.1, ProcessElastic),
		NewCollisionBranch(0.2, ProcessDecay),
		NewCollisionBranch(0.3, ProcessTwoToOne),
	)
	if got := list.Total(); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("Expected total 0.6, got %g", got)
	}
}

func TestChooseEmptyListFails(t *testing.T) {
	var list ChannelList[*CollisionBranch]
	if _, err := list.Choose(NewRandomSource(1)); err == nil {
		t.Error("Expected error choosing from empty list")
	}
}

func TestChooseZeroTotalFails(t *testing.T) {
	var list ChannelList[*CollisionBranch]
	list.Add(NewCollisionBranch(0.0, ProcessElastic))
	if _, err := list.Choose(NewRandomSource(1)); err == nil {
		t.Error("Expected error choosing with zero total weight")
	}
}

// TestChooseWalksInsertionOrder uses scripted draws to pin the cumulative
// walk: with weights 1, 2, 7 a draw below 0.1 picks the first channel, one
// below 0.3 the second, anything above the third.
func TestChooseWalksInsertionOrder(t *testing.T) {
	var list ChannelList[*CollisionBranch]
	first := NewCollisionBranch(1, ProcessElastic)
	second := NewCollisionBranch(2, ProcessDecay)
	third := NewCollisionBranch(7, ProcessTwoToTwo)
	list.AddAll(first, second, third)

	cases := []struct {
		draw float64
		want *CollisionBranch
	}{
		{0.05, first},
		{0.0999, first},
		{0.1, second},
		{0.2999, second},
		{0.3, third},
		{0.9999, third},
	}
	for _, tc := range cases {
		got, err := list.Choose(&scriptedSource{draws: []float64{tc.draw}})
		if err != nil {
			t.Fatalf("Choose failed for draw %g: %v", tc.draw, err)
		}
		if got != tc.want {
			t.Errorf("Draw %g chose %s, expected %s", tc.draw, got.Type, tc.want.Type)
		}
	}
}

// TestChooseFrequencies draws many times and checks the empirical selection
// frequency of each channel converges to weight/total.
func TestChooseFrequencies(t *testing.T) {
	var list ChannelList[*CollisionBranch]
	weights := []float64{1, 2, 7}
	for i, w := range weights {
		list.Add(NewCollisionBranch(w, ProcessType(i+1)))
	}

	rng := NewRandomSource(42)
	const n = 100000
	counts := make(map[*CollisionBranch]int)
	for i := 0; i < n; i++ {
		c, err := list.Choose(rng)
		if err != nil {
			t.Fatalf("Choose failed: %v", err)
		}
		counts[c]++
	}

	for i, c := range list.Channels() {
		want := weights[i] / list.Total()
		got := float64(counts[c]) / n
		if math.Abs(got-want) > 0.01 {
			t.Errorf("Channel %d: frequency %g, expected %g within 0.01", i, got, want)
		}
	}
}
