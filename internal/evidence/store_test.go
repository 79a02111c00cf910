package evidence

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samdwyer/parley/internal/gamedata"
)

func TestStoreAddIsSetLike(t *testing.T) {
	s := NewStore()

	if !s.Add("coin") {
		t.Error("first Add(coin) should report new")
	}
	if s.Add("coin") {
		t.Error("second Add(coin) should report duplicate")
	}
	if s.Add("") {
		t.Error("Add(empty) should be ignored")
	}
	s.Add("bell")

	if s.Count() != 2 {
		t.Errorf("Count() = %d, want 2", s.Count())
	}
	want := []gamedata.EvidenceTag{"coin", "bell"}
	if diff := cmp.Diff(want, s.Tags()); diff != "" {
		t.Errorf("Tags() mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreCountOf(t *testing.T) {
	s := NewStore()
	s.Add("a")
	s.Add("c")

	tests := []struct {
		tags []gamedata.EvidenceTag
		want int
	}{
		{nil, 0},
		{[]gamedata.EvidenceTag{"a", "b"}, 1},
		{[]gamedata.EvidenceTag{"a", "c"}, 2},
		{[]gamedata.EvidenceTag{"a", "a", "a"}, 1},
	}
	for _, tt := range tests {
		if got := s.CountOf(tt.tags); got != tt.want {
			t.Errorf("CountOf(%v) = %d, want %d", tt.tags, got, tt.want)
		}
	}
}

func TestStoreTargetAndReset(t *testing.T) {
	s := NewStore()
	s.SetTarget(2)
	s.AddCard("a", "card_a")

	if s.TargetMet() {
		t.Error("TargetMet() with 1/2 should be false")
	}
	s.AddCard("b", "")
	if !s.TargetMet() {
		t.Error("TargetMet() with 2/2 should be true")
	}
	if s.LastCardID() != "card_a" {
		t.Errorf("LastCardID() = %q, want card_a", s.LastCardID())
	}

	s.Reset()
	if s.Count() != 0 || s.Target() != 0 || s.LastCardID() != "" || s.Has("a") {
		t.Error("Reset() should clear tags, target and card")
	}
	s.SetTarget(-4)
	if s.Target() != 0 {
		t.Errorf("SetTarget(-4) = %d, want 0", s.Target())
	}
}
