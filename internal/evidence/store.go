// Package evidence records which evidence tags have been collected during a case.
package evidence

import "github.com/samdwyer/parley/internal/gamedata"

// Store is the set of collected evidence tags. Tags are never removed
// within a case; Reset is called only when a new case starts.
type Store struct {
	tags       map[gamedata.EvidenceTag]struct{}
	order      []gamedata.EvidenceTag
	target     int
	lastCardID string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tags: make(map[gamedata.EvidenceTag]struct{})}
}

// Add records tag and reports whether it was new.
func (s *Store) Add(tag gamedata.EvidenceTag) bool {
	if tag == "" {
		return false
	}
	if _, ok := s.tags[tag]; ok {
		return false
	}
	s.tags[tag] = struct{}{}
	s.order = append(s.order, tag)
	return true
}

// AddCard records tag along with the evidence card it came from.
func (s *Store) AddCard(tag gamedata.EvidenceTag, cardID string) bool {
	if !s.Add(tag) {
		return false
	}
	if cardID != "" {
		s.lastCardID = cardID
	}
	return true
}

// Has reports whether tag has been collected.
func (s *Store) Has(tag gamedata.EvidenceTag) bool {
	_, ok := s.tags[tag]
	return ok
}

// Count returns the number of collected tags.
func (s *Store) Count() int {
	return len(s.order)
}

// CountOf returns how many of tags have been collected. Duplicates in tags count once.
func (s *Store) CountOf(tags []gamedata.EvidenceTag) int {
	seen := make(map[gamedata.EvidenceTag]struct{}, len(tags))
	n := 0
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if s.Has(tag) {
			n++
		}
	}
	return n
}

// Tags returns the collected tags in collection order.
func (s *Store) Tags() []gamedata.EvidenceTag {
	out := make([]gamedata.EvidenceTag, len(s.order))
	copy(out, s.order)
	return out
}

// LastCardID returns the card id of the most recently collected evidence.
func (s *Store) LastCardID() string {
	return s.lastCardID
}

// SetTarget sets how many tags the current investigation asks for.
func (s *Store) SetTarget(n int) {
	if n < 0 {
		n = 0
	}
	s.target = n
}

// Target returns the investigation's evidence target.
func (s *Store) Target() int {
	return s.target
}

// TargetMet reports whether the collected count has reached the target.
func (s *Store) TargetMet() bool {
	return s.Count() >= s.target
}

// Reset clears all evidence. Called at case start.
func (s *Store) Reset() {
	s.tags = make(map[gamedata.EvidenceTag]struct{})
	s.order = nil
	s.target = 0
	s.lastCardID = ""
}
