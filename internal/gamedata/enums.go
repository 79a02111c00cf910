package gamedata

import (
	"fmt"
	"strings"
)

// EvidenceTag identifies one piece of evidence that can be collected during a case.
type EvidenceTag string

// Outcome is how a case was resolved.
type Outcome string

const (
	OutcomeNone     Outcome = "none"
	OutcomeSlay     Outcome = "slay"
	OutcomeContract Outcome = "contract"
	OutcomeSeal     Outcome = "seal"
	OutcomeTruce    Outcome = "truce"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeNone, OutcomeSlay, OutcomeContract, OutcomeSeal, OutcomeTruce:
		return true
	}
	return false
}

// ParseOutcome converts a stored outcome string, mapping unknown values to OutcomeNone.
func ParseOutcome(s string) Outcome {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return OutcomeNone
	}
	return o
}

// Stance is the player's concession level during a negotiation.
type Stance int

const (
	StanceFirm Stance = iota
	StanceBalanced
	StanceConcede
)

// StanceCount is the number of stances a negotiation cycles through.
const StanceCount = 3

var stanceNames = map[Stance]string{
	StanceFirm:     "firm",
	StanceBalanced: "balanced",
	StanceConcede:  "concede",
}

// String returns the lowercase stance name.
func (s Stance) String() string {
	if name, ok := stanceNames[s]; ok {
		return name
	}
	return "unknown"
}

// Reduction returns how many evidence requirements the stance waives.
func (s Stance) Reduction() int {
	switch s {
	case StanceBalanced:
		return 1
	case StanceConcede:
		return 2
	default:
		return 0
	}
}

// Ptr returns a pointer to a copy of s.
func (s Stance) Ptr() *Stance { return &s }

// Next returns the following stance, wrapping from Concede back to Firm.
func (s Stance) Next() Stance {
	return Stance((int(s) + 1) % StanceCount)
}

// MarshalText encodes the stance by name.
func (s Stance) MarshalText() ([]byte, error) {
	name, ok := stanceNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown stance %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a stance name ("firm", "balanced", "concede").
func (s *Stance) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for stance, name := range stanceNames {
		if name == want {
			*s = stance
			return nil
		}
	}
	return fmt.Errorf("unknown stance %q", string(text))
}

// PhaseKind is the internal kind of an episode phase.
type PhaseKind string

const (
	PhaseIntro         PhaseKind = "intro"
	PhaseInvestigation PhaseKind = "investigation"
	PhaseCombat        PhaseKind = "combat"
	PhaseOutro         PhaseKind = "outro"
)

// RuleKind selects the runtime detector used for a rule.
type RuleKind string

const (
	// RuleGazeLock fires when a target lock is held for too long.
	RuleGazeLock RuleKind = "gaze_lock"
	// RuleRepeatedAttack fires when the same attack type is repeated too often.
	RuleRepeatedAttack RuleKind = "repeated_attack"
)

// AttackType classifies a player attack.
type AttackType string

const (
	AttackLight  AttackType = "light"
	AttackHeavy  AttackType = "heavy"
	AttackRanged AttackType = "ranged"
)
