// Package ledger tracks what happened during a case attempt (Run) and the
// modifiers carried from one case to the next (Meta).
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/samdwyer/parley/internal/gamedata"
)

// Violation is one logged rule violation.
type Violation struct {
	RuleID string
	Reason string
	At     time.Duration
}

// Attempt is one logged negotiation choice.
type Attempt struct {
	Option    string
	Stance    gamedata.Stance
	Required  int // final requirement after stance and insight reductions
	Have      int
	Success   bool
	Emergency bool
}

// Run accumulates the state of a single case attempt. A new Run is created
// for every attempt and dropped when the attempt ends.
type Run struct {
	ID     string
	CaseID string

	violations  []Violation
	attempts    []Attempt
	damageTaken float64
	hits        int
	adminCost   float64
	insight     int
}

// NewRun starts a ledger for caseID with a fresh attempt id.
func NewRun(caseID string) *Run {
	return &Run{
		ID:     uuid.NewString(),
		CaseID: caseID,
	}
}

// RecordViolation appends a violation to the log.
func (r *Run) RecordViolation(ruleID, reason string, at time.Duration) {
	r.violations = append(r.violations, Violation{RuleID: ruleID, Reason: reason, At: at})
}

// ViolationCount returns the number of violations so far.
func (r *Run) ViolationCount() int {
	return len(r.violations)
}

// Violations returns a copy of the violation log.
func (r *Run) Violations() []Violation {
	return append([]Violation(nil), r.violations...)
}

// RecordAttempt appends a negotiation attempt to the log.
func (r *Run) RecordAttempt(a Attempt) {
	r.attempts = append(r.attempts, a)
}

// Attempts returns a copy of the negotiation attempt log.
func (r *Run) Attempts() []Attempt {
	return append([]Attempt(nil), r.attempts...)
}

// RecordHit adds one landed adversary attack.
func (r *Run) RecordHit(damage float64) {
	if damage < 0 {
		damage = 0
	}
	r.damageTaken += damage
	r.hits++
}

// DamageTaken returns the total damage the player has taken.
func (r *Run) DamageTaken() float64 {
	return r.damageTaken
}

// HitCount returns how many adversary attacks have landed.
func (r *Run) HitCount() int {
	return r.hits
}

// AddAdminCost adds to the administrative cost. Negative amounts are ignored;
// the accumulator never decays.
func (r *Run) AddAdminCost(amount float64) {
	if amount <= 0 {
		return
	}
	r.adminCost += amount
}

// AdminCost returns the accumulated administrative cost.
func (r *Run) AdminCost() float64 {
	return r.adminCost
}

// AddInsight grants insight from a failure.
func (r *Run) AddInsight(n int) {
	if n <= 0 {
		return
	}
	r.insight += n
}

// Insight returns the accumulated insight bonus.
func (r *Run) Insight() int {
	return r.insight
}

// NegotiationPenalty grows with violations and is capped at 0.5.
// It lengthens the regular negotiation cooldown.
func (r *Run) NegotiationPenalty() float64 {
	p := 0.05 * float64(len(r.violations))
	if p > 0.5 {
		p = 0.5
	}
	return p
}

// BreakRecoveryMultiplier divides the adversary's broken-state duration.
// It strictly increases with each violation.
func (r *Run) BreakRecoveryMultiplier() float64 {
	return 1 + 0.25*float64(len(r.violations))
}
