// Package events carries state-change notifications from the case core to
// presentation layers. Publishing never depends on a subscriber existing.
package events

import (
	"time"

	"github.com/samdwyer/parley/internal/gamedata"
)

// Event is a presentation notification.
type Event interface {
	// Kind returns a stable, machine-readable name for the event.
	Kind() string
}

// Sink receives events.
type Sink interface {
	Publish(Event)
}

// Nop discards every event.
type Nop struct{}

// Publish implements Sink.
func (Nop) Publish(Event) {}

// OrNop returns s, or a Nop sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// Toast is short user-facing text, usually a rejection explanation.
type Toast struct {
	Text string
}

// Violation is emitted when a rule fires.
type Violation struct {
	RuleID    string
	RuleName  string
	Reason    string
	Intensity float64 // in [0,1]
	At        time.Duration
}

// PhaseEntered is emitted after the director enters a phase.
type PhaseEntered struct {
	Index        int
	Phase        gamedata.PhaseKind
	Display      string
	CheckpointID string
	Objective    string
}

// EpisodeCompleted is emitted once the director moves past the last phase.
type EpisodeCompleted struct {
	CaseID  string
	Outcome gamedata.Outcome
}

// NegotiationOpened is emitted when a negotiation session starts.
type NegotiationOpened struct {
	Options []string
	Stance  gamedata.Stance
}

// StanceChanged is emitted when the player cycles stance.
type StanceChanged struct {
	Stance gamedata.Stance
}

// CounterOffered is emitted when a failed choice produces a counter-offer.
type CounterOffered struct {
	Option string
	Stance gamedata.Stance
}

// NegotiationSucceeded is emitted when an option's gate is satisfied.
type NegotiationSucceeded struct {
	Option    string
	Outcome   gamedata.Outcome
	AdminCost float64
}

// NegotiationFailed is emitted when a negotiation closes without a resolution.
type NegotiationFailed struct {
	Reason  string
	Enraged bool
}

// NegotiationClosed is emitted whenever the session closes for any reason.
type NegotiationClosed struct{}

// RitualStarted is emitted when a sealing ritual begins.
type RitualStarted struct {
	Sequence []string
	Budget   time.Duration
}

// RitualProgress is emitted after each correct ritual input.
type RitualProgress struct {
	Step  int
	Total int
}

// RitualFailed is emitted when a ritual is failed or aborted.
type RitualFailed struct {
	Reason    string
	Voluntary bool
}

// OutcomeResolved is emitted when the combat phase is resolved.
type OutcomeResolved struct {
	Outcome gamedata.Outcome
}

// AdversaryBroken is emitted when the adversary's break value reaches zero.
type AdversaryBroken struct {
	Recovery time.Duration
}

// AdversaryRecovered is emitted when the broken state ends.
type AdversaryRecovered struct{}

// AdversaryEnraged is emitted when an enrage window starts.
type AdversaryEnraged struct {
	Duration time.Duration
}

// PlayerHit is emitted when the adversary lands an attack.
type PlayerHit struct {
	Damage float64
}

// EvidenceCollected is emitted when a new evidence tag is recorded.
type EvidenceCollected struct {
	Tag    gamedata.EvidenceTag
	Label  string
	Have   int
	Target int
}

// LockdownStarted is emitted when the alert level triggers a lockdown.
type LockdownStarted struct {
	Duration time.Duration
	Extended bool
}

// LockdownEnded is emitted when a lockdown expires.
type LockdownEnded struct{}

func (Toast) Kind() string                { return "toast" }
func (Violation) Kind() string            { return "violation" }
func (PhaseEntered) Kind() string         { return "phase_entered" }
func (EpisodeCompleted) Kind() string     { return "episode_completed" }
func (NegotiationOpened) Kind() string    { return "negotiation_opened" }
func (StanceChanged) Kind() string        { return "stance_changed" }
func (CounterOffered) Kind() string       { return "counter_offered" }
func (NegotiationSucceeded) Kind() string { return "negotiation_succeeded" }
func (NegotiationFailed) Kind() string    { return "negotiation_failed" }
func (NegotiationClosed) Kind() string    { return "negotiation_closed" }
func (RitualStarted) Kind() string        { return "ritual_started" }
func (RitualProgress) Kind() string       { return "ritual_progress" }
func (RitualFailed) Kind() string         { return "ritual_failed" }
func (OutcomeResolved) Kind() string      { return "outcome_resolved" }
func (AdversaryBroken) Kind() string      { return "adversary_broken" }
func (AdversaryRecovered) Kind() string   { return "adversary_recovered" }
func (AdversaryEnraged) Kind() string     { return "adversary_enraged" }
func (PlayerHit) Kind() string            { return "player_hit" }
func (EvidenceCollected) Kind() string    { return "evidence_collected" }
func (LockdownStarted) Kind() string      { return "lockdown_started" }
func (LockdownEnded) Kind() string        { return "lockdown_ended" }
