package gamedata

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// CASE CONTENT DESIGN
// =============================================================================
//
// A case is one short encounter: a fixed, ordered list of phases
// (intro -> investigation -> combat -> outro), the rules the player is
// held to, the evidence that can be found, the adversary fought during the
// combat phase, and the negotiation options offered once it is broken.
//
// Everything in this file is read-only at runtime. Subsystems copy what they
// need when a case starts and keep their own mutable state.
//
// Time values are authored in seconds (float) and exposed as time.Duration
// through helper methods.
//
// Checkpoint ids follow the "<CASE>_<STAGE>" convention; the suffix selects
// the phase a save resumes into:
//   _INVEST -> investigation
//   _BREAK  -> combat
//   _END    -> outro
//   other   -> intro
//
// JSON Schema (abridged):
// -----------------------
// {
//   "id": "ferryman",
//   "phases": [{"kind": "investigation", "checkpointId": "FERRY_INVEST", "targetEvidence": 3}],
//   "rules": [{"id": "no_stare", "kind": "gaze_lock", "seconds": 3}],
//   "negotiation": {"options": [{"label": "Seal", "evidenceTags": ["bell"], "outcome": "seal"}]}
// }

// ErrInvalidCase is returned (joined with the individual problems) when case content fails validation.
var ErrInvalidCase = errors.New("invalid case definition")

// CaseDef is a complete authored case.
type CaseDef struct {
	ID           string          `json:"id" yaml:"id"`
	Title        string          `json:"title" yaml:"title"`
	Phases       []PhaseDef      `json:"phases" yaml:"phases"`
	Rules        []RuleDef       `json:"rules" yaml:"rules"`
	Evidence     []EvidenceDef   `json:"evidence" yaml:"evidence"`
	Attacks      []AttackDef     `json:"attacks" yaml:"attacks"`
	Adversary    AdversaryDef    `json:"adversary" yaml:"adversary"`
	Negotiation  NegotiationDef  `json:"negotiation" yaml:"negotiation"`
	Infiltration InfiltrationDef `json:"infiltration" yaml:"infiltration"`
}

// PhaseDef is one entry of the ordered phase list.
type PhaseDef struct {
	Kind           PhaseKind `json:"kind" yaml:"kind"`
	CheckpointID   string    `json:"checkpointId" yaml:"checkpointId"`
	TargetEvidence int       `json:"targetEvidence,omitempty" yaml:"targetEvidence,omitempty"` // Investigation only
	Objective      string    `json:"objective,omitempty" yaml:"objective,omitempty"`
	RuleTags       []string  `json:"ruleTags,omitempty" yaml:"ruleTags,omitempty"`
}

// RuleDef configures one prohibition the player is held to.
type RuleDef struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Kind      RuleKind `json:"kind" yaml:"kind"`
	Seconds   float64  `json:"seconds,omitempty" yaml:"seconds,omitempty"` // gaze_lock threshold
	Count     int      `json:"count,omitempty" yaml:"count,omitempty"`     // repeated_attack threshold
	Window    float64  `json:"window,omitempty" yaml:"window,omitempty"`   // repeated_attack window in seconds
	Text      string   `json:"text" yaml:"text"`
	Intensity float64  `json:"intensity" yaml:"intensity"` // feedback strength in [0,1]
}

// Threshold returns the gaze-lock threshold as a duration.
func (r RuleDef) Threshold() time.Duration { return seconds(r.Seconds) }

// WindowDuration returns the repeated-attack window as a duration.
func (r RuleDef) WindowDuration() time.Duration { return seconds(r.Window) }

// EvidenceDef describes a collectible piece of evidence.
type EvidenceDef struct {
	Tag               EvidenceTag `json:"tag" yaml:"tag"`
	Label             string      `json:"label" yaml:"label"`
	CardID            string      `json:"cardId" yaml:"cardId"`
	InfiltrationGated bool        `json:"infiltrationGated,omitempty" yaml:"infiltrationGated,omitempty"`
}

// AttackDef describes a player attack type.
type AttackDef struct {
	Type        AttackType `json:"type" yaml:"type"`
	Name        string     `json:"name" yaml:"name"`
	Damage      float64    `json:"damage" yaml:"damage"`
	BreakDamage float64    `json:"breakDamage" yaml:"breakDamage"`
	Range       float64    `json:"range" yaml:"range"`
}

// Point is an authored arena position.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// AdversaryDef configures the combat-phase adversary.
type AdversaryDef struct {
	ID                      string  `json:"id" yaml:"id"`
	Name                    string  `json:"name" yaml:"name"`
	Glyph                   string  `json:"glyph" yaml:"glyph"`
	Color                   string  `json:"color" yaml:"color"`
	HP                      float64 `json:"hp" yaml:"hp"`
	Break                   float64 `json:"break" yaml:"break"`
	BreakRecoverySeconds    float64 `json:"breakRecoverySeconds" yaml:"breakRecoverySeconds"`
	MoveSpeed               float64 `json:"moveSpeed" yaml:"moveSpeed"`
	AttackRange             float64 `json:"attackRange" yaml:"attackRange"`
	AttackDamage            float64 `json:"attackDamage" yaml:"attackDamage"`
	AttackCooldownSeconds   float64 `json:"attackCooldownSeconds" yaml:"attackCooldownSeconds"`
	EnrageSeconds           float64 `json:"enrageSeconds" yaml:"enrageSeconds"`
	EnrageSpeedMultiplier   float64 `json:"enrageSpeedMultiplier" yaml:"enrageSpeedMultiplier"`
	EnrageCadenceMultiplier float64 `json:"enrageCadenceMultiplier" yaml:"enrageCadenceMultiplier"`
	NegotiationRange        float64 `json:"negotiationRange" yaml:"negotiationRange"`
	Spawn                   Point   `json:"spawn" yaml:"spawn"`
}

// GlyphRune returns the glyph as a rune for rendering.
func (a *AdversaryDef) GlyphRune() rune {
	for _, r := range a.Glyph {
		return r
	}
	return '?'
}

// BreakRecovery returns the unscaled broken-state duration.
func (a *AdversaryDef) BreakRecovery() time.Duration { return seconds(a.BreakRecoverySeconds) }

// AttackCooldown returns the adversary's base attack cadence.
func (a *AdversaryDef) AttackCooldown() time.Duration { return seconds(a.AttackCooldownSeconds) }

// EnrageDuration returns how long one enrage lasts.
func (a *AdversaryDef) EnrageDuration() time.Duration { return seconds(a.EnrageSeconds) }

// OptionDef is one negotiation option.
type OptionDef struct {
	Label          string        `json:"label" yaml:"label"`
	EvidenceTags   []EvidenceTag `json:"evidenceTags" yaml:"evidenceTags"`
	MinEvidence    *int          `json:"minEvidence,omitempty" yaml:"minEvidence,omitempty"`
	Outcome        Outcome       `json:"outcome" yaml:"outcome"`
	Emergency      bool          `json:"emergency,omitempty" yaml:"emergency,omitempty"`
	ConsumesPass   bool          `json:"consumesPass,omitempty" yaml:"consumesPass,omitempty"`
	EmergencyCost  float64       `json:"emergencyCost,omitempty" yaml:"emergencyCost,omitempty"`
	ExtraAdminCost float64       `json:"extraAdminCost,omitempty" yaml:"extraAdminCost,omitempty"`
	DebtDelta      int           `json:"debtDelta,omitempty" yaml:"debtDelta,omitempty"`
}

// Required returns the evidence needed at Firm stance with no insight.
// An unset minimum defaults to the size of the tag set.
func (o *OptionDef) Required() int {
	if o.MinEvidence != nil {
		return *o.MinEvidence
	}
	return len(o.EvidenceTags)
}

// NeedsPass reports whether choosing the option spends an arbitration pass.
func (o *OptionDef) NeedsPass() bool {
	return o.Emergency && o.ConsumesPass
}

// StanceCosts holds the base administrative cost of each stance.
type StanceCosts struct {
	Firm     float64 `json:"firm" yaml:"firm"`
	Balanced float64 `json:"balanced" yaml:"balanced"`
	Concede  float64 `json:"concede" yaml:"concede"`
}

// For returns the base cost of the given stance.
func (c StanceCosts) For(s Stance) float64 {
	switch s {
	case StanceBalanced:
		return c.Balanced
	case StanceConcede:
		return c.Concede
	default:
		return c.Firm
	}
}

// RitualDef configures the sealing ritual minigame.
type RitualDef struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Length      int     `json:"length" yaml:"length"`
	StepSeconds float64 `json:"stepSeconds" yaml:"stepSeconds"`
	FailCost    float64 `json:"failCost" yaml:"failCost"`
	FailEnrage  bool    `json:"failEnrage" yaml:"failEnrage"`
}

// StepBudget returns the time allowed for each ritual input.
func (r RitualDef) StepBudget() time.Duration { return seconds(r.StepSeconds) }

// NegotiationDef configures the negotiation engine for a case.
type NegotiationDef struct {
	Options             []OptionDef `json:"options" yaml:"options"`
	CooldownSeconds     float64     `json:"cooldownSeconds" yaml:"cooldownSeconds"`
	FailCooldownSeconds float64     `json:"failCooldownSeconds" yaml:"failCooldownSeconds"`
	MaxConcession       *Stance     `json:"maxConcession" yaml:"maxConcession"`
	BaseCosts           StanceCosts `json:"baseCosts" yaml:"baseCosts"`
	FailEnrage          bool        `json:"failEnrage" yaml:"failEnrage"`
	InsightPerReduction int         `json:"insightPerReduction" yaml:"insightPerReduction"`
	Ritual              RitualDef   `json:"ritual" yaml:"ritual"`
}

// ConcessionCap returns the highest stance the player may take. An unset
// cap allows Concede.
func (n NegotiationDef) ConcessionCap() Stance {
	if n.MaxConcession == nil {
		return StanceConcede
	}
	return *n.MaxConcession
}

// Cooldown returns the regular cooldown after a negotiation closes.
func (n NegotiationDef) Cooldown() time.Duration { return seconds(n.CooldownSeconds) }

// FailCooldown returns the shortened cooldown after a failed negotiation.
func (n NegotiationDef) FailCooldown() time.Duration { return seconds(n.FailCooldownSeconds) }

// InfiltrationDef tunes the alert/lockdown monitor.
type InfiltrationDef struct {
	RiseRate          float64 `json:"riseRate" yaml:"riseRate"`
	DecayRate         float64 `json:"decayRate" yaml:"decayRate"`
	RecencySeconds    float64 `json:"recencySeconds" yaml:"recencySeconds"`
	LockdownSeconds   float64 `json:"lockdownSeconds" yaml:"lockdownSeconds"`
	LockdownAdminCost float64 `json:"lockdownAdminCost" yaml:"lockdownAdminCost"`
	LockdownInsight   int     `json:"lockdownInsight" yaml:"lockdownInsight"`
	ResetAlertTo      float64 `json:"resetAlertTo" yaml:"resetAlertTo"`
}

// Recency returns how long a sighting keeps the alert rising.
func (i InfiltrationDef) Recency() time.Duration { return seconds(i.RecencySeconds) }

// LockdownDuration returns the lockdown length.
func (i InfiltrationDef) LockdownDuration() time.Duration { return seconds(i.LockdownSeconds) }

// ApplyDefaults fills unset tuning values.
func (c *CaseDef) ApplyDefaults() {
	n := &c.Negotiation
	if n.InsightPerReduction <= 0 {
		n.InsightPerReduction = 2
	}
	if n.CooldownSeconds <= 0 {
		n.CooldownSeconds = 3
	}
	if n.FailCooldownSeconds <= 0 {
		n.FailCooldownSeconds = 1
	}
	if n.Ritual.Length <= 0 {
		n.Ritual.Length = 4
	}
	if n.Ritual.StepSeconds <= 0 {
		n.Ritual.StepSeconds = 1.5
	}
	if n.MaxConcession == nil {
		n.MaxConcession = StanceConcede.Ptr()
	}

	inf := &c.Infiltration
	if inf.RecencySeconds <= 0 {
		inf.RecencySeconds = 0.12
	}
	if inf.RiseRate <= 0 {
		inf.RiseRate = 0.5
	}
	if inf.DecayRate <= 0 {
		inf.DecayRate = 0.2
	}
	if inf.LockdownSeconds <= 0 {
		inf.LockdownSeconds = 10
	}
	if inf.LockdownInsight <= 0 {
		inf.LockdownInsight = 1
	}
	if inf.ResetAlertTo <= 0 || inf.ResetAlertTo >= 1 {
		inf.ResetAlertTo = 0.5
	}

	for i := range c.Rules {
		if c.Rules[i].Name == "" {
			c.Rules[i].Name = c.Rules[i].ID
		}
	}
}

// Validate reports every content problem found in the case.
func (c *CaseDef) Validate() error {
	var problems []error
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if c.ID == "" {
		addf("case id is required")
	}
	if len(c.Phases) == 0 {
		addf("case %q has no phases", c.ID)
	}

	known := make(map[EvidenceTag]bool, len(c.Evidence))
	for _, e := range c.Evidence {
		known[e.Tag] = true
	}

	hasCombat := false
	for i, p := range c.Phases {
		switch p.Kind {
		case PhaseIntro, PhaseOutro:
		case PhaseInvestigation:
			if p.TargetEvidence < 0 {
				addf("phase %d: negative target evidence", i)
			}
		case PhaseCombat:
			hasCombat = true
		default:
			addf("phase %d: unknown kind %q", i, p.Kind)
		}
	}
	if hasCombat && c.Adversary.HP <= 0 {
		addf("combat phase requires an adversary with hp > 0")
	}
	if hasCombat && c.Adversary.Break <= 0 {
		addf("adversary %q: break must be > 0", c.Adversary.ID)
	}
	if hasCombat && c.Adversary.BreakRecoverySeconds <= 0 {
		addf("adversary %q: breakRecoverySeconds must be > 0", c.Adversary.ID)
	}
	if hasCombat && len(c.Negotiation.Options) == 0 {
		addf("combat phase requires negotiation options")
	}

	for _, r := range c.Rules {
		switch r.Kind {
		case RuleGazeLock:
			if r.Seconds <= 0 {
				addf("rule %q: gaze_lock needs seconds > 0", r.ID)
			}
		case RuleRepeatedAttack:
			if r.Count <= 0 || r.Window <= 0 {
				addf("rule %q: repeated_attack needs count and window > 0", r.ID)
			}
		default:
			addf("rule %q: unknown kind %q", r.ID, r.Kind)
		}
		if r.Intensity < 0 || r.Intensity > 1 {
			addf("rule %q: intensity %v outside [0,1]", r.ID, r.Intensity)
		}
	}

	for _, o := range c.Negotiation.Options {
		if !o.Outcome.Valid() || o.Outcome == OutcomeNone || o.Outcome == OutcomeSlay {
			addf("option %q: outcome %q cannot be negotiated", o.Label, o.Outcome)
		}
		for _, tag := range o.EvidenceTags {
			if !known[tag] {
				addf("option %q: unknown evidence tag %q", o.Label, tag)
			}
		}
		if o.MinEvidence != nil && *o.MinEvidence < 0 {
			addf("option %q: negative minimum evidence", o.Label)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidCase}, problems...)...)
}

// AttackByType returns the attack definition for t, or nil.
func (c *CaseDef) AttackByType(t AttackType) *AttackDef {
	for i := range c.Attacks {
		if c.Attacks[i].Type == t {
			return &c.Attacks[i]
		}
	}
	return nil
}

// EvidenceByTag returns the evidence definition for tag, or nil.
func (c *CaseDef) EvidenceByTag(tag EvidenceTag) *EvidenceDef {
	for i := range c.Evidence {
		if c.Evidence[i].Tag == tag {
			return &c.Evidence[i]
		}
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
