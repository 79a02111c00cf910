// Package rules checks player behaviour against the active prohibitions of a case.
package rules

import (
	"time"

	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
)

// FreshAttackGrace is how old a reported attack may be, measured at the
// start of the tick that first sees it, and still count toward
// repeated-attack rules. Frame length does not age an attack.
const FreshAttackGrace = 200 * time.Millisecond

type activeRule struct {
	def gamedata.RuleDef
	det detector
}

type pendingAttack struct {
	kind gamedata.AttackType
	at   time.Duration
}

// Engine ticks one detector per active rule and reports violations to the
// run ledger and the presentation sink.
type Engine struct {
	rules   []activeRule
	enabled bool
	locked  bool
	pending []pendingAttack
	clock   time.Duration

	run    *ledger.Run
	sink   events.Sink
	logger *zap.Logger
}

// NewEngine creates an engine with no active rules. It starts disabled.
func NewEngine(logger *zap.Logger, sink events.Sink) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sink:   events.OrNop(sink),
		logger: logger.Named("rules"),
	}
}

// BindRun directs violations to run. A nil run disables logging to a ledger.
func (e *Engine) BindRun(run *ledger.Run) {
	e.run = run
}

// SetRules replaces the active rule list. Unknown kinds are logged and skipped.
func (e *Engine) SetRules(defs []gamedata.RuleDef) {
	e.rules = e.rules[:0]
	for _, def := range defs {
		e.AddRule(def)
	}
}

// AddRule activates one more rule. Several rules of the same kind may be
// active at once; each is ticked on its own.
func (e *Engine) AddRule(def gamedata.RuleDef) bool {
	det := newDetector(def)
	if det == nil {
		e.logger.Warn("skipping rule with unknown kind",
			zap.String("rule", def.ID), zap.String("kind", string(def.Kind)))
		return false
	}
	e.rules = append(e.rules, activeRule{def: def, det: det})
	return true
}

// RemoveRule deactivates every rule with the given id.
func (e *Engine) RemoveRule(id string) {
	kept := e.rules[:0]
	for _, r := range e.rules {
		if r.def.ID != id {
			kept = append(kept, r)
		}
	}
	e.rules = kept
}

// ActiveRules returns the definitions of the active rules.
func (e *Engine) ActiveRules() []gamedata.RuleDef {
	defs := make([]gamedata.RuleDef, len(e.rules))
	for i, r := range e.rules {
		defs[i] = r.def
	}
	return defs
}

// SetEnabled turns ticking on or off. Input reported while disabled is dropped.
func (e *Engine) SetEnabled(on bool) {
	e.enabled = on
	if !on {
		e.pending = nil
	}
}

// Enabled reports whether the engine ticks.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// SetTargetLock reports whether the player currently holds a target lock.
func (e *Engine) SetTargetLock(locked bool) {
	e.locked = locked
}

// ReportAttack registers an attack for evaluation on the next tick.
func (e *Engine) ReportAttack(kind gamedata.AttackType) {
	if !e.enabled {
		return
	}
	e.pending = append(e.pending, pendingAttack{kind: kind, at: e.clock})
}

// Tick advances every detector by dt.
func (e *Engine) Tick(dt time.Duration) {
	if !e.enabled || dt < 0 {
		return
	}
	seen := e.clock
	e.clock += dt

	fresh := e.pending[:0]
	for _, p := range e.pending {
		if seen-p.at <= FreshAttackGrace {
			fresh = append(fresh, p)
		}
	}
	e.pending = nil

	for _, r := range e.rules {
		if reason, fired := r.det.tick(dt, e.locked); fired {
			e.fire(r.def, reason)
		}
		for _, p := range fresh {
			if reason, fired := r.det.attack(p.kind, p.at); fired {
				e.fire(r.def, reason)
			}
		}
	}
}

// ClearRuntime resets every detector, pending attack and the target lock.
// Called on every phase entry.
func (e *Engine) ClearRuntime() {
	for _, r := range e.rules {
		r.det.reset()
	}
	e.pending = nil
	e.locked = false
}

// Clock returns the engine's elapsed ticking time.
func (e *Engine) Clock() time.Duration {
	return e.clock
}

func (e *Engine) fire(def gamedata.RuleDef, detail string) {
	reason := def.Text
	if reason == "" {
		reason = detail
	}
	if e.run != nil {
		e.run.RecordViolation(def.ID, reason, e.clock)
	}

	intensity := def.Intensity
	if intensity < 0 {
		intensity = 0
	} else if intensity > 1 {
		intensity = 1
	}

	e.logger.Info("rule violated",
		zap.String("rule", def.ID),
		zap.String("detail", detail),
		zap.Duration("at", e.clock))

	e.sink.Publish(events.Violation{
		RuleID:    def.ID,
		RuleName:  def.Name,
		Reason:    reason,
		Intensity: intensity,
		At:        e.clock,
	})
}
