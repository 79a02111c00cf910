package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/negotiation"
)

// SimFrame is the fixed frame used by scripted runs.
const SimFrame = 50 * time.Millisecond

// maxScriptFrames bounds any single wait in a script.
const maxScriptFrames = 20 * 60

// ErrUnknownScript is returned for script names not in Scripts.
var ErrUnknownScript = errors.New("unknown script")

// ErrScriptStalled is returned when a script waits longer than it should.
var ErrScriptStalled = errors.New("script stalled")

// Script drives a session from the start of an episode to its end.
type Script func(ctx context.Context, d *Driver) error

// Scripts are the built-in headless scenarios.
var Scripts = map[string]Script{
	"negotiate":    scriptNegotiate,
	"ritual":       scriptRitual,
	"slay":         scriptSlay,
	"stealth-fail": scriptStealthFail,
}

// ScriptNames returns the built-in script names in order.
func ScriptNames() []string {
	names := make([]string, 0, len(Scripts))
	for name := range Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report summarises a finished scripted run.
type Report struct {
	CaseID      string
	RunID       string
	Script      string
	Completed   bool
	Outcome     gamedata.Outcome
	Elapsed     time.Duration
	AdminCost   float64
	Insight     int
	Violations  int
	DamageTaken float64
	Attempts    int
	Meta        ledger.MetaSnapshot
}

// RunScript begins an episode on s and plays the named script to completion.
func RunScript(ctx context.Context, s *CaseSession, name string) (Report, error) {
	script, ok := Scripts[name]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	if err := s.Director().BeginEpisode(ctx); err != nil {
		return Report{}, err
	}

	d := &Driver{s: s}
	if err := script(ctx, d); err != nil {
		return Report{}, fmt.Errorf("script %s: %w", name, err)
	}

	rep := Report{
		CaseID:    s.Case().ID,
		Script:    name,
		Completed: s.Director().IsComplete(),
		Outcome:   s.Director().LastOutcome(),
		Elapsed:   s.Elapsed(),
		Meta:      s.Meta().Snapshot(),
	}
	if run := s.LastRun(); run != nil {
		rep.RunID = run.ID
		rep.AdminCost = run.AdminCost()
		rep.Insight = run.Insight()
		rep.Violations = run.ViolationCount()
		rep.DamageTaken = run.DamageTaken()
		rep.Attempts = len(run.Attempts())
	}
	return rep, nil
}

// Driver gives scripts frame-level control over a session.
type Driver struct {
	s *CaseSession
}

// Session returns the driven session.
func (d *Driver) Session() *CaseSession { return d.s }

// Tick advances n frames.
func (d *Driver) Tick(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.s.Tick(ctx, SimFrame)
	}
	return nil
}

// Until ticks until cond holds.
func (d *Driver) Until(ctx context.Context, what string, cond func() bool) error {
	for i := 0; i < maxScriptFrames; i++ {
		if cond() {
			return nil
		}
		if err := d.Tick(ctx, 1); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: waiting for %s", ErrScriptStalled, what)
}

// AdvanceTo advances through player-controlled phases until kind is current.
func (d *Driver) AdvanceTo(ctx context.Context, kind gamedata.PhaseKind) error {
	for guard := 0; guard < len(d.s.Case().Phases)+1; guard++ {
		if d.s.Phase().Kind == kind {
			return nil
		}
		if err := d.s.Advance(ctx); err != nil {
			return fmt.Errorf("advance from %s: %w", d.s.Phase().Kind, err)
		}
	}
	return fmt.Errorf("%w: phase %s never reached", ErrScriptStalled, kind)
}

// Gather collects catalog evidence in order until the target is met,
// skipping anything refused.
func (d *Driver) Gather(ctx context.Context) error {
	for _, e := range d.s.Case().Evidence {
		if d.s.Evidence().TargetMet() {
			break
		}
		if err := d.s.CollectEvidence(ctx, e.Tag); err != nil && !errors.Is(err, ErrLockdown) {
			return err
		}
	}
	if !d.s.Evidence().TargetMet() {
		return fmt.Errorf("%w: evidence target %d not met", ErrScriptStalled, d.s.Evidence().Target())
	}
	return nil
}

// Break closes in on the adversary and alternates attacks until it breaks.
func (d *Driver) Break(ctx context.Context) error {
	enc := d.s.Encounter()
	if err := d.closeIn(ctx); err != nil {
		return err
	}
	types := d.attackCycle()
	for i := 0; i < maxScriptFrames && !enc.IsBroken(); i++ {
		if enc.Resolved() {
			return nil
		}
		if _, err := d.s.Attack(ctx, types[i%len(types)]); err != nil {
			return err
		}
		if err := d.Tick(ctx, 4); err != nil {
			return err
		}
	}
	if !enc.IsBroken() && !enc.Resolved() {
		return fmt.Errorf("%w: adversary never broke", ErrScriptStalled)
	}
	return nil
}

// closeIn waits for the adversary to approach within negotiation range.
func (d *Driver) closeIn(ctx context.Context) error {
	return d.Until(ctx, "adversary in range", func() bool {
		return d.s.Encounter().Resolved() || d.s.Encounter().InRange()
	})
}

// attackCycle varies attack types so the repeated-attack rule stays quiet.
func (d *Driver) attackCycle() []gamedata.AttackType {
	var out []gamedata.AttackType
	for _, a := range d.s.Case().Attacks {
		out = append(out, a.Type)
	}
	if len(out) == 0 {
		out = []gamedata.AttackType{gamedata.AttackLight}
	}
	return out
}

// Negotiate opens a session and picks the first option that would
// succeed, accepting counter-offers and completing rituals as needed.
// preferSeal chooses a seal option when one is available.
func (d *Driver) Negotiate(ctx context.Context, preferSeal bool) error {
	eng := d.s.Negotiation()
	if err := d.Until(ctx, "negotiation available", func() bool { return eng.CanBegin() == nil }); err != nil {
		return err
	}
	if err := eng.Begin(ctx); err != nil {
		return err
	}

	choice := d.pickOption(preferSeal)
	res, err := eng.Choose(ctx, choice)
	if err != nil {
		return err
	}
	if res.Kind == negotiation.ResultCounterOffered {
		if res, err = eng.AcceptCounterOffer(ctx); err != nil {
			return err
		}
	}
	if res.Kind == negotiation.ResultRitualStarted {
		return d.PerformRitual(ctx)
	}
	if res.Kind != negotiation.ResultResolved {
		return fmt.Errorf("%w: negotiation ended with result %d", ErrScriptStalled, res.Kind)
	}
	return nil
}

func (d *Driver) pickOption(preferSeal bool) int {
	eng := d.s.Negotiation()
	opts := eng.VisibleOptions()
	if preferSeal {
		for i, o := range opts {
			if o.Outcome == gamedata.OutcomeSeal {
				return i
			}
		}
	}
	for i, o := range opts {
		if o.Emergency {
			continue
		}
		if g, ok := eng.Preview(i); ok && g.CanSucceed {
			return i
		}
	}
	return 0
}

// PerformRitual enters the active ritual's sequence one step per frame.
func (d *Driver) PerformRitual(ctx context.Context) error {
	eng := d.s.Negotiation()
	r := eng.Ritual()
	if r == nil {
		return negotiation.ErrNoRitual
	}
	for _, dir := range r.Sequence() {
		if err := d.Tick(ctx, 1); err != nil {
			return err
		}
		if _, err := eng.InputRitual(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

// Finish advances through any remaining phases.
func (d *Driver) Finish(ctx context.Context) error {
	for guard := 0; guard < len(d.s.Case().Phases)+1 && !d.s.Director().IsComplete(); guard++ {
		if err := d.s.Advance(ctx); err != nil {
			return err
		}
	}
	if !d.s.Director().IsComplete() {
		return fmt.Errorf("%w: episode did not complete", ErrScriptStalled)
	}
	return nil
}

func scriptNegotiate(ctx context.Context, d *Driver) error {
	if err := d.AdvanceTo(ctx, gamedata.PhaseInvestigation); err != nil {
		return err
	}
	if err := d.Gather(ctx); err != nil {
		return err
	}
	if err := d.AdvanceTo(ctx, gamedata.PhaseCombat); err != nil {
		return err
	}
	if err := d.Break(ctx); err != nil {
		return err
	}
	if err := d.Negotiate(ctx, false); err != nil {
		return err
	}
	return d.Finish(ctx)
}

func scriptRitual(ctx context.Context, d *Driver) error {
	if err := d.AdvanceTo(ctx, gamedata.PhaseInvestigation); err != nil {
		return err
	}
	if err := d.Gather(ctx); err != nil {
		return err
	}
	if err := d.AdvanceTo(ctx, gamedata.PhaseCombat); err != nil {
		return err
	}
	if err := d.Break(ctx); err != nil {
		return err
	}
	if err := d.Negotiate(ctx, true); err != nil {
		return err
	}
	return d.Finish(ctx)
}

func scriptSlay(ctx context.Context, d *Driver) error {
	if err := d.AdvanceTo(ctx, gamedata.PhaseInvestigation); err != nil {
		return err
	}
	if err := d.Gather(ctx); err != nil {
		return err
	}
	if err := d.AdvanceTo(ctx, gamedata.PhaseCombat); err != nil {
		return err
	}
	if err := d.closeIn(ctx); err != nil {
		return err
	}

	enc := d.s.Encounter()
	types := d.attackCycle()
	for i := 0; i < maxScriptFrames && !enc.Resolved(); i++ {
		if _, err := d.s.Attack(ctx, types[i%len(types)]); err != nil {
			return err
		}
		if err := d.Tick(ctx, 4); err != nil {
			return err
		}
	}
	if !enc.Resolved() {
		return fmt.Errorf("%w: adversary survived", ErrScriptStalled)
	}
	return d.Finish(ctx)
}

// scriptStealthFail lingers in view until a lockdown, tries gated evidence
// during it, then finishes the case by negotiation.
func scriptStealthFail(ctx context.Context, d *Driver) error {
	if err := d.AdvanceTo(ctx, gamedata.PhaseInvestigation); err != nil {
		return err
	}
	mon := d.s.Infiltration()
	if err := d.Until(ctx, "lockdown", func() bool {
		d.s.ReportSeen(1)
		return mon.IsLockdownActive()
	}); err != nil {
		return err
	}
	for _, e := range d.s.Case().Evidence {
		if e.InfiltrationGated {
			if err := d.s.CollectEvidence(ctx, e.Tag); err != nil && !errors.Is(err, ErrLockdown) {
				return err
			}
		}
	}
	if err := d.Gather(ctx); err != nil {
		return err
	}
	if err := d.AdvanceTo(ctx, gamedata.PhaseCombat); err != nil {
		return err
	}
	if err := d.Break(ctx); err != nil {
		return err
	}
	if err := d.Negotiate(ctx, false); err != nil {
		return err
	}
	return d.Finish(ctx)
}
