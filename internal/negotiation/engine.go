// Package negotiation implements the evidence-gated negotiation that can
// end combat without a kill: stance concessions, counter-offers,
// emergency arbitration and the sealing ritual.
package negotiation

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/telemetry"
)

var (
	ErrAlreadyOpen       = errors.New("negotiation already open")
	ErrOnCooldown        = errors.New("negotiation on cooldown")
	ErrNotBroken         = errors.New("adversary is not broken")
	ErrOutOfRange        = errors.New("adversary out of range")
	ErrNotOpen           = errors.New("negotiation is not open")
	ErrInvalidOption     = errors.New("invalid negotiation option")
	ErrNoArbitrationPass = errors.New("no arbitration pass available")
	ErrNoCounterOffer    = errors.New("no counter-offer pending")
	ErrNoRitual          = errors.New("no ritual in progress")
	ErrRitualActive      = errors.New("ritual in progress")
)

// Adversary is what the engine needs from the combat model.
type Adversary interface {
	IsBroken() bool
	InRange() bool
	Enrage() bool
	ResolveByNegotiation(ctx context.Context, outcome gamedata.Outcome) error
}

// State is the engine's session state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateCounterOffered
	StateRitual
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateCounterOffered:
		return "counter_offered"
	case StateRitual:
		return "ritual"
	default:
		return "unknown"
	}
}

// CounterOffer proposes an option (by case option index) and stance that
// would satisfy the gate.
type CounterOffer struct {
	Option int
	Label  string
	Stance gamedata.Stance
}

// ResultKind says how a choice ended.
type ResultKind int

const (
	ResultResolved ResultKind = iota
	ResultCounterOffered
	ResultRitualStarted
	ResultRitualAdvanced
	ResultFailed
	ResultRitualFailed
)

// Result describes the effect of Choose, AcceptCounterOffer or InputRitual.
type Result struct {
	Kind      ResultKind
	Outcome   gamedata.Outcome
	Gate      Gate
	Counter   *CounterOffer
	AdminCost float64
	Enraged   bool
}

// pending is a successful choice awaiting finalization.
type pending struct {
	option    int
	outcome   gamedata.Outcome
	cost      float64
	debtDelta int
}

// Engine runs one negotiation session at a time against a single adversary.
type Engine struct {
	def      gamedata.NegotiationDef
	evidence EvidenceReader
	adv      Adversary
	meta     *ledger.Meta
	run      *ledger.Run
	rng      *rand.Rand
	sink     events.Sink
	logger   *zap.Logger

	state   State
	stance  gamedata.Stance
	visible []int
	counter *CounterOffer
	ritual  *Ritual
	pending *pending

	cooldown            time.Duration
	consecutiveFailures int
}

// NewEngine creates a closed engine. A nil rng seeds ritual generation with 1.
func NewEngine(def gamedata.NegotiationDef, evidence EvidenceReader, adv Adversary, meta *ledger.Meta, rng *rand.Rand, logger *zap.Logger, sink events.Sink) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if meta == nil {
		meta = ledger.NewMeta()
	}
	return &Engine{
		def:      def,
		evidence: evidence,
		adv:      adv,
		meta:     meta,
		rng:      rng,
		sink:     events.OrNop(sink),
		logger:   logger.Named("negotiation"),
	}
}

// BindRun directs insight, admin cost and attempt logging to run.
func (e *Engine) BindRun(run *ledger.Run) { e.run = run }

// CanBegin reports why Begin would be rejected, or nil.
func (e *Engine) CanBegin() error {
	switch {
	case e.state != StateClosed:
		return ErrAlreadyOpen
	case e.cooldown > 0:
		return ErrOnCooldown
	case e.adv == nil || !e.adv.IsBroken():
		return ErrNotBroken
	case !e.adv.InRange():
		return ErrOutOfRange
	}
	return nil
}

// Begin opens a session at Firm stance. The visible option set is fixed
// here: emergency options needing a pass are hidden when none is held.
func (e *Engine) Begin(ctx context.Context) error {
	if err := e.CanBegin(); err != nil {
		return e.reject(err, beginToast(err))
	}

	e.clearSession()
	e.stance = gamedata.StanceFirm
	for i := range e.def.Options {
		opt := &e.def.Options[i]
		if opt.NeedsPass() && e.meta.ArbitrationPasses() == 0 {
			continue
		}
		e.visible = append(e.visible, i)
	}
	e.state = StateOpen

	labels := make([]string, len(e.visible))
	for i, idx := range e.visible {
		labels[i] = e.def.Options[idx].Label
	}
	e.logger.Info("negotiation opened", zap.Int("options", len(labels)))
	e.sink.Publish(events.NegotiationOpened{Options: labels, Stance: e.stance})
	return nil
}

func beginToast(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyOpen):
		return "Already negotiating."
	case errors.Is(err, ErrOnCooldown):
		return "It will not hear you yet."
	case errors.Is(err, ErrNotBroken):
		return "It must be broken before it will listen."
	case errors.Is(err, ErrOutOfRange):
		return "Get closer to negotiate."
	}
	return err.Error()
}

// Choose attempts the visible option at index i under the current stance.
func (e *Engine) Choose(ctx context.Context, i int) (Result, error) {
	switch e.state {
	case StateClosed:
		return Result{}, e.reject(ErrNotOpen, "No negotiation is open.")
	case StateRitual:
		return Result{}, e.reject(ErrRitualActive, "Finish the ritual first.")
	}
	if i < 0 || i >= len(e.visible) {
		return Result{}, e.reject(ErrInvalidOption, "That is not an option.")
	}
	return e.choose(ctx, e.visible[i])
}

func (e *Engine) choose(ctx context.Context, idx int) (Result, error) {
	opt := &e.def.Options[idx]
	if opt.Emergency {
		return e.chooseEmergency(ctx, idx)
	}

	ctx, span := telemetry.Tracer("negotiation").Start(ctx, "negotiation.choose")
	defer span.End()

	e.counter = nil
	gate := e.gate(opt, e.stance)
	cost := AdminCost(e.def.BaseCosts, e.stance, e.meta.TruceDebt(), e.meta.Distortion()) + opt.ExtraAdminCost
	e.recordAttempt(opt, gate, false)

	span.SetAttributes(
		attribute.String("option", opt.Label),
		attribute.String("stance", e.stance.String()),
		attribute.Int("final_required", gate.FinalRequired),
		attribute.Int("have", gate.Have),
		attribute.Bool("can_succeed", gate.CanSucceed),
	)

	if gate.CanSucceed {
		p := &pending{option: idx, outcome: opt.Outcome, cost: cost, debtDelta: opt.DebtDelta}
		if opt.Outcome == gamedata.OutcomeSeal && e.def.Ritual.Enabled {
			e.startRitual(p)
			return Result{Kind: ResultRitualStarted, Outcome: opt.Outcome, Gate: gate}, nil
		}
		res := e.finalize(ctx, p)
		res.Gate = gate
		return res, nil
	}

	if offer := e.findCounterOffer(idx); offer != nil {
		e.counter = offer
		e.state = StateCounterOffered
		e.logger.Debug("counter-offer", zap.String("option", offer.Label), zap.Stringer("stance", offer.Stance))
		e.sink.Publish(events.CounterOffered{Option: offer.Label, Stance: offer.Stance})
		return Result{Kind: ResultCounterOffered, Gate: gate, Counter: offer}, nil
	}

	res := e.fullFailure()
	res.Gate = gate
	return res, nil
}

func (e *Engine) chooseEmergency(ctx context.Context, idx int) (Result, error) {
	opt := &e.def.Options[idx]
	if opt.NeedsPass() && !e.meta.ConsumePass() {
		return Result{}, e.reject(ErrNoArbitrationPass, "No arbitration pass to spend.")
	}

	_, span := telemetry.Tracer("negotiation").Start(ctx, "negotiation.choose")
	span.SetAttributes(attribute.String("option", opt.Label), attribute.Bool("emergency", true))
	span.End()

	e.counter = nil
	e.recordAttempt(opt, Gate{CanSucceed: true}, true)
	return e.finalize(ctx, &pending{
		option:    idx,
		outcome:   opt.Outcome,
		cost:      opt.EmergencyCost + opt.ExtraAdminCost,
		debtDelta: opt.DebtDelta,
	}), nil
}

// CycleStance moves to the next stance, wrapping at MaxConcession. Any
// pending counter-offer is dropped.
func (e *Engine) CycleStance() gamedata.Stance {
	if e.state != StateOpen && e.state != StateCounterOffered {
		return e.stance
	}
	next := e.stance.Next()
	if next > e.def.ConcessionCap() {
		next = gamedata.StanceFirm
	}
	e.stance = next
	e.dropCounter()
	e.sink.Publish(events.StanceChanged{Stance: next})
	return next
}

// SetStance selects a stance directly, up to MaxConcession.
func (e *Engine) SetStance(s gamedata.Stance) {
	if e.state != StateOpen && e.state != StateCounterOffered {
		return
	}
	if s < gamedata.StanceFirm || s > e.def.ConcessionCap() || s == e.stance {
		return
	}
	e.stance = s
	e.dropCounter()
	e.sink.Publish(events.StanceChanged{Stance: s})
}

func (e *Engine) dropCounter() {
	e.counter = nil
	if e.state == StateCounterOffered {
		e.state = StateOpen
	}
}

// AcceptCounterOffer adopts the offered stance and re-runs the choice.
func (e *Engine) AcceptCounterOffer(ctx context.Context) (Result, error) {
	if e.state != StateCounterOffered || e.counter == nil {
		return Result{}, e.reject(ErrNoCounterOffer, "Nothing has been offered.")
	}
	offer := *e.counter
	e.counter = nil
	e.state = StateOpen
	if offer.Stance != e.stance {
		e.stance = offer.Stance
		e.sink.Publish(events.StanceChanged{Stance: offer.Stance})
	}
	return e.choose(ctx, offer.Option)
}

// DeclineCounterOffer drops the offer and keeps the session open.
func (e *Engine) DeclineCounterOffer() error {
	if e.state != StateCounterOffered {
		return e.reject(ErrNoCounterOffer, "Nothing has been offered.")
	}
	e.dropCounter()
	return nil
}

// InputRitual feeds one direction to the active ritual.
func (e *Engine) InputRitual(ctx context.Context, d Direction) (Result, error) {
	if e.state != StateRitual || e.ritual == nil {
		return Result{}, e.reject(ErrNoRitual, "No ritual is under way.")
	}

	switch e.ritual.Input(d) {
	case StepAdvanced:
		e.sink.Publish(events.RitualProgress{Step: e.ritual.Index(), Total: len(e.ritual.sequence)})
		return Result{Kind: ResultRitualAdvanced, Outcome: e.pending.outcome}, nil
	case StepCompleted:
		e.sink.Publish(events.RitualProgress{Step: e.ritual.Index(), Total: len(e.ritual.sequence)})
		_, span := telemetry.Tracer("negotiation").Start(ctx, "negotiation.ritual")
		span.SetAttributes(attribute.Int("length", len(e.ritual.sequence)), attribute.Bool("success", true))
		span.End()
		return e.finalize(ctx, e.pending), nil
	default:
		return e.failRitual(ctx, "wrong input", false), nil
	}
}

// AbortRitual voluntarily abandons the ritual. It is a failure that never enrages.
func (e *Engine) AbortRitual(ctx context.Context) error {
	if e.state != StateRitual {
		return e.reject(ErrNoRitual, "No ritual is under way.")
	}
	e.failRitual(ctx, "aborted", true)
	return nil
}

// Close ends the session and starts the regular cooldown, lengthened by
// the run's negotiation penalty. Closing during a ritual aborts it.
func (e *Engine) Close(ctx context.Context) error {
	switch e.state {
	case StateClosed:
		return ErrNotOpen
	case StateRitual:
		return e.AbortRitual(ctx)
	}
	penalty := 0.0
	if e.run != nil {
		penalty = e.run.NegotiationPenalty()
	}
	e.shut(time.Duration(math.Round(float64(e.def.Cooldown()) * (1 + penalty))))
	return nil
}

// Tick advances the cooldown by scaled time and the ritual step timer by
// unscaled time. An open session closes itself if the adversary recovers.
func (e *Engine) Tick(ctx context.Context, dt, unscaled time.Duration) {
	if e.cooldown > 0 {
		e.cooldown -= dt
		if e.cooldown < 0 {
			e.cooldown = 0
		}
	}

	switch e.state {
	case StateRitual:
		if e.ritual.Tick(unscaled) {
			e.failRitual(ctx, "timed out", false)
		}
	case StateOpen, StateCounterOffered:
		if e.adv == nil || !e.adv.IsBroken() {
			e.sink.Publish(events.Toast{Text: "The opening has passed."})
			e.shut(e.def.Cooldown())
		}
	}
}

// ClearCooldown lets a new session open immediately.
func (e *Engine) ClearCooldown() { e.cooldown = 0 }

// Reset returns the engine to a fresh closed state for a new combat.
func (e *Engine) Reset() {
	e.clearSession()
	e.state = StateClosed
	e.cooldown = 0
	e.consecutiveFailures = 0
}

// State returns the session state.
func (e *Engine) State() State { return e.state }

// IsOpen reports whether any session is open, including a ritual.
func (e *Engine) IsOpen() bool { return e.state != StateClosed }

// Stance returns the current stance.
func (e *Engine) Stance() gamedata.Stance { return e.stance }

// Cooldown returns the time until Begin is allowed again.
func (e *Engine) Cooldown() time.Duration { return e.cooldown }

// ConsecutiveFailures returns the number of full failures since the last success.
func (e *Engine) ConsecutiveFailures() int { return e.consecutiveFailures }

// Counter returns the pending counter-offer, or nil.
func (e *Engine) Counter() *CounterOffer { return e.counter }

// Ritual returns the active ritual, or nil.
func (e *Engine) Ritual() *Ritual { return e.ritual }

// VisibleOptions returns the options offered in this session.
func (e *Engine) VisibleOptions() []gamedata.OptionDef {
	out := make([]gamedata.OptionDef, len(e.visible))
	for i, idx := range e.visible {
		out[i] = e.def.Options[idx]
	}
	return out
}

// Preview computes the gate of visible option i under the current stance
// without side effects.
func (e *Engine) Preview(i int) (Gate, bool) {
	if i < 0 || i >= len(e.visible) {
		return Gate{}, false
	}
	opt := &e.def.Options[e.visible[i]]
	if opt.Emergency {
		return Gate{CanSucceed: true}, true
	}
	return e.gate(opt, e.stance), true
}

func (e *Engine) gate(opt *gamedata.OptionDef, s gamedata.Stance) Gate {
	insight := 0
	if e.run != nil {
		insight = e.run.Insight()
	}
	return ComputeGate(opt, s, e.evidence, insight, e.def.InsightPerReduction)
}

func (e *Engine) recordAttempt(opt *gamedata.OptionDef, g Gate, emergency bool) {
	if e.run == nil {
		return
	}
	e.run.RecordAttempt(ledger.Attempt{
		Option:    opt.Label,
		Stance:    e.stance,
		Required:  g.FinalRequired,
		Have:      g.Have,
		Success:   g.CanSucceed,
		Emergency: emergency,
	})
}

func (e *Engine) startRitual(p *pending) {
	r := e.def.Ritual
	e.pending = p
	e.ritual = NewRitual(GenerateSequence(r.Length, e.rng), r.StepBudget())
	e.state = StateRitual

	seq := make([]string, r.Length)
	for i, d := range e.ritual.sequence {
		seq[i] = d.String()
	}
	e.logger.Info("ritual started", zap.Int("length", r.Length))
	e.sink.Publish(events.RitualStarted{Sequence: seq, Budget: e.ritual.Budget()})
}

// finalize applies the cost of a successful choice exactly once, closes the
// session and resolves combat.
func (e *Engine) finalize(ctx context.Context, p *pending) Result {
	if e.run != nil {
		e.run.AddAdminCost(p.cost)
	}
	if p.debtDelta != 0 {
		e.meta.AddTruceDebt(p.debtDelta)
	}
	e.consecutiveFailures = 0
	label := e.def.Options[p.option].Label

	e.logger.Info("negotiation succeeded",
		zap.String("option", label),
		zap.String("outcome", string(p.outcome)),
		zap.Float64("admin_cost", p.cost),
	)
	e.sink.Publish(events.NegotiationSucceeded{Option: label, Outcome: p.outcome, AdminCost: p.cost})
	e.shut(e.def.Cooldown())

	if e.adv != nil {
		if err := e.adv.ResolveByNegotiation(ctx, p.outcome); err != nil {
			e.logger.Warn("resolve failed", zap.Error(err))
		}
	}
	return Result{Kind: ResultResolved, Outcome: p.outcome, AdminCost: p.cost}
}

func (e *Engine) fullFailure() Result {
	e.consecutiveFailures++
	if e.run != nil {
		e.run.AddInsight(1)
	}
	enraged := false
	if e.def.FailEnrage && e.consecutiveFailures >= 2 && e.adv != nil {
		enraged = e.adv.Enrage()
	}

	e.logger.Info("negotiation failed",
		zap.String("reason", "insufficient evidence"),
		zap.Int("consecutive", e.consecutiveFailures),
		zap.Bool("enraged", enraged),
	)
	e.sink.Publish(events.NegotiationFailed{Reason: "insufficient evidence", Enraged: enraged})
	e.shut(e.def.FailCooldown())
	return Result{Kind: ResultFailed, Enraged: enraged}
}

func (e *Engine) failRitual(ctx context.Context, reason string, voluntary bool) Result {
	_, span := telemetry.Tracer("negotiation").Start(ctx, "negotiation.ritual")
	span.SetAttributes(attribute.Bool("success", false), attribute.String("reason", reason))
	span.End()

	if e.run != nil {
		e.run.AddAdminCost(e.def.Ritual.FailCost)
		e.run.AddInsight(1)
	}
	enraged := false
	if !voluntary && e.def.Ritual.FailEnrage && e.adv != nil {
		enraged = e.adv.Enrage()
	}

	e.logger.Info("ritual failed", zap.String("reason", reason), zap.Bool("voluntary", voluntary))
	e.sink.Publish(events.RitualFailed{Reason: reason, Voluntary: voluntary})
	e.shut(e.def.FailCooldown())
	return Result{Kind: ResultRitualFailed, Enraged: enraged}
}

// shut closes the session and starts a cooldown.
func (e *Engine) shut(cooldown time.Duration) {
	e.clearSession()
	e.state = StateClosed
	e.cooldown = cooldown
	e.sink.Publish(events.NegotiationClosed{})
}

func (e *Engine) clearSession() {
	e.visible = nil
	e.counter = nil
	e.ritual = nil
	e.pending = nil
}

func (e *Engine) reject(err error, toast string) error {
	e.logger.Debug("rejected", zap.Error(err))
	e.sink.Publish(events.Toast{Text: toast})
	return err
}
