package combat

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/telemetry"
	"github.com/samdwyer/parley/internal/world"
)

var (
	// ErrNoAdversary is returned when no adversary is spawned.
	ErrNoAdversary = errors.New("no adversary in play")
	// ErrUnknownAttack is returned for attack types the case does not define.
	ErrUnknownAttack = errors.New("unknown attack type")
	// ErrInactive is returned when combat actions are disabled.
	ErrInactive = errors.New("combat is not active")
)

// Encounter is the combat model for one case: it spawns the adversary,
// runs its AI and terminates combat exactly once, either by the adversary's
// death or by a negotiated outcome.
type Encounter struct {
	def      gamedata.AdversaryDef
	resolver *AttackResolver
	arena    *world.Arena

	adv      *Adversary
	player   Combatant
	active   bool
	resolved bool
	outcome  gamedata.Outcome

	run        *ledger.Run
	onResolved func(context.Context, gamedata.Outcome)
	sink       events.Sink
	logger     *zap.Logger
}

// NewEncounter prepares an encounter. Nothing is spawned until BeginCombat.
func NewEncounter(def gamedata.AdversaryDef, attacks []gamedata.AttackDef, logger *zap.Logger, sink events.Sink) *Encounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encounter{
		def:      def,
		resolver: NewAttackResolver(attacks),
		outcome:  gamedata.OutcomeNone,
		sink:     events.OrNop(sink),
		logger:   logger.Named("combat"),
	}
}

// BindRun directs damage and break scaling to run.
func (e *Encounter) BindRun(run *ledger.Run) { e.run = run }

// SetArena constrains adversary movement to passable tiles.
func (e *Encounter) SetArena(a *world.Arena) { e.arena = a }

// OnResolved registers the single cleanup continuation, called once per
// combat with the final outcome.
func (e *Encounter) OnResolved(fn func(context.Context, gamedata.Outcome)) { e.onResolved = fn }

// BeginCombat spawns (or respawns) the adversary and activates the AI.
func (e *Encounter) BeginCombat(ctx context.Context, player Combatant) {
	_, span := telemetry.Tracer("combat").Start(ctx, "combat.begin")
	defer span.End()

	e.adv = NewAdversary(&e.def)
	e.player = player
	e.active = true
	e.resolved = false
	e.outcome = gamedata.OutcomeNone

	span.SetAttributes(
		attribute.String("adversary", e.def.ID),
		attribute.Float64("adversary.hp", e.def.HP),
		attribute.Float64("adversary.break", e.def.Break),
	)
	e.logger.Info("combat started", zap.String("adversary", e.def.ID))
}

// SetActive enables or suspends the adversary AI and player attacks.
func (e *Encounter) SetActive(on bool) { e.active = on }

// Active reports whether combat is running.
func (e *Encounter) Active() bool { return e.active && e.adv != nil }

// Tick advances the adversary's timers and AI.
func (e *Encounter) Tick(dt time.Duration) {
	if !e.Active() {
		return
	}
	adv := e.adv

	if adv.Break.Tick(dt) {
		e.sink.Publish(events.AdversaryRecovered{})
	}
	adv.Rage.Tick(dt)

	step := adv.think(dt, e.player, e.arena)
	if step.attacked && step.damage > 0 {
		if e.run != nil {
			e.run.RecordHit(step.damage)
		}
		e.sink.Publish(events.PlayerHit{Damage: step.damage})
	}
}

// PlayerAttack resolves one player attack against the adversary. Killing
// the adversary resolves combat with OutcomeSlay.
func (e *Encounter) PlayerAttack(ctx context.Context, t gamedata.AttackType) (AttackResult, error) {
	if !e.active {
		return AttackResult{}, ErrInactive
	}
	if e.adv == nil {
		return AttackResult{}, ErrNoAdversary
	}
	if !e.resolver.Known(t) {
		return AttackResult{}, ErrUnknownAttack
	}

	var origin world.Vec
	if e.player != nil {
		origin = e.player.Position()
	}
	multiplier := 1.0
	if e.run != nil {
		multiplier = e.run.BreakRecoveryMultiplier()
	}

	result := e.resolver.Resolve(t, origin, e.adv, multiplier)
	if result.Broke {
		e.logger.Info("adversary broken", zap.Duration("recovery", e.adv.Break.Remaining()))
		e.sink.Publish(events.AdversaryBroken{Recovery: e.adv.Break.Remaining()})
	}
	if result.Killed {
		e.resolve(ctx, gamedata.OutcomeSlay)
	}
	return result, nil
}

// ResolveByNegotiation ends combat with a negotiated outcome.
func (e *Encounter) ResolveByNegotiation(ctx context.Context, outcome gamedata.Outcome) error {
	if e.adv == nil || e.resolved {
		return ErrNoAdversary
	}
	e.resolve(ctx, outcome)
	return nil
}

// resolve is the single cleanup path: it removes the adversary, records the
// outcome and hands control back to the phase director.
func (e *Encounter) resolve(ctx context.Context, outcome gamedata.Outcome) {
	_, span := telemetry.Tracer("combat").Start(ctx, "combat.resolve")
	span.SetAttributes(attribute.String("outcome", string(outcome)))
	if e.run != nil {
		span.SetAttributes(
			attribute.Float64("damage_taken", e.run.DamageTaken()),
			attribute.Int("violations", e.run.ViolationCount()),
		)
	}
	span.End()

	e.adv = nil
	e.active = false
	e.resolved = true
	e.outcome = outcome

	e.logger.Info("combat resolved", zap.String("outcome", string(outcome)))
	e.sink.Publish(events.OutcomeResolved{Outcome: outcome})
	if e.onResolved != nil {
		e.onResolved(ctx, outcome)
	}
}

// Enrage starts the adversary's enrage window. It reports false when no
// adversary is spawned.
func (e *Encounter) Enrage() bool {
	if e.adv == nil {
		return false
	}
	d := e.def.EnrageDuration()
	e.adv.Rage.Trigger(d, e.def.EnrageSpeedMultiplier, e.def.EnrageCadenceMultiplier)
	e.logger.Info("adversary enraged", zap.Duration("duration", d))
	e.sink.Publish(events.AdversaryEnraged{Duration: d})
	return true
}

// IsBroken reports whether the adversary is currently broken.
func (e *Encounter) IsBroken() bool {
	return e.adv != nil && e.adv.Break.IsBroken()
}

// IsEnraged reports whether the adversary is enraged.
func (e *Encounter) IsEnraged() bool {
	return e.adv != nil && e.adv.Rage.Active()
}

// InRange reports whether the player is close enough to negotiate.
func (e *Encounter) InRange() bool {
	if e.adv == nil || e.player == nil {
		return false
	}
	return e.player.Position().Within(e.adv.Pos, e.def.NegotiationRange)
}

// Adversary returns the spawned adversary, or nil.
func (e *Encounter) Adversary() *Adversary { return e.adv }

// Resolved reports whether combat has ended.
func (e *Encounter) Resolved() bool { return e.resolved }

// Outcome returns the final outcome, OutcomeNone until resolved.
func (e *Encounter) Outcome() gamedata.Outcome { return e.outcome }

// Reset despawns the adversary without resolving combat.
func (e *Encounter) Reset() {
	e.adv = nil
	e.active = false
	e.resolved = false
	e.outcome = gamedata.OutcomeNone
}
