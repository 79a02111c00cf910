package game

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/save"
	"github.com/samdwyer/parley/internal/telemetry"
)

// Director sequences the phases of one case. It only moves forward, except
// for a full restart or a resume from a checkpoint.
type Director struct {
	s      *CaseSession
	phases []gamedata.PhaseDef
	logger *zap.Logger

	index       int
	started     bool
	complete    bool
	disabled    bool
	lastOutcome gamedata.Outcome
	metaApplied bool
}

func newDirector(s *CaseSession, phases []gamedata.PhaseDef, logger *zap.Logger) *Director {
	d := &Director{
		s:           s,
		phases:      phases,
		logger:      logger.Named("director"),
		lastOutcome: gamedata.OutcomeNone,
	}
	if len(phases) == 0 {
		d.disabled = true
		d.logger.Warn("case has no phases; director disabled", zap.String("case", s.def.ID))
	}
	return d
}

// BeginEpisode restarts the case from its first phase with a new run.
func (d *Director) BeginEpisode(ctx context.Context) error {
	if d.disabled {
		return ErrNoPhases
	}
	ctx, span := telemetry.Tracer("game").Start(ctx, "episode.begin")
	defer span.End()
	span.SetAttributes(attribute.String("case", d.s.def.ID), attribute.Bool("resumed", false))

	d.reset(gamedata.OutcomeNone)
	d.enter(ctx, 0)
	return nil
}

// BeginEpisodeFromSave starts a new run directly at the phase mapped from
// cp's checkpoint id.
func (d *Director) BeginEpisodeFromSave(ctx context.Context, cp save.Checkpoint) error {
	if d.disabled {
		return ErrNoPhases
	}
	if cp.CaseID != "" && cp.CaseID != d.s.def.ID {
		d.logger.Warn("checkpoint belongs to another case; starting over",
			zap.String("checkpoint_case", cp.CaseID), zap.String("case", d.s.def.ID))
		return d.BeginEpisode(ctx)
	}

	ctx, span := telemetry.Tracer("game").Start(ctx, "episode.begin")
	defer span.End()

	kind := KindForCheckpoint(cp.CheckpointID)
	index := 0
	for i, p := range d.phases {
		if p.Kind == kind {
			index = i
			break
		}
	}
	span.SetAttributes(
		attribute.String("case", d.s.def.ID),
		attribute.Bool("resumed", true),
		attribute.String("checkpoint", cp.CheckpointID),
		attribute.Int("phase", index),
	)

	d.reset(cp.LastOutcome)
	d.enter(ctx, index)
	return nil
}

// DebugJumpToCombat skips straight to the first combat phase.
func (d *Director) DebugJumpToCombat(ctx context.Context) error {
	if d.disabled {
		return ErrNoPhases
	}
	for i, p := range d.phases {
		if p.Kind == gamedata.PhaseCombat {
			if !d.started || d.complete {
				d.reset(gamedata.OutcomeNone)
			}
			d.enter(ctx, i)
			return nil
		}
	}
	return fmt.Errorf("%w: no combat phase", ErrNoPhases)
}

// NextPhase enters the following phase, or completes the case after the last.
func (d *Director) NextPhase(ctx context.Context) {
	if d.disabled || !d.started || d.complete {
		return
	}
	if d.index+1 < len(d.phases) {
		d.enter(ctx, d.index+1)
		return
	}
	d.finish(ctx)
}

func (d *Director) reset(outcome gamedata.Outcome) {
	s := d.s
	d.started = true
	d.complete = false
	d.metaApplied = false
	d.lastOutcome = outcome
	if d.lastOutcome == "" {
		d.lastOutcome = gamedata.OutcomeNone
	}
	s.evidence.Reset()
	s.infiltration.Reset()
	clear(s.refusals)
	s.encounter.Reset()
	s.negotiation.Reset()
	s.player.Reset(s.start)
	s.elapsed = 0
	s.StartRun()
}

// reenter restarts the current phase in place.
func (d *Director) reenter(ctx context.Context) {
	if d.started && !d.complete {
		d.enter(ctx, d.index)
	}
}

func (d *Director) enter(ctx context.Context, index int) {
	ctx, span := telemetry.Tracer("game").Start(ctx, "phase.enter")
	defer span.End()

	s := d.s
	d.index = index
	p := d.phases[index]

	s.controls = controlsFor(p.Kind)
	s.player.SetTargetLock(false)
	s.rules.SetRules(d.rulesFor(p))
	s.rules.SetEnabled(s.controls.Target)
	s.rules.ClearRuntime()

	switch p.Kind {
	case gamedata.PhaseInvestigation:
		s.evidence.SetTarget(p.TargetEvidence)
		s.encounter.SetActive(false)
		s.negotiation.Reset()
	case gamedata.PhaseCombat:
		s.player.Reset(s.start)
		s.encounter.BeginCombat(ctx, s.player)
		s.negotiation.Reset()
		s.negotiation.ClearCooldown()
	default:
		s.encounter.SetActive(false)
		s.negotiation.Reset()
	}

	objective := d.objective(p)
	d.save(ctx, p, objective, true)

	display := DisplayFor(p.Kind, false)
	span.SetAttributes(
		attribute.Int("phase", index),
		attribute.String("phase.kind", string(p.Kind)),
		attribute.String("checkpoint", p.CheckpointID),
	)
	d.logger.Info("phase entered",
		zap.Int("index", index),
		zap.String("kind", string(p.Kind)),
		zap.String("checkpoint", p.CheckpointID),
	)
	s.sink.Publish(events.PhaseEntered{
		Index:        index,
		Phase:        p.Kind,
		Display:      display.String(),
		CheckpointID: p.CheckpointID,
		Objective:    objective,
	})
}

func (d *Director) finish(ctx context.Context) {
	s := d.s
	d.complete = true
	s.controls = Controls{}
	s.rules.SetEnabled(false)
	s.encounter.SetActive(false)

	last := d.phases[len(d.phases)-1]
	d.save(ctx, last, "Case closed.", false)

	d.logger.Info("episode completed", zap.String("case", s.def.ID), zap.String("outcome", string(d.lastOutcome)))
	s.sink.Publish(events.EpisodeCompleted{CaseID: s.def.ID, Outcome: d.lastOutcome})
	s.EndRun()
}

// rulesFor returns the case rules tagged on p. Active phases without tags
// use every case rule.
func (d *Director) rulesFor(p gamedata.PhaseDef) []gamedata.RuleDef {
	all := d.s.def.Rules
	if len(p.RuleTags) == 0 {
		if p.Kind == gamedata.PhaseInvestigation || p.Kind == gamedata.PhaseCombat {
			return all
		}
		return nil
	}
	var out []gamedata.RuleDef
	for _, tag := range p.RuleTags {
		for _, r := range all {
			if r.ID == tag {
				out = append(out, r)
			}
		}
	}
	return out
}

func (d *Director) objective(p gamedata.PhaseDef) string {
	if p.Objective != "" {
		return p.Objective
	}
	switch p.Kind {
	case gamedata.PhaseInvestigation:
		return fmt.Sprintf("Collect %d pieces of evidence.", p.TargetEvidence)
	case gamedata.PhaseCombat:
		return fmt.Sprintf("Break %s, then negotiate.", d.s.def.Adversary.Name)
	case gamedata.PhaseOutro:
		return "Review the outcome."
	default:
		return "Hear the case."
	}
}

func (d *Director) save(ctx context.Context, p gamedata.PhaseDef, objective string, interrupted bool) {
	ctx, span := telemetry.Tracer("game").Start(ctx, "checkpoint.save")
	defer span.End()

	s := d.s
	cp := save.Checkpoint{
		CaseID:         s.def.ID,
		CheckpointID:   p.CheckpointID,
		WasInterrupted: interrupted,
		LastOutcome:    d.lastOutcome,
		NextObjective:  objective,
		RuleTags:       append([]string(nil), p.RuleTags...),
		EvidenceCardID: s.evidence.LastCardID(),
		SavedAt:        time.Now(),
	}
	if s.run != nil {
		cp.RunID = s.run.ID
	}
	span.SetAttributes(attribute.String("checkpoint", cp.CheckpointID), attribute.Bool("interrupted", interrupted))
	if err := s.store.SaveCheckpoint(ctx, cp); err != nil {
		d.logger.Warn("save checkpoint failed", zap.Error(err))
	}
}

func (d *Director) recordOutcome(o gamedata.Outcome) {
	if o != gamedata.OutcomeSlay {
		d.lastOutcome = o
	}
}

// Current returns the current phase, or a zero PhaseDef before the first.
func (d *Director) Current() gamedata.PhaseDef {
	if d.disabled || !d.started {
		return gamedata.PhaseDef{}
	}
	return d.phases[d.index]
}

// Index returns the current phase index.
func (d *Director) Index() int { return d.index }

// IsComplete reports whether the case has moved past its last phase.
func (d *Director) IsComplete() bool { return d.complete }

// Started reports whether an episode is running or finished.
func (d *Director) Started() bool { return d.started }

// Disabled reports whether the case content lacked phases.
func (d *Director) Disabled() bool { return d.disabled }

// LastOutcome returns the negotiated outcome, OutcomeNone if there was none.
func (d *Director) LastOutcome() gamedata.Outcome { return d.lastOutcome }
