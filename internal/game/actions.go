package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/combat"
	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
)

// Move steps the investigator. Movement stops while a negotiation is open.
func (s *CaseSession) Move(dx, dy float64) error {
	if !s.controls.Move || s.negotiation.IsOpen() {
		return ErrNotAllowed
	}
	s.player.Move(s.arena, dx, dy)
	return nil
}

// ToggleTargetLock locks onto the adversary or releases the lock.
func (s *CaseSession) ToggleTargetLock() (bool, error) {
	if !s.controls.Target {
		return false, ErrNotAllowed
	}
	on := !s.player.TargetLocked()
	s.player.SetTargetLock(on)
	s.rules.SetTargetLock(on)
	return on, nil
}

// Attack performs a typed attack. Every executed attack is reported to
// the rule engine.
func (s *CaseSession) Attack(ctx context.Context, t gamedata.AttackType) (combat.AttackResult, error) {
	if !s.controls.Combat || s.negotiation.IsOpen() {
		return combat.AttackResult{}, ErrNotAllowed
	}
	res, err := s.encounter.PlayerAttack(ctx, t)
	if err != nil {
		return res, err
	}
	s.rules.ReportAttack(t)
	if res.Message != "" {
		s.sink.Publish(events.Toast{Text: res.Message})
	}
	return res, nil
}

// ReportSeen forwards a detection report to the infiltration monitor.
func (s *CaseSession) ReportSeen(intensity float64) {
	if s.controls.Target {
		s.infiltration.ReportSeen(intensity)
	}
}

// CollectEvidence records tag from the case catalog. Gated evidence is
// refused during a lockdown. The first refusal of each tag per lockdown
// grants one insight.
func (s *CaseSession) CollectEvidence(ctx context.Context, tag gamedata.EvidenceTag) error {
	if !s.controls.Target {
		return ErrNotAllowed
	}
	def := s.def.EvidenceByTag(tag)
	if def == nil {
		s.sink.Publish(events.Toast{Text: "There is nothing useful here."})
		return fmt.Errorf("%w: %s", ErrUnknownEvidence, tag)
	}

	if def.InfiltrationGated && s.infiltration.IsLockdownActive() {
		lockdown := s.infiltration.LockdownCount()
		if s.run != nil && s.refusals[tag] != lockdown {
			s.refusals[tag] = lockdown
			s.run.AddInsight(1)
		}
		s.logger.Info("evidence refused during lockdown",
			zap.String("tag", string(tag)), zap.Int("lockdown", lockdown))
		s.sink.Publish(events.Toast{Text: fmt.Sprintf("Lockdown: %s is out of reach, but you learn how it is guarded.", def.Label)})
		return ErrLockdown
	}

	if !s.evidence.AddCard(tag, def.CardID) {
		return nil
	}
	label := def.Label
	if label == "" {
		label = string(tag)
	}
	s.logger.Info("evidence collected", zap.String("tag", string(tag)), zap.Int("have", s.evidence.Count()))
	s.sink.Publish(events.EvidenceCollected{
		Tag:    tag,
		Label:  label,
		Have:   s.evidence.Count(),
		Target: s.evidence.Target(),
	})
	return nil
}

// Examine collects the evidence of the zone the investigator stands in.
func (s *CaseSession) Examine(ctx context.Context) error {
	if !s.controls.Target {
		return ErrNotAllowed
	}
	zone, ok := s.arena.ZoneAt(s.player.Pos)
	if !ok {
		return ErrNoZone
	}
	return s.CollectEvidence(ctx, gamedata.EvidenceTag(zone.Name))
}

// Advance moves past a phase the player controls: story and result
// phases always, investigation once the evidence target is met. Combat
// only ends through resolution.
func (s *CaseSession) Advance(ctx context.Context) error {
	if !s.director.Started() || s.director.IsComplete() {
		return ErrNotAllowed
	}
	switch s.Phase().Kind {
	case gamedata.PhaseCombat:
		s.sink.Publish(events.Toast{Text: "The confrontation is not over."})
		return ErrNotAllowed
	case gamedata.PhaseInvestigation:
		if !s.evidence.TargetMet() {
			s.sink.Publish(events.Toast{Text: fmt.Sprintf("You need %d pieces of evidence.", s.evidence.Target())})
			return ErrNotAllowed
		}
	}
	s.director.NextPhase(ctx)
	return nil
}
