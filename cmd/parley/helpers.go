package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/game"
	"github.com/samdwyer/parley/internal/save"
)

// resume starts session from the stored checkpoint when the last episode
// of the same case was interrupted. Otherwise the session is left for the
// game loop to start from the beginning.
func resume(ctx context.Context, session *game.CaseSession, store save.Store, logger *zap.Logger) error {
	cp, err := store.LoadCheckpoint(ctx)
	if errors.Is(err, save.ErrNotFound) {
		return nil
	}
	if err != nil {
		logger.Warn("load checkpoint failed; starting over", zap.Error(err))
		return nil
	}
	if !cp.WasInterrupted || cp.CaseID != session.Case().ID {
		return nil
	}
	logger.Info("resuming", zap.String("checkpoint", cp.CheckpointID))
	return session.Director().BeginEpisodeFromSave(ctx, cp)
}

// eventLine formats events worth echoing in verbose simulations.
func eventLine(e events.Event) (string, bool) {
	switch ev := e.(type) {
	case events.PhaseEntered:
		return "phase " + ev.Display + " (" + ev.CheckpointID + ")", true
	case events.Violation:
		return "violation " + ev.RuleID + ": " + ev.Reason, true
	case events.EvidenceCollected:
		return "evidence " + string(ev.Tag), true
	case events.NegotiationSucceeded:
		return "negotiated " + string(ev.Outcome) + " via " + ev.Option, true
	case events.NegotiationFailed:
		return "negotiation failed: " + ev.Reason, true
	case events.RitualFailed:
		return "ritual failed: " + ev.Reason, true
	case events.LockdownStarted:
		return "lockdown", true
	case events.OutcomeResolved:
		return "resolved " + string(ev.Outcome), true
	case events.Toast:
		return "> " + ev.Text, true
	}
	return "", false
}
