package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/negotiation"
	"github.com/samdwyer/parley/internal/ui"
)

func newTestGame(t *testing.T, caseID string) (*Game, *harness, tcell.SimulationScreen) {
	t.Helper()
	h := newHarness(t, caseID)
	sim := tcell.NewSimulationScreen("")
	screen, err := ui.NewScreenFrom(sim)
	require.NoError(t, err)
	sim.SetSize(100, 40)
	return NewGame(h.s, screen, 10*time.Millisecond, zaptest.NewLogger(t)), h, sim
}

func TestGameQuitsOnKeyWithoutLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	g, h, sim := newTestGame(t, "ferryman")
	sim.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("game did not quit")
	}
	require.Equal(t, gamedata.PhaseInvestigation, h.s.Phase().Kind)
}

func TestGameStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	g, _, _ := newTestGame(t, "ferryman")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("game did not stop")
	}
}

func TestHandleNegotiationKeys(t *testing.T) {
	g, h, _ := newTestGame(t, "ferryman")
	defer g.screen.Close()
	ctx := context.Background()
	s := h.s

	require.NoError(t, s.Director().DebugJumpToCombat(ctx))
	s.Encounter().Adversary().Pos = s.Player().Pos
	for !s.Encounter().IsBroken() {
		_, err := s.Attack(ctx, gamedata.AttackHeavy)
		require.NoError(t, err)
		s.Tick(ctx, SimFrame)
	}

	require.NoError(t, g.handle(ctx, ui.ActionNegotiate))
	require.True(t, s.Negotiation().IsOpen())
	require.Equal(t, DisplayNegotiation, s.Display())

	require.NoError(t, g.handle(ctx, ui.ActionStance))
	require.Equal(t, gamedata.StanceBalanced, s.Negotiation().Stance())

	// Movement is frozen during a negotiation.
	before := s.Player().Pos
	require.NoError(t, g.handle(ctx, ui.ActionLeft))
	require.Equal(t, before, s.Player().Pos)

	frame := g.Frame()
	require.NotEmpty(t, frame.Panel)
	require.Contains(t, frame.Panel[0], "balanced")

	require.NoError(t, g.handle(ctx, ui.ActionConcede))
	require.Equal(t, gamedata.StanceConcede, s.Negotiation().Stance())
	require.NoError(t, g.handle(ctx, ui.ActionFirm))
	require.Equal(t, gamedata.StanceFirm, s.Negotiation().Stance())

	require.NoError(t, g.handle(ctx, ui.ActionClose))
	require.False(t, s.Negotiation().IsOpen())
}

func TestHandleRitualInputs(t *testing.T) {
	g, h, _ := newTestGame(t, "ferryman")
	defer g.screen.Close()
	ctx := context.Background()
	s := h.s
	d := &Driver{s: s}

	h.begin(t, gamedata.PhaseInvestigation)
	require.NoError(t, d.Gather(ctx))
	require.NoError(t, d.AdvanceTo(ctx, gamedata.PhaseCombat))
	require.NoError(t, d.Break(ctx))
	require.NoError(t, d.Until(ctx, "negotiation available", func() bool {
		return s.Negotiation().CanBegin() == nil
	}))
	require.NoError(t, g.handle(ctx, ui.ActionNegotiate))
	require.True(t, s.Negotiation().IsOpen())

	res, err := s.Negotiation().Choose(ctx, d.pickOption(true))
	require.NoError(t, err)
	if res.Kind == negotiation.ResultCounterOffered {
		res, err = s.Negotiation().AcceptCounterOffer(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, negotiation.ResultRitualStarted, res.Kind)

	keys := map[negotiation.Direction]ui.Action{
		negotiation.DirUp:    ui.ActionUp,
		negotiation.DirDown:  ui.ActionDown,
		negotiation.DirLeft:  ui.ActionLeft,
		negotiation.DirRight: ui.ActionRight,
	}
	before := s.Player().Pos
	for _, dir := range s.Negotiation().Ritual().Sequence() {
		require.NoError(t, g.handle(ctx, keys[dir]))
	}
	require.Equal(t, before, s.Player().Pos, "ritual keys do not move the investigator")
	require.True(t, s.Encounter().Resolved())
	require.Equal(t, gamedata.OutcomeSeal, s.Director().LastOutcome())
}

func TestGameToastsFromEvents(t *testing.T) {
	g, _, _ := newTestGame(t, "ferryman")
	defer g.screen.Close()

	g.Publish(events.Toast{Text: "one"})
	g.Publish(events.PlayerHit{Damage: 3})
	g.Publish(events.EvidenceCollected{Label: "Coin", Have: 1, Target: 3})
	g.Publish(events.Toast{Text: "three"})
	g.Publish(events.Toast{Text: "four"})
	require.Len(t, g.toasts, maxToasts)
	require.Equal(t, "four", g.toasts[maxToasts-1].text)

	g.ageToasts(toastLife)
	require.Empty(t, g.toasts)
}

func TestFrameShowsPhaseAndMarkers(t *testing.T) {
	g, h, _ := newTestGame(t, "ferryman")
	defer g.screen.Close()
	require.NoError(t, h.s.Director().DebugJumpToCombat(context.Background()))

	f := g.Frame()
	require.True(t, strings.Contains(f.Header, "Combat"), f.Header)
	require.Len(t, f.Markers, 2)
	require.Equal(t, 'F', f.Markers[0].Glyph)
	require.Equal(t, '@', f.Markers[1].Glyph)
}
