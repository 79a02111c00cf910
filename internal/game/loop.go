package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/negotiation"
	"github.com/samdwyer/parley/internal/telemetry"
	"github.com/samdwyer/parley/internal/ui"
)

const (
	// SlowMotion is the time scale toggled by the slow-motion key.
	SlowMotion = 0.5

	toastLife = 3 * time.Second
	maxToasts = 3
)

var errQuit = errors.New("quit")

type toast struct {
	text string
	left time.Duration
}

// Game runs a session interactively on a terminal screen. Terminal input
// is pumped on its own goroutine; every session call happens on the frame
// loop goroutine.
type Game struct {
	session  *CaseSession
	screen   *ui.Screen
	renderer *ui.Renderer
	logger   *zap.Logger
	frame    time.Duration

	toasts []toast
}

// NewGame creates a game that draws on screen. Subscribe Publish to the
// session's event bus to see toasts.
func NewGame(s *CaseSession, screen *ui.Screen, frame time.Duration, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	if frame <= 0 {
		frame = SimFrame
	}
	return &Game{
		session:  s,
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		logger:   logger.Named("loop"),
		frame:    frame,
	}
}

// Publish implements events.Sink, turning notable events into toasts.
func (g *Game) Publish(e events.Event) {
	var text string
	switch ev := e.(type) {
	case events.Toast:
		text = ev.Text
	case events.Violation:
		text = "Rule broken: " + ev.RuleName
	case events.EvidenceCollected:
		text = fmt.Sprintf("Collected %s (%d/%d)", ev.Label, ev.Have, ev.Target)
	case events.CounterOffered:
		text = fmt.Sprintf("Counter-offer: %s at %s stance (y/x)", ev.Option, ev.Stance)
	case events.NegotiationFailed:
		text = "Negotiation failed: " + ev.Reason
	case events.RitualFailed:
		text = "Ritual failed: " + ev.Reason
	case events.AdversaryBroken:
		text = "It staggers. Negotiate now (n)."
	case events.LockdownStarted:
		text = "Lockdown!"
	case events.EpisodeCompleted:
		text = fmt.Sprintf("Case closed: %s", ev.Outcome)
	default:
		return
	}
	g.toasts = append(g.toasts, toast{text: text, left: toastLife})
	if len(g.toasts) > maxToasts {
		g.toasts = g.toasts[len(g.toasts)-maxToasts:]
	}
}

// Run plays until the player quits or ctx is cancelled. An episode is
// started unless the session already has one.
func (g *Game) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer("game").Start(ctx, "game.run")
	span.SetAttributes(attribute.String("case", g.session.Case().ID))
	defer span.End()

	if !g.session.Director().Started() {
		if err := g.session.Director().BeginEpisode(ctx); err != nil {
			return err
		}
	}

	input := make(chan tcell.Event, 16)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return g.pump(ctx, input)
	})
	eg.Go(func() error {
		defer g.screen.Close()
		return g.loop(ctx, input)
	})

	err := eg.Wait()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pump forwards terminal events until the screen is closed.
func (g *Game) pump(ctx context.Context, out chan<- tcell.Event) error {
	for {
		ev := g.screen.PollEvent()
		if ev == nil {
			return nil
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

func (g *Game) loop(ctx context.Context, input <-chan tcell.Event) error {
	ticker := time.NewTicker(g.frame)
	defer ticker.Stop()

	g.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-input:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if err := g.handle(ctx, ui.KeyAction(ev)); err != nil {
					return err
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}
		case <-ticker.C:
			g.session.Tick(ctx, g.frame)
			g.ageToasts(g.frame)
		}
		g.draw()
	}
}

// handle applies one player action. Rejections already surface as
// toasts, so only quitting ends the loop.
func (g *Game) handle(ctx context.Context, a ui.Action) error {
	s := g.session
	neg := s.Negotiation()

	if neg.State() == negotiation.StateRitual {
		if dir, ok := ritualDirection(a); ok {
			_, err := neg.InputRitual(ctx, dir)
			g.logIgnored(err)
			return nil
		}
	}

	if i, ok := a.OptionIndex(); ok {
		_, err := neg.Choose(ctx, i)
		g.logIgnored(err)
		return nil
	}

	var err error
	switch a {
	case ui.ActionQuit:
		return errQuit
	case ui.ActionUp:
		err = s.Move(0, -1)
	case ui.ActionDown:
		err = s.Move(0, 1)
	case ui.ActionLeft:
		err = s.Move(-1, 0)
	case ui.ActionRight:
		err = s.Move(1, 0)
	case ui.ActionLight:
		_, err = s.Attack(ctx, gamedata.AttackLight)
	case ui.ActionHeavy:
		_, err = s.Attack(ctx, gamedata.AttackHeavy)
	case ui.ActionRanged:
		_, err = s.Attack(ctx, gamedata.AttackRanged)
	case ui.ActionLock:
		_, err = s.ToggleTargetLock()
	case ui.ActionExamine:
		err = s.Examine(ctx)
	case ui.ActionAdvance:
		if s.Director().IsComplete() {
			return errQuit
		}
		err = s.Advance(ctx)
	case ui.ActionNegotiate:
		err = neg.Begin(ctx)
	case ui.ActionStance:
		if neg.IsOpen() {
			neg.CycleStance()
		}
	case ui.ActionFirm:
		neg.SetStance(gamedata.StanceFirm)
	case ui.ActionBalanced:
		neg.SetStance(gamedata.StanceBalanced)
	case ui.ActionConcede:
		neg.SetStance(gamedata.StanceConcede)
	case ui.ActionAccept:
		_, err = neg.AcceptCounterOffer(ctx)
	case ui.ActionDecline:
		err = neg.DeclineCounterOffer()
	case ui.ActionClose:
		err = neg.Close(ctx)
	case ui.ActionSlowMotion:
		if s.TimeScale() == 1 {
			s.SetTimeScale(SlowMotion)
		} else {
			s.SetTimeScale(1)
		}
	case ui.ActionDebugCombat:
		err = s.Director().DebugJumpToCombat(ctx)
	}
	g.logIgnored(err)
	return nil
}

func (g *Game) logIgnored(err error) {
	if err != nil {
		g.logger.Debug("input rejected", zap.Error(err))
	}
}

func ritualDirection(a ui.Action) (negotiation.Direction, bool) {
	switch a {
	case ui.ActionUp:
		return negotiation.DirUp, true
	case ui.ActionDown:
		return negotiation.DirDown, true
	case ui.ActionLeft:
		return negotiation.DirLeft, true
	case ui.ActionRight:
		return negotiation.DirRight, true
	}
	return 0, false
}

func (g *Game) ageToasts(dt time.Duration) {
	kept := g.toasts[:0]
	for _, t := range g.toasts {
		t.left -= dt
		if t.left > 0 {
			kept = append(kept, t)
		}
	}
	g.toasts = kept
}

func (g *Game) draw() {
	g.renderer.Render(g.Frame())
}

// Frame builds what the screen should show for the current state.
func (g *Game) Frame() ui.Frame {
	s := g.session
	def := s.Case()

	f := ui.Frame{
		Header: fmt.Sprintf("%s | %s | %s", def.Title, s.Display(), g.objective()),
		Arena:  s.Arena(),
	}

	player := s.Player()
	playerColor := tcell.ColorYellow
	if player.TargetLocked() {
		playerColor = tcell.ColorFuchsia
	}
	if adv := s.Encounter().Adversary(); adv != nil {
		f.Markers = append(f.Markers, ui.Marker{
			Pos:   adv.Pos,
			Glyph: adv.Def.GlyphRune(),
			Color: adv.Def.TCellColor(),
			Bold:  adv.Break.IsBroken() || adv.Rage.Active(),
		})
	}
	f.Markers = append(f.Markers, ui.Marker{Pos: player.Pos, Glyph: player.Symbol, Color: playerColor, Bold: true})

	f.HUD = g.hud()
	f.Panel = g.panel()
	for _, t := range g.toasts {
		f.Toasts = append(f.Toasts, t.text)
	}
	return f
}

func (g *Game) objective() string {
	s := g.session
	if s.Director().IsComplete() {
		return "Case closed: " + string(s.Director().LastOutcome())
	}
	p := s.Phase()
	if p.Objective != "" {
		return p.Objective
	}
	return s.Director().objective(p)
}

func (g *Game) hud() []string {
	s := g.session
	player := s.Player()
	lines := []string{
		fmt.Sprintf("HP %.0f/%.0f  Evidence %d/%d  Alert %s",
			player.Health.HP(), player.Health.Max(),
			s.Evidence().Count(), s.Evidence().Target(),
			bar(s.Infiltration().Alert(), 10)),
	}
	if s.Infiltration().IsLockdownActive() {
		lines = append(lines, fmt.Sprintf("LOCKDOWN %.1fs", s.Infiltration().LockdownRemaining().Seconds()))
	}
	if adv := s.Encounter().Adversary(); adv != nil {
		status := ""
		switch {
		case adv.Break.IsBroken():
			status = fmt.Sprintf(" BROKEN %.1fs", adv.Break.Remaining().Seconds())
		case adv.Rage.Active():
			status = " ENRAGED"
		}
		lines = append(lines, fmt.Sprintf("%s HP %.0f  Break %s%s",
			adv.Name(), adv.Health.HP(), bar(adv.Break.Value()/adv.Break.Max(), 10), status))
	}
	meta := s.Meta()
	ledgerLine := fmt.Sprintf("Debt %d  Passes %d  Distortion %d", meta.TruceDebt(), meta.ArbitrationPasses(), meta.Distortion())
	if meta.ContractBoon() {
		ledgerLine += "  Contract boon"
	}
	lines = append(lines, ledgerLine)
	if run := s.Run(); run != nil {
		lines = append(lines, fmt.Sprintf("Violations %d  Admin %.2f  Insight %d",
			run.ViolationCount(), run.AdminCost(), run.Insight()))
	}
	if s.TimeScale() != 1 {
		lines = append(lines, fmt.Sprintf("Time x%.2f", s.TimeScale()))
	}
	lines = append(lines, ui.HelpLine)
	return lines
}

func (g *Game) panel() []string {
	neg := g.session.Negotiation()
	if !neg.IsOpen() {
		if cd := neg.Cooldown(); cd > 0 && g.session.Encounter().Active() {
			return []string{fmt.Sprintf("Negotiation cooldown %.1fs", cd.Seconds())}
		}
		return nil
	}

	lines := []string{fmt.Sprintf("Negotiation  stance: %s (c to cycle)", neg.Stance())}
	if r := neg.Ritual(); r != nil {
		var seq strings.Builder
		for i, d := range r.Sequence() {
			if i == r.Index() {
				seq.WriteString("[")
				seq.WriteRune(d.Arrow())
				seq.WriteString("]")
				continue
			}
			seq.WriteRune(d.Arrow())
		}
		return append(lines, fmt.Sprintf("Ritual %s  %.1fs", seq.String(), r.Remaining().Seconds()))
	}
	for i, o := range neg.VisibleOptions() {
		gate, _ := neg.Preview(i)
		mark := " "
		if gate.CanSucceed {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%d. %s [%d/%d]", mark, i+1, o.Label, gate.Have, gate.FinalRequired))
	}
	if c := neg.Counter(); c != nil {
		lines = append(lines, fmt.Sprintf("Counter-offer: %s at %s (y accept, x decline)", c.Label, c.Stance))
	}
	return lines
}

func bar(v float64, width int) string {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	n := int(v*float64(width) + 0.5)
	return "[" + strings.Repeat("=", n) + strings.Repeat(" ", width-n) + "]"
}
