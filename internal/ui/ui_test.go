package ui

import (
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/parley/internal/world"
)

func newSimScreen(t *testing.T) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	s, err := NewScreenFrom(sim)
	if err != nil {
		t.Fatalf("NewScreenFrom() error: %v", err)
	}
	sim.SetSize(80, 30)
	t.Cleanup(s.Close)
	return s, sim
}

func cellRune(sim tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := sim.GetContents()
	runes := cells[y*w+x].Runes
	if len(runes) == 0 {
		return ' '
	}
	return runes[0]
}

func TestRenderDrawsArenaMarkersAndText(t *testing.T) {
	s, sim := newSimScreen(t)
	r := NewRenderer(s)

	arena := world.NewArena(10, 5, rand.New(rand.NewSource(1)))
	r.Render(Frame{
		Header:  "Story",
		Arena:   arena,
		Markers: []Marker{{Pos: world.Vec{X: 3, Y: 2}, Glyph: '@', Color: tcell.ColorYellow}},
		HUD:     []string{"HP 60"},
		Toasts:  []string{"hello"},
	})

	if got := cellRune(sim, 0, 0); got != 'S' {
		t.Errorf("header cell = %q, want 'S'", got)
	}
	if got := cellRune(sim, 0, 1); got != '#' {
		t.Errorf("arena corner = %q, want '#'", got)
	}
	if got := cellRune(sim, 3, 3); got != '@' {
		t.Errorf("marker cell = %q, want '@'", got)
	}
	if got := cellRune(sim, 0, 6); got != 'H' {
		t.Errorf("HUD cell = %q, want 'H'", got)
	}
	if got := cellRune(sim, 0, 7); got != 'h' {
		t.Errorf("toast cell = %q, want 'h'", got)
	}
}

func TestRenderClipsLongLines(t *testing.T) {
	s, _ := newSimScreen(t)
	r := NewRenderer(s)
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	// Must not panic on lines wider or lower than the screen.
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = string(long)
	}
	r.Render(Frame{Header: string(long), HUD: lines})
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want Action
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), ActionQuit},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), ActionUp},
		{tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), ActionHeavy},
		{tcell.NewEventKey(tcell.KeyRune, '3', tcell.ModNone), ActionOption3},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionClose},
		{tcell.NewEventKey(tcell.KeyRune, '?', tcell.ModNone), ActionNone},
	}
	for _, tt := range tests {
		if got := KeyAction(tt.ev); got != tt.want {
			t.Errorf("KeyAction(%v) = %v, want %v", tt.ev.Name(), got, tt.want)
		}
	}

	if i, ok := ActionOption2.OptionIndex(); !ok || i != 1 {
		t.Errorf("ActionOption2.OptionIndex() = %d, %v", i, ok)
	}
	if _, ok := ActionQuit.OptionIndex(); ok {
		t.Error("ActionQuit.OptionIndex() should not be an option")
	}
}
