package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/parley/internal/world"
)

// Marker is a glyph drawn over the arena.
type Marker struct {
	Pos   world.Vec
	Glyph rune
	Color tcell.Color
	Bold  bool
}

// Frame is everything drawn in one frame. The arena is drawn at the top
// left, the header above it and the HUD and panel lines below.
type Frame struct {
	Header  string
	Arena   *world.Arena
	Markers []Marker
	HUD     []string
	Panel   []string
	Toasts  []string
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws f and flushes the screen.
func (r *Renderer) Render(f Frame) {
	r.screen.Clear()

	headerStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	r.text(0, 0, f.Header, headerStyle)

	y := 1
	if a := f.Arena; a != nil {
		for ay := 0; ay < a.Height; ay++ {
			for ax := 0; ax < a.Width; ax++ {
				tile := a.GetTile(ax, ay)
				r.screen.SetContent(ax, y+ay, tile.Rune(), r.tileStyle(tile))
			}
		}
		for _, z := range a.Zones {
			c := z.Center()
			cx, cy := c.Cell()
			r.screen.SetContent(cx, y+cy, '?', tcell.StyleDefault.Foreground(tcell.ColorAqua))
		}
		for _, m := range f.Markers {
			mx, my := m.Pos.Cell()
			style := tcell.StyleDefault.Foreground(m.Color).Bold(m.Bold)
			r.screen.SetContent(mx, y+my, m.Glyph, style)
		}
		y += a.Height
	}

	hudStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for _, line := range f.HUD {
		r.text(0, y, line, hudStyle)
		y++
	}
	panelStyle := tcell.StyleDefault.Foreground(tcell.ColorLightCyan)
	for _, line := range f.Panel {
		r.text(0, y, line, panelStyle)
		y++
	}
	toastStyle := tcell.StyleDefault.Foreground(tcell.ColorOrange)
	for _, line := range f.Toasts {
		r.text(0, y, line, toastStyle)
		y++
	}

	r.screen.Show()
}

// tileStyle returns the appropriate style for a tile type.
func (r *Renderer) tileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.TileShallows:
		return tcell.StyleDefault.Foreground(tcell.ColorSteelBlue)
	default:
		return tcell.StyleDefault
	}
}

func (r *Renderer) text(x, y int, msg string, style tcell.Style) {
	w, h := r.screen.Size()
	if y >= h {
		return
	}
	for _, ch := range msg {
		if x >= w {
			return
		}
		r.screen.SetContent(x, y, ch, style)
		x++
	}
}
