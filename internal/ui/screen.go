// Package ui draws a case session on a tcell terminal and decodes keys.
package ui

import "github.com/gdamore/tcell/v2"

var defaultStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

// Screen is the terminal surface the renderer draws on.
type Screen struct {
	screen tcell.Screen
}

// NewScreen opens the controlling terminal.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenFrom(s)
}

// NewScreenFrom takes ownership of s, e.g. a tcell simulation screen.
func NewScreenFrom(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(defaultStyle)
	s.Clear()
	return &Screen{screen: s}, nil
}

// Close restores the terminal. A pending PollEvent then returns nil.
func (s *Screen) Close() { s.screen.Fini() }

// PollEvent blocks for the next key or resize event.
func (s *Screen) PollEvent() tcell.Event { return s.screen.PollEvent() }

func (s *Screen) Clear() { s.screen.Clear() }
func (s *Screen) Show()  { s.screen.Show() }
func (s *Screen) Sync()  { s.screen.Sync() }

// SetContent puts r at cell (x, y).
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// Size returns the terminal size in cells.
func (s *Screen) Size() (width, height int) { return s.screen.Size() }
