package ui

import "github.com/gdamore/tcell/v2"

// Action is a player input decoded from a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionLight
	ActionHeavy
	ActionRanged
	ActionLock
	ActionExamine
	ActionAdvance
	ActionNegotiate
	ActionStance
	ActionFirm
	ActionBalanced
	ActionConcede
	ActionAccept
	ActionDecline
	ActionClose
	ActionOption1
	ActionOption2
	ActionOption3
	ActionOption4
	ActionSlowMotion
	ActionDebugCombat
)

var runeActions = map[rune]Action{
	'q': ActionQuit,
	'w': ActionUp,
	's': ActionDown,
	'a': ActionLeft,
	'd': ActionRight,
	'j': ActionLight,
	'k': ActionHeavy,
	'l': ActionRanged,
	't': ActionLock,
	'e': ActionExamine,
	'n': ActionNegotiate,
	'c': ActionStance,
	'F': ActionFirm,
	'V': ActionBalanced,
	'C': ActionConcede,
	'y': ActionAccept,
	'x': ActionDecline,
	'z': ActionSlowMotion,
	'1': ActionOption1,
	'2': ActionOption2,
	'3': ActionOption3,
	'4': ActionOption4,
	' ': ActionAdvance,
	'B': ActionDebugCombat,
}

// KeyAction decodes a key event. Arrow keys move, and double as ritual
// inputs while a ritual is active.
func KeyAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyEscape:
		return ActionClose
	case tcell.KeyEnter:
		return ActionAdvance
	case tcell.KeyUp:
		return ActionUp
	case tcell.KeyDown:
		return ActionDown
	case tcell.KeyLeft:
		return ActionLeft
	case tcell.KeyRight:
		return ActionRight
	case tcell.KeyRune:
		if a, ok := runeActions[ev.Rune()]; ok {
			return a
		}
	}
	return ActionNone
}

// OptionIndex returns the zero-based option index for an option action.
func (a Action) OptionIndex() (int, bool) {
	switch a {
	case ActionOption1, ActionOption2, ActionOption3, ActionOption4:
		return int(a - ActionOption1), true
	}
	return 0, false
}

// HelpLine lists the main keys.
const HelpLine = "wasd/arrows move  j/k/l attack  t lock  e examine  n negotiate  c/F/V/C stance  1-4 choose  y/x offer  esc close  space next  q quit"
