// Package game owns a running case: the session that wires every
// subsystem together, the phase director, scripted runs and the
// interactive terminal loop.
package game

import (
	"strings"

	"github.com/samdwyer/parley/internal/gamedata"
)

// Display is the player-facing name of the current phase.
type Display int

const (
	DisplayStory Display = iota
	DisplayInvestigation
	DisplayCombat
	DisplayNegotiation
	DisplayResult
)

// String returns a human-readable display name.
func (d Display) String() string {
	switch d {
	case DisplayStory:
		return "Story"
	case DisplayInvestigation:
		return "Investigation"
	case DisplayCombat:
		return "Combat"
	case DisplayNegotiation:
		return "Negotiation"
	case DisplayResult:
		return "Result"
	default:
		return "Unknown"
	}
}

// DisplayFor maps an internal phase kind to its display. A combat phase
// shows as Negotiation while a session is open.
func DisplayFor(kind gamedata.PhaseKind, negotiating bool) Display {
	switch kind {
	case gamedata.PhaseInvestigation:
		return DisplayInvestigation
	case gamedata.PhaseCombat:
		if negotiating {
			return DisplayNegotiation
		}
		return DisplayCombat
	case gamedata.PhaseOutro:
		return DisplayResult
	default:
		return DisplayStory
	}
}

// KindForCheckpoint maps a checkpoint id to the phase kind it resumes.
// Unknown ids resume at the intro.
func KindForCheckpoint(id string) gamedata.PhaseKind {
	id = strings.ToUpper(strings.TrimSpace(id))
	switch {
	case strings.HasSuffix(id, "_INVEST"):
		return gamedata.PhaseInvestigation
	case strings.HasSuffix(id, "_BREAK"):
		return gamedata.PhaseCombat
	case strings.HasSuffix(id, "_END"):
		return gamedata.PhaseOutro
	default:
		return gamedata.PhaseIntro
	}
}

// Controls says which player inputs the current phase accepts.
type Controls struct {
	Move   bool
	Target bool
	Combat bool
}

func controlsFor(kind gamedata.PhaseKind) Controls {
	switch kind {
	case gamedata.PhaseInvestigation:
		return Controls{Move: true, Target: true}
	case gamedata.PhaseCombat:
		return Controls{Move: true, Target: true, Combat: true}
	default:
		return Controls{}
	}
}
