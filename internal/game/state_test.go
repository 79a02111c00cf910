package game

import (
	"testing"

	"github.com/samdwyer/parley/internal/gamedata"
)

func TestDisplayFor(t *testing.T) {
	tests := []struct {
		kind        gamedata.PhaseKind
		negotiating bool
		want        Display
	}{
		{gamedata.PhaseIntro, false, DisplayStory},
		{gamedata.PhaseInvestigation, false, DisplayInvestigation},
		{gamedata.PhaseCombat, false, DisplayCombat},
		{gamedata.PhaseCombat, true, DisplayNegotiation},
		{gamedata.PhaseOutro, false, DisplayResult},
		{"", false, DisplayStory},
	}
	for _, tt := range tests {
		if got := DisplayFor(tt.kind, tt.negotiating); got != tt.want {
			t.Errorf("DisplayFor(%q, %v) = %v, want %v", tt.kind, tt.negotiating, got, tt.want)
		}
	}
}

func TestKindForCheckpoint(t *testing.T) {
	tests := map[string]gamedata.PhaseKind{
		"FERRY_INTRO":  gamedata.PhaseIntro,
		"FERRY_INVEST": gamedata.PhaseInvestigation,
		"ferry_break":  gamedata.PhaseCombat,
		"LAMP_END ":    gamedata.PhaseOutro,
		"":             gamedata.PhaseIntro,
		"GARBAGE":      gamedata.PhaseIntro,
	}
	for id, want := range tests {
		if got := KindForCheckpoint(id); got != want {
			t.Errorf("KindForCheckpoint(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestControlsFor(t *testing.T) {
	if c := controlsFor(gamedata.PhaseIntro); c.Move || c.Target || c.Combat {
		t.Errorf("intro controls = %+v, want none", c)
	}
	if c := controlsFor(gamedata.PhaseInvestigation); !c.Move || !c.Target || c.Combat {
		t.Errorf("investigation controls = %+v", c)
	}
	if c := controlsFor(gamedata.PhaseCombat); !c.Move || !c.Target || !c.Combat {
		t.Errorf("combat controls = %+v", c)
	}
}
