package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samdwyer/parley/internal/gamedata"
)

func TestScripts(t *testing.T) {
	tests := []struct {
		caseID  string
		script  string
		outcome gamedata.Outcome
	}{
		{"ferryman", "negotiate", gamedata.OutcomeContract},
		{"ferryman", "ritual", gamedata.OutcomeSeal},
		{"ferryman", "slay", gamedata.OutcomeNone},
		{"ferryman", "stealth-fail", gamedata.OutcomeContract},
		{"lamplighter", "negotiate", gamedata.OutcomeContract},
		{"lamplighter", "ritual", gamedata.OutcomeSeal},
	}

	for _, tt := range tests {
		t.Run(tt.caseID+"/"+tt.script, func(t *testing.T) {
			h := newHarness(t, tt.caseID)
			rep, err := RunScript(context.Background(), h.s, tt.script)
			require.NoError(t, err)

			require.True(t, rep.Completed)
			require.Equal(t, tt.outcome, rep.Outcome)
			require.Equal(t, tt.caseID, rep.CaseID)
			require.NotEmpty(t, rep.RunID)
			require.Positive(t, rep.Elapsed)
			require.Equal(t, 1, h.rec.Count("episode_completed"))
		})
	}
}

func TestScriptRitualRecordsSealCost(t *testing.T) {
	h := newHarness(t, "ferryman")
	rep, err := RunScript(context.Background(), h.s, "ritual")
	require.NoError(t, err)

	require.Equal(t, 1, h.rec.Count("ritual_started"))
	require.Equal(t, 4, h.rec.Count("ritual_progress"))
	require.InDelta(t, 0.10, rep.AdminCost, 1e-9)
	require.Equal(t, 1, rep.Attempts)
}

func TestScriptStealthFailGainsInsight(t *testing.T) {
	h := newHarness(t, "ferryman")
	rep, err := RunScript(context.Background(), h.s, "stealth-fail")
	require.NoError(t, err)

	require.Equal(t, 1, h.rec.Count("lockdown_started"))
	require.Equal(t, 2, rep.Insight, "one from the lockdown and one from the refused evidence")
	require.InDelta(t, 0.25, rep.AdminCost, 1e-9)
}

func TestScriptSlayRaisesDistortion(t *testing.T) {
	h := newHarness(t, "ferryman")
	rep, err := RunScript(context.Background(), h.s, "slay")
	require.NoError(t, err)
	require.Equal(t, 1, rep.Meta.Distortion)
	require.Equal(t, 1, rep.Meta.TruceDebt)
	require.False(t, rep.Meta.ContractBoon)
}

func TestRunScriptUnknown(t *testing.T) {
	h := newHarness(t, "ferryman")
	_, err := RunScript(context.Background(), h.s, "dance")
	require.ErrorIs(t, err, ErrUnknownScript)
}

func TestScriptNamesSorted(t *testing.T) {
	require.Equal(t, []string{"negotiate", "ritual", "slay", "stealth-fail"}, ScriptNames())
}
