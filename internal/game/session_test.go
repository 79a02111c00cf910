package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
)

func TestStoryPhaseRefusesActions(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseIntro)
	ctx := context.Background()

	require.ErrorIs(t, h.s.Move(1, 0), ErrNotAllowed)
	_, err := h.s.ToggleTargetLock()
	require.ErrorIs(t, err, ErrNotAllowed)
	_, err = h.s.Attack(ctx, gamedata.AttackLight)
	require.ErrorIs(t, err, ErrNotAllowed)
	require.ErrorIs(t, h.s.CollectEvidence(ctx, "ledger_page"), ErrNotAllowed)
	require.Equal(t, Controls{}, h.s.Controls())
}

func TestAdvanceRequiresEvidenceTarget(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseInvestigation)
	ctx := context.Background()

	require.ErrorIs(t, h.s.Advance(ctx), ErrNotAllowed)
	require.Equal(t, 1, h.rec.Count("toast"))

	require.NoError(t, h.s.CollectEvidence(ctx, "ledger_page"))
	require.NoError(t, h.s.CollectEvidence(ctx, "toll_coin"))
	require.ErrorIs(t, h.s.Advance(ctx), ErrNotAllowed)
	require.NoError(t, h.s.CollectEvidence(ctx, "lantern_oil"))
	require.NoError(t, h.s.Advance(ctx))
	require.Equal(t, gamedata.PhaseCombat, h.s.Phase().Kind)

	// Combat only ends through resolution.
	require.ErrorIs(t, h.s.Advance(ctx), ErrNotAllowed)
}

func TestCollectEvidence(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseInvestigation)
	ctx := context.Background()

	require.NoError(t, h.s.CollectEvidence(ctx, "ledger_page"))
	require.NoError(t, h.s.CollectEvidence(ctx, "ledger_page"))
	require.Equal(t, 1, h.rec.Count("evidence_collected"), "duplicates are not announced")
	require.Equal(t, "card_ledger", h.s.Evidence().LastCardID())

	got, ok := h.rec.Last("evidence_collected").(events.EvidenceCollected)
	require.True(t, ok)
	require.Equal(t, "Torn ledger page", got.Label)
	require.Equal(t, 3, got.Target)

	err := h.s.CollectEvidence(ctx, "fingerprint")
	require.ErrorIs(t, err, ErrUnknownEvidence)
	require.Equal(t, 1, h.s.Evidence().Count())
}

func TestGatedEvidenceRefusedDuringLockdown(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseInvestigation)
	ctx := context.Background()
	d := &Driver{s: h.s}

	require.NoError(t, d.Until(ctx, "lockdown", func() bool {
		h.s.ReportSeen(1)
		return h.s.Infiltration().IsLockdownActive()
	}))
	insight := h.s.Run().Insight()

	err := h.s.CollectEvidence(ctx, "drowned_bell")
	require.ErrorIs(t, err, ErrLockdown)
	require.False(t, h.s.Evidence().Has("drowned_bell"))
	require.Equal(t, insight+1, h.s.Run().Insight())

	// Ungated evidence is still available.
	require.NoError(t, h.s.CollectEvidence(ctx, "toll_coin"))

	// Once the lockdown lapses the gated tag can be taken.
	require.NoError(t, d.Until(ctx, "lockdown over", func() bool {
		return !h.s.Infiltration().IsLockdownActive()
	}))
	require.NoError(t, h.s.CollectEvidence(ctx, "drowned_bell"))
	require.True(t, h.s.Evidence().Has("drowned_bell"))
}

func TestLockdownRefusalInsightOncePerTag(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseInvestigation)
	ctx := context.Background()
	d := &Driver{s: h.s}
	mon := h.s.Infiltration()

	seenUntil := func(count int) {
		require.NoError(t, d.Until(ctx, "lockdown", func() bool {
			h.s.ReportSeen(1)
			return mon.LockdownCount() == count
		}))
		require.True(t, mon.IsLockdownActive())
	}

	seenUntil(1)
	insight := h.s.Run().Insight()
	for i := 0; i < 10; i++ {
		require.ErrorIs(t, h.s.CollectEvidence(ctx, "drowned_bell"), ErrLockdown)
	}
	require.Equal(t, insight+1, h.s.Run().Insight())

	seenUntil(2)
	insight = h.s.Run().Insight()
	require.ErrorIs(t, h.s.CollectEvidence(ctx, "drowned_bell"), ErrLockdown)
	require.ErrorIs(t, h.s.CollectEvidence(ctx, "drowned_bell"), ErrLockdown)
	require.Equal(t, insight+1, h.s.Run().Insight(), "a new lockdown pays again")
}

func TestTimeScaleSlowsGameTimers(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseInvestigation)
	ctx := context.Background()

	h.s.SetTimeScale(0)
	require.Equal(t, 1.0, h.s.TimeScale(), "non-positive scale is ignored")

	h.s.SetTimeScale(0.5)
	h.s.Tick(ctx, 100*time.Millisecond)
	require.Equal(t, 50*time.Millisecond, h.s.Elapsed())
	require.Equal(t, 50*time.Millisecond, h.s.Rules().Clock())
}

func TestMoveAndNegotiationLock(t *testing.T) {
	h := newHarness(t, "ferryman")
	h.begin(t, gamedata.PhaseInvestigation)

	start := h.s.Player().Pos
	require.NoError(t, h.s.Move(0, -1))
	require.NotEqual(t, start, h.s.Player().Pos)

	locked, err := h.s.ToggleTargetLock()
	require.NoError(t, err)
	require.True(t, locked)
	require.True(t, h.s.Player().TargetLocked())
}

func TestPlayerDefeatRestartsCombat(t *testing.T) {
	h := newHarness(t, "ferryman")
	ctx := context.Background()
	require.NoError(t, h.s.Director().DebugJumpToCombat(ctx))
	entries := h.rec.Count("phase_entered")

	h.s.Player().TakeDamage(1000)
	require.True(t, h.s.Player().IsDead())
	h.s.Tick(ctx, SimFrame)

	require.Equal(t, gamedata.PhaseCombat, h.s.Phase().Kind)
	require.False(t, h.s.Player().IsDead())
	require.Equal(t, entries+1, h.rec.Count("phase_entered"))
	require.True(t, h.s.Encounter().Active())
}

func TestAttackReportsToRules(t *testing.T) {
	h := newHarness(t, "ferryman")
	ctx := context.Background()
	require.NoError(t, h.s.Director().DebugJumpToCombat(ctx))
	h.s.Encounter().Adversary().Pos = h.s.Player().Pos

	for i := 0; i < 3; i++ {
		_, err := h.s.Attack(ctx, gamedata.AttackLight)
		require.NoError(t, err)
	}
	h.s.Tick(ctx, SimFrame)
	require.Equal(t, 1, h.s.Run().ViolationCount())

	_, err := h.s.Attack(ctx, "kick")
	require.Error(t, err)
}
