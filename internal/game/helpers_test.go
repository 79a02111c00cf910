package game

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/samdwyer/parley/internal/events"
	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/save"
)

type harness struct {
	s     *CaseSession
	rec   *events.Recorder
	store *save.MemoryStore
}

func newHarness(t *testing.T, caseID string) *harness {
	t.Helper()
	def, ok := gamedata.MustLoadCaseRegistry().GetByID(caseID)
	if !ok {
		t.Fatalf("case %q not found", caseID)
	}
	return newHarnessFor(t, def, save.NewMemoryStore(), ledger.NewMeta())
}

func newHarnessFor(t *testing.T, def gamedata.CaseDef, store *save.MemoryStore, meta *ledger.Meta) *harness {
	t.Helper()
	rec := &events.Recorder{}
	s := NewSession(context.Background(), Options{
		Case:   def,
		Meta:   meta,
		Store:  store,
		Seed:   7,
		Logger: zaptest.NewLogger(t),
		Sink:   rec,
	})
	return &harness{s: s, rec: rec, store: store}
}

// begin starts an episode and advances to the first phase of kind.
func (h *harness) begin(t *testing.T, kind gamedata.PhaseKind) {
	t.Helper()
	ctx := context.Background()
	if err := h.s.Director().BeginEpisode(ctx); err != nil {
		t.Fatalf("BeginEpisode() error: %v", err)
	}
	d := &Driver{s: h.s}
	if err := d.AdvanceTo(ctx, kind); err != nil {
		t.Fatalf("AdvanceTo(%s) error: %v", kind, err)
	}
}
