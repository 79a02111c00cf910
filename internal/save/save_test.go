package save

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/save/migrations"
)

func openTempStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "saves", "parley.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": openTempStore(t),
		"memory": NewMemoryStore(),
	}
}

func sampleCheckpoint() Checkpoint {
	return Checkpoint{
		CaseID:         "ferryman",
		CheckpointID:   "FERRY_BREAK",
		WasInterrupted: true,
		LastOutcome:    gamedata.OutcomeNone,
		NextObjective:  "Break the Ferryman, then negotiate.",
		RuleTags:       []string{"no_stare", "no_repeat"},
		EvidenceCardID: "card_coin",
		RunID:          "8f0c1c0e-3b1a-4c55-9d39-1d1f7f0d8c11",
		SavedAt:        time.Date(2026, time.March, 3, 21, 0, 0, 0, time.UTC),
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		if _, err := store.LoadCheckpoint(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: LoadCheckpoint() on empty store = %v, want ErrNotFound", name, err)
		}

		want := sampleCheckpoint()
		if err := store.SaveCheckpoint(ctx, want); err != nil {
			t.Fatalf("%s: SaveCheckpoint(): %v", name, err)
		}
		got, err := store.LoadCheckpoint(ctx)
		if err != nil {
			t.Fatalf("%s: LoadCheckpoint(): %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: checkpoint mismatch (-want +got):\n%s", name, diff)
		}

		// A later save replaces the earlier one.
		want.CheckpointID = "FERRY_END"
		want.WasInterrupted = false
		want.LastOutcome = gamedata.OutcomeSeal
		want.RuleTags = nil
		if err := store.SaveCheckpoint(ctx, want); err != nil {
			t.Fatalf("%s: second SaveCheckpoint(): %v", name, err)
		}
		got, err = store.LoadCheckpoint(ctx)
		if err != nil {
			t.Fatalf("%s: second LoadCheckpoint(): %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: replaced checkpoint mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestMetaRoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		if _, err := store.LoadMeta(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: LoadMeta() on empty store = %v, want ErrNotFound", name, err)
		}

		want := ledger.MetaSnapshot{ContractBoon: true, TruceDebt: 2, ArbitrationPasses: 1, Distortion: 3}
		if err := store.SaveMeta(ctx, want); err != nil {
			t.Fatalf("%s: SaveMeta(): %v", name, err)
		}
		got, err := store.LoadMeta(ctx)
		if err != nil {
			t.Fatalf("%s: LoadMeta(): %v", name, err)
		}
		if got != want {
			t.Errorf("%s: LoadMeta() = %+v, want %+v", name, got, want)
		}

		if err := store.SaveCheckpoint(ctx, sampleCheckpoint()); err != nil {
			t.Fatalf("%s: SaveCheckpoint(): %v", name, err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("%s: Clear(): %v", name, err)
		}
		if _, err := store.LoadCheckpoint(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: LoadCheckpoint() after Clear = %v, want ErrNotFound", name, err)
		}
		if _, err := store.LoadMeta(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: LoadMeta() after Clear = %v, want ErrNotFound", name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "parley.db")

	first, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.SaveCheckpoint(ctx, sampleCheckpoint()); err != nil {
		t.Fatalf("SaveCheckpoint(): %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.LoadCheckpoint(ctx)
	if err != nil {
		t.Fatalf("LoadCheckpoint() after reopen: %v", err)
	}
	if got.CheckpointID != "FERRY_BREAK" {
		t.Errorf("CheckpointID = %q, want FERRY_BREAK", got.CheckpointID)
	}
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	if got := extractUp(content); got != "\nCREATE TABLE a (x INT);\n" {
		t.Errorf("extractUp() = %q", got)
	}
	if got := extractUp("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("extractUp() without markers = %q", got)
	}

	raw, err := migrations.FS.ReadFile("001_saves.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	if up := extractUp(string(raw)); up == "" || strings.Contains(up, "DROP TABLE") {
		t.Errorf("embedded migration up section = %q", up)
	}
}
