package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
	"github.com/samdwyer/parley/internal/save/migrations"
)

// defaultSlot is the only save slot.
const defaultSlot = "default"

// SQLiteStore persists saves in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := clean + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCheckpoint replaces the stored checkpoint.
func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	if strings.TrimSpace(cp.CaseID) == "" {
		return fmt.Errorf("case id is required")
	}
	tags := cp.RuleTags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode rule tags: %w", err)
	}
	savedAt := cp.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	outcome := cp.LastOutcome
	if outcome == "" {
		outcome = gamedata.OutcomeNone
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (
		   slot, run_id, case_id, checkpoint_id, was_interrupted,
		   last_outcome, next_objective, rule_tags, evidence_card_id, saved_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   run_id = excluded.run_id,
		   case_id = excluded.case_id,
		   checkpoint_id = excluded.checkpoint_id,
		   was_interrupted = excluded.was_interrupted,
		   last_outcome = excluded.last_outcome,
		   next_objective = excluded.next_objective,
		   rule_tags = excluded.rule_tags,
		   evidence_card_id = excluded.evidence_card_id,
		   saved_at = excluded.saved_at`,
		defaultSlot,
		cp.RunID,
		cp.CaseID,
		cp.CheckpointID,
		boolToInt(cp.WasInterrupted),
		string(outcome),
		cp.NextObjective,
		string(encoded),
		cp.EvidenceCardID,
		savedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the stored checkpoint or ErrNotFound.
func (s *SQLiteStore) LoadCheckpoint(ctx context.Context) (Checkpoint, error) {
	var (
		cp          Checkpoint
		interrupted int64
		outcome     string
		tags        string
		savedAt     int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, case_id, checkpoint_id, was_interrupted, last_outcome,
		        next_objective, rule_tags, evidence_card_id, saved_at
		   FROM checkpoints WHERE slot = ?`, defaultSlot,
	).Scan(&cp.RunID, &cp.CaseID, &cp.CheckpointID, &interrupted, &outcome,
		&cp.NextObjective, &tags, &cp.EvidenceCardID, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, ErrNotFound
		}
		return Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &cp.RuleTags); err != nil {
		return Checkpoint{}, fmt.Errorf("decode rule tags: %w", err)
	}
	if len(cp.RuleTags) == 0 {
		cp.RuleTags = nil
	}
	cp.WasInterrupted = interrupted != 0
	cp.LastOutcome = gamedata.ParseOutcome(outcome)
	cp.SavedAt = time.UnixMilli(savedAt).UTC()
	return cp, nil
}

// SaveMeta replaces the stored meta snapshot.
func (s *SQLiteStore) SaveMeta(ctx context.Context, snap ledger.MetaSnapshot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta_ledger (slot, contract_boon, truce_debt, arbitration_passes, distortion, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   contract_boon = excluded.contract_boon,
		   truce_debt = excluded.truce_debt,
		   arbitration_passes = excluded.arbitration_passes,
		   distortion = excluded.distortion,
		   updated_at = excluded.updated_at`,
		defaultSlot,
		boolToInt(snap.ContractBoon),
		snap.TruceDebt,
		snap.ArbitrationPasses,
		snap.Distortion,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

// LoadMeta returns the stored meta snapshot or ErrNotFound.
func (s *SQLiteStore) LoadMeta(ctx context.Context) (ledger.MetaSnapshot, error) {
	var (
		snap ledger.MetaSnapshot
		boon int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT contract_boon, truce_debt, arbitration_passes, distortion
		   FROM meta_ledger WHERE slot = ?`, defaultSlot,
	).Scan(&boon, &snap.TruceDebt, &snap.ArbitrationPasses, &snap.Distortion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.MetaSnapshot{}, ErrNotFound
		}
		return ledger.MetaSnapshot{}, fmt.Errorf("load meta: %w", err)
	}
	snap.ContractBoon = boon != 0
	return snap, nil
}

// Clear deletes the checkpoint and meta snapshot.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	for _, table := range []string{"checkpoints", "meta_ledger"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE slot = ?", defaultSlot); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
