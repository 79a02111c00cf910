// Package save persists the resume checkpoint and the carryover meta
// ledger between sessions.
package save

import (
	"context"
	"errors"
	"time"

	"github.com/samdwyer/parley/internal/gamedata"
	"github.com/samdwyer/parley/internal/ledger"
)

// ErrNotFound is returned when nothing has been saved yet.
var ErrNotFound = errors.New("no saved checkpoint")

// Checkpoint is the flat resume record written after every phase entry.
type Checkpoint struct {
	CaseID         string           `json:"caseId"`
	CheckpointID   string           `json:"checkpointId"`
	WasInterrupted bool             `json:"wasInterrupted"`
	LastOutcome    gamedata.Outcome `json:"lastOutcome"`
	NextObjective  string           `json:"nextObjective"`
	RuleTags       []string         `json:"ruleTags,omitempty"`
	EvidenceCardID string           `json:"evidenceCardId,omitempty"`
	RunID          string           `json:"runId,omitempty"`
	SavedAt        time.Time        `json:"savedAt"`
}

// Store holds one checkpoint and one meta snapshot.
type Store interface {
	SaveCheckpoint(ctx context.Context, cp Checkpoint) error
	LoadCheckpoint(ctx context.Context) (Checkpoint, error)
	SaveMeta(ctx context.Context, snap ledger.MetaSnapshot) error
	LoadMeta(ctx context.Context) (ledger.MetaSnapshot, error)
	Clear(ctx context.Context) error
	Close() error
}
