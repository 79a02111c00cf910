package save

import (
	"context"
	"sync"

	"github.com/samdwyer/parley/internal/ledger"
)

// MemoryStore keeps saves in memory. It is used by headless runs and tests.
type MemoryStore struct {
	mu   sync.Mutex
	cp   *Checkpoint
	meta *ledger.MetaSnapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp.RuleTags = append([]string(nil), cp.RuleTags...)
	m.cp = &cp
	return nil
}

func (m *MemoryStore) LoadCheckpoint(ctx context.Context) (Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return Checkpoint{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cp == nil {
		return Checkpoint{}, ErrNotFound
	}
	cp := *m.cp
	cp.RuleTags = append([]string(nil), cp.RuleTags...)
	return cp, nil
}

func (m *MemoryStore) SaveMeta(ctx context.Context, snap ledger.MetaSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = &snap
	return nil
}

func (m *MemoryStore) LoadMeta(ctx context.Context) (ledger.MetaSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return ledger.MetaSnapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meta == nil {
		return ledger.MetaSnapshot{}, ErrNotFound
	}
	return *m.meta, nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cp = nil
	m.meta = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
