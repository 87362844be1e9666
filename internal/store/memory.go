package store

import (
	"context"
	"sync"

	"github.com/freema/coauthor/internal/roster"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []roster.Entry
}

// NewMemoryStore creates an empty in-memory roster store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]roster.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]roster.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries []roster.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]roster.Entry, len(entries))
	copy(s.entries, entries)
	return nil
}

var _ Store = (*MemoryStore)(nil)
