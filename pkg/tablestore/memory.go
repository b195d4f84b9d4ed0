package tablestore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and local development. It
// tracks a per-table revision, so optimistic write-back is enforced the same
// way the Postgres backend enforces it.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*Snapshot)}
}

// Seed loads a table without a revision check, for test fixtures
func (s *MemoryStore) Seed(table string, header []string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := int64(0)
	if existing, ok := s.tables[table]; ok {
		rev = existing.Revision
	}
	s.tables[table] = &Snapshot{
		Header:   append([]string(nil), header...),
		Rows:     copyRows(CleanRows(rows, len(header))),
		Revision: rev + 1,
	}
}

// ReadAll implements Store
func (s *MemoryStore) ReadAll(_ context.Context, table string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.tables[table]
	if !ok {
		return &Snapshot{}, nil
	}

	return &Snapshot{
		Header:   append([]string(nil), snap.Header...),
		Rows:     copyRows(snap.Rows),
		Revision: snap.Revision,
	}, nil
}

// ReplaceAll implements Store
func (s *MemoryStore) ReplaceAll(_ context.Context, table string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(0)
	if existing, ok := s.tables[table]; ok {
		current = existing.Revision
	}
	if snap.Revision != current {
		return ErrConflict
	}

	s.tables[table] = &Snapshot{
		Header:   append([]string(nil), snap.Header...),
		Rows:     copyRows(CleanRows(snap.Rows, len(snap.Header))),
		Revision: current + 1,
	}
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
