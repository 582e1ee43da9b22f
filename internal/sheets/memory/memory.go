package memory

import (
	"context"
	"fmt"
	"sync"

	"haulbook/internal/core"
)

// Store is an in-memory ledger mirror for local runs and tests.
type Store struct {
	mu    sync.Mutex
	rows  map[int64]core.LedgerEntry
	order []int64
}

func New() *Store {
	return &Store{rows: make(map[int64]core.LedgerEntry)}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.LedgerEntry, _ string) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.rows[e.ID] = e
	return fmt.Sprintf("mem:%d", e.ID), nil
}

// DeleteEntry removes the entry. Missing entries are not an error.
func (s *Store) DeleteEntry(_ context.Context, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, entryID)
	return nil
}

// Entries returns the mirrored entries in append order.
func (s *Store) Entries() []core.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LedgerEntry, 0, len(s.rows))
	for _, id := range s.order {
		if e, ok := s.rows[id]; ok {
			out = append(out, e)
		}
	}
	return out
}
