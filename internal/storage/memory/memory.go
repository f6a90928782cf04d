package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fintrack/internal/core"
)

// Store is a process-local ledger with the same contract as the SQLite
// repository, minus durability.
type Store struct {
	mu     sync.Mutex
	lastID int64
	items  map[int64]core.Transaction
}

func New() *Store {
	return &Store{items: make(map[int64]core.Transaction)}
}

// Initialize is a no-op; the store is ready once constructed.
func (s *Store) Initialize(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Insert validates and stores the transaction under the next id, with the
// category trimmed.
func (s *Store) Insert(_ context.Context, n core.NewTransaction) (int64, error) {
	n = n.Normalized()
	if err := n.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	s.items[s.lastID] = core.Transaction{
		ID:       s.lastID,
		Kind:     n.Kind,
		Category: n.Category,
		Amount:   n.Amount,
		Date:     n.Date,
	}
	return s.lastID, nil
}

// ListAll returns a copy of every transaction in id order.
func (s *Store) ListAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) Stamp(_ context.Context) (core.Stamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := core.Stamp{Count: len(s.items)}
	for id := range s.items {
		if id > st.MaxID {
			st.MaxID = id
		}
	}
	return st, nil
}

// Delete removes id if present.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Store) Close() error {
	return nil
}
