// Package memory is the in-process ledger backend, used for tests and as
// the default development store.
package memory

import (
	"context"
	"sync"

	"fintone/internal/core"
	"fintone/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	items []core.Record
	keys  map[string]struct{}
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{keys: make(map[string]struct{})}
}

// NewWithRecords seeds the store, skipping invalid rows and duplicates.
func NewWithRecords(records []core.Record) *Store {
	s := New()
	for _, r := range records {
		_, _ = s.Save(context.Background(), r)
	}
	return s
}

// Save appends the record unless an identical row already exists. The
// mutex makes the duplicate check and the append one atomic step.
func (s *Store) Save(_ context.Context, r core.Record) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.Key()
	if _, dup := s.keys[key]; dup {
		return false, nil
	}
	s.keys[key] = struct{}{}
	s.items = append(s.items, r)
	return true, nil
}

func (s *Store) ReadAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.items...), nil
}

func (s *Store) ReadByType(ctx context.Context, t core.TransactionType) ([]core.Record, error) {
	return s.filter(func(r core.Record) bool { return r.Type == t }), nil
}

func (s *Store) ReadByDate(ctx context.Context, d core.Date) ([]core.Record, error) {
	return s.filter(func(r core.Record) bool { return r.Date.Equal(d) }), nil
}

func (s *Store) ReadByMonth(ctx context.Context, year, month int) ([]core.Record, error) {
	return s.filter(func(r core.Record) bool {
		return r.Date.Year() == year && r.Date.Month() == month
	}), nil
}

func (s *Store) filter(keep func(core.Record) bool) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Record
	for _, r := range s.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
