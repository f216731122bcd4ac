package summary

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory. It is used when persistence is
// disabled and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	recs []Record
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for _, r := range s.recs {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
