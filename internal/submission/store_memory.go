package submission

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory draft store for tests and single-node
// deployments without Redis. Drafts do not expire.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Save(_ context.Context, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID] = cloneDraft(d)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	return cloneDraft(d), nil
}

func (s *MemoryStore) SwapState(_ context.Context, id string, from, to State) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	if d.State != from {
		return Draft{}, ErrStateConflict
	}
	d.State = to
	s.drafts[id] = d
	return cloneDraft(d), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func cloneDraft(d Draft) Draft {
	if d.Result != nil {
		r := *d.Result
		d.Result = &r
	}
	return d
}
