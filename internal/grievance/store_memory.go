package grievance

import (
	"context"
	"sort"
	"sync"

	"campusvoice/internal/domain"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.Grievance
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.Grievance)}
}

func (s *MemoryStore) Create(_ context.Context, g domain.Grievance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[g.ID] = clone(g)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.records[id]
	if !ok {
		return domain.Grievance{}, ErrNotFound
	}
	return clone(g), nil
}

func (s *MemoryStore) Update(_ context.Context, g domain.Grievance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[g.ID]; !ok {
		return ErrNotFound
	}
	s.records[g.ID] = clone(g)
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]domain.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Grievance
	for _, g := range s.records {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.NotStatus != "" && g.Status == filter.NotStatus {
			continue
		}
		if filter.CreatorID != "" && g.CreatorID != filter.CreatorID {
			continue
		}
		out = append(out, clone(g))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// clone deep-copies the slices so callers cannot mutate stored history behind
// the store's back.
func clone(g domain.Grievance) domain.Grievance {
	g.Updates = append([]domain.Update{}, g.Updates...)
	g.History = append([]domain.HistoryEntry{}, g.History...)
	if g.ResolvedAt != nil {
		t := *g.ResolvedAt
		g.ResolvedAt = &t
	}
	return g
}
