package identity

import (
	"context"
	"sync"

	"campusvoice/internal/domain"
)

// MemoryStore is the in-memory Store used by unit tests and single-node dev
// runs. All mutations happen under one mutex so the idempotent-create and
// strike-increment guarantees hold without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
	byEmail  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]domain.UserProfile),
		byEmail:  make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, profile domain.UserProfile) (domain.UserProfile, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[profile.ID]; ok {
		return existing, false, nil
	}
	s.profiles[profile.ID] = profile
	if profile.Email != "" {
		s.byEmail[profile.Email] = profile.ID
	}
	return profile, true, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return domain.UserProfile{}, ErrNotFound
	}
	return profile, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.UserProfile{}, ErrNotFound
	}
	return s.profiles[id], nil
}

func (s *MemoryStore) IncrementStrikes(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	if !ok {
		return 0, ErrNotFound
	}
	profile.Strikes++
	s.profiles[id] = profile
	return profile.Strikes, nil
}

func (s *MemoryStore) SetRole(_ context.Context, id string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	profile.Role = role
	s.profiles[id] = profile
	return nil
}
