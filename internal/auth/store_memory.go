package auth

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential)}
}

func (s *MemoryStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[cred.Email]; ok {
		return ErrAlreadyExists
	}
	s.creds[cred.Email] = cred
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[email]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}
