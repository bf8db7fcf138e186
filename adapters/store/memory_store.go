package store

import (
	"context"
	"sync"

	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
)

// MemoryStore is an in-memory implementation of the TokenStore
// interface, primarily intended for tests and single-run tools.
type MemoryStore struct {
	mu      sync.RWMutex
	token   core.Credential
	present bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ ports.TokenStore = (*MemoryStore)(nil)

// Get returns the stored credential, if any.
func (s *MemoryStore) Get(ctx context.Context) (core.Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return "", false, nil
	}
	return s.token, true, nil
}

// Set overwrites the stored credential.
func (s *MemoryStore) Set(ctx context.Context, token core.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.present = true
	return nil
}

// Clear removes the stored credential.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.present = false
	return nil
}
