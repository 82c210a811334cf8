package store

import (
	"context"
	"sync"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
)

// MemoryIdentityStore is an in-memory implementation of the IdentityStore
// interface, keyed by lowercase address.
type MemoryIdentityStore struct {
	identities map[string]core.Identity
	bindings   map[string]core.SignatureBinding
	mu         sync.RWMutex
}

// NewMemoryIdentityStore creates a new in-memory identity store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{
		identities: make(map[string]core.Identity),
		bindings:   make(map[string]core.SignatureBinding),
	}
}

// Upsert creates or refreshes the identity record for its address.
func (s *MemoryIdentityStore) Upsert(_ context.Context, identity *core.Identity, binding *core.SignatureBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[identity.Address] = *identity
	if binding != nil {
		s.bindings[identity.Address] = *binding
	}
	return nil
}

// Get returns the identity for an address, or nil when unknown.
func (s *MemoryIdentityStore) Get(_ context.Context, address string) (*core.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[core.NormalizeAddress(address)]
	if !ok {
		return nil, nil
	}
	cp := identity
	return &cp, nil
}

var _ ports.IdentityStore = (*MemoryIdentityStore)(nil)
