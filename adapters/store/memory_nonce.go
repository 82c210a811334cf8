package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
)

type nonceEntry struct {
	nonce    string
	issuedAt time.Time
}

// MemoryNonceStore is an in-memory implementation of the NonceStore
// interface. Expired entries are swept lazily on every Issue call, so the map
// stays bounded without a background task.
type MemoryNonceStore struct {
	entries map[string]nonceEntry
	mu      sync.Mutex
	now     func() time.Time
}

// NewMemoryNonceStore creates a new in-memory nonce store.
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{
		entries: make(map[string]nonceEntry),
		now:     time.Now,
	}
}

// Issue creates a challenge for the session, replacing any live one.
func (s *MemoryNonceStore) Issue(_ context.Context, sessionID string) (core.Challenge, error) {
	nonce, err := generateNonce()
	if err != nil {
		return core.Challenge{}, err
	}
	sessionID = orNewSessionID(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if now.Sub(entry.issuedAt) > core.ChallengeTTL {
			delete(s.entries, id)
		}
	}

	s.entries[sessionID] = nonceEntry{nonce: nonce, issuedAt: now}

	return core.Challenge{
		SessionID: sessionID,
		Nonce:     nonce,
		IssuedAt:  now,
		ExpiresIn: int(core.ChallengeTTL.Seconds()),
	}, nil
}

// Consume atomically deletes the challenge when the nonce matches and is
// unexpired. A mismatch or expired entry leaves the store untouched.
func (s *MemoryNonceStore) Consume(_ context.Context, sessionID, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok || entry.nonce != nonce {
		return false, nil
	}
	if s.now().Sub(entry.issuedAt) > core.ChallengeTTL {
		return false, nil
	}

	delete(s.entries, sessionID)
	return true, nil
}

var _ ports.NonceStore = (*MemoryNonceStore)(nil)
