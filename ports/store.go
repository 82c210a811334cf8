package ports

import (
	"context"

	"github.com/layer-3/mintgate/core"
)

// NonceStore issues and retires one-time challenge values keyed by session.
// Consume is the only mutating read; it must be atomic so that two concurrent
// consumers of the same session can never both succeed.
type NonceStore interface {
	// Issue creates a challenge for the session, replacing any live one.
	// An empty sessionID asks the store to generate a fresh session.
	Issue(ctx context.Context, sessionID string) (core.Challenge, error)

	// Consume atomically deletes the challenge and returns true only when the
	// presented nonce matches exactly and the challenge is unexpired. A failed
	// consume has no side effects.
	Consume(ctx context.Context, sessionID, nonce string) (bool, error)
}

// IdentityStore persists authenticated identities keyed by lowercase address.
type IdentityStore interface {
	// Upsert creates or refreshes the identity; re-verification updates the
	// existing record rather than creating a duplicate.
	Upsert(ctx context.Context, identity *core.Identity, binding *core.SignatureBinding) error

	// Get returns the identity for an address, or nil when unknown.
	Get(ctx context.Context, address string) (*core.Identity, error)
}

// MintLedger is the idempotency ledger for mint requests. Begin and Finish
// carry check-and-set semantics: within one key at most one request may be in
// flight, and a confirmed key stays confirmed forever.
type MintLedger interface {
	// Get returns the record for a key, or nil when none exists.
	Get(ctx context.Context, key string) (*core.MintRecord, error)

	// Begin atomically claims the key for the given request. When the key is
	// already in flight or has reached a terminal state, Begin does not claim
	// it and returns the prior record with acquired=false.
	Begin(ctx context.Context, record *core.MintRecord) (prior *core.MintRecord, acquired bool, err error)

	// Finish releases the in-flight claim and stores the request outcome.
	// Confirmed records are never purged.
	Finish(ctx context.Context, record *core.MintRecord) error
}
