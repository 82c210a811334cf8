package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
	"github.com/redis/go-redis/v9"
)

const (
	identityPrefix = "mintgate:identity:"
	bindingPrefix  = "mintgate:binding:"
)

// RedisIdentityStore is a Redis implementation of the IdentityStore
// interface. Records are JSON blobs keyed by lowercase address, kept without
// TTL; the session expiry inside the record is what bounds trust.
type RedisIdentityStore struct {
	client *redis.Client
}

// NewRedisIdentityStore creates a new Redis identity store.
func NewRedisIdentityStore(client *redis.Client) *RedisIdentityStore {
	return &RedisIdentityStore{client: client}
}

// Upsert creates or refreshes the identity record for its address.
func (s *RedisIdentityStore) Upsert(ctx context.Context, identity *core.Identity, binding *core.SignatureBinding) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.client.Set(ctx, identityPrefix+identity.Address, payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	if binding != nil {
		bindingPayload, err := json.Marshal(binding)
		if err != nil {
			return fmt.Errorf("marshal binding: %w", err)
		}
		if err := s.client.Set(ctx, bindingPrefix+identity.Address, bindingPayload, 0).Err(); err != nil {
			return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
		}
	}
	return nil
}

// Get returns the identity for an address, or nil when unknown.
func (s *RedisIdentityStore) Get(ctx context.Context, address string) (*core.Identity, error) {
	payload, err := s.client.Get(ctx, identityPrefix+core.NormalizeAddress(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var identity core.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal identity: %w", err)
	}
	return &identity, nil
}

var _ ports.IdentityStore = (*RedisIdentityStore)(nil)
