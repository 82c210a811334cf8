package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
	"github.com/redis/go-redis/v9"
)

const noncePrefix = "mintgate:nonce:"

// consumeScript deletes the key only when the stored nonce matches the
// presented one, making the check-and-delete atomic. A mismatch leaves the
// still-valid nonce in place.
var consumeScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// RedisNonceStore is a Redis implementation of the NonceStore interface.
// Expiry is delegated to Redis key TTLs.
type RedisNonceStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisNonceStore creates a new Redis nonce store.
func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client, now: time.Now}
}

// Issue creates a challenge for the session, replacing any live one.
func (s *RedisNonceStore) Issue(ctx context.Context, sessionID string) (core.Challenge, error) {
	nonce, err := generateNonce()
	if err != nil {
		return core.Challenge{}, err
	}
	sessionID = orNewSessionID(sessionID)

	if err := s.client.Set(ctx, noncePrefix+sessionID, nonce, core.ChallengeTTL).Err(); err != nil {
		return core.Challenge{}, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	return core.Challenge{
		SessionID: sessionID,
		Nonce:     nonce,
		IssuedAt:  s.now(),
		ExpiresIn: int(core.ChallengeTTL.Seconds()),
	}, nil
}

// Consume atomically deletes the challenge when the nonce matches. Expired
// keys are already gone, so they fail the match.
func (s *RedisNonceStore) Consume(ctx context.Context, sessionID, nonce string) (bool, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{noncePrefix + sessionID}, nonce).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return res == 1, nil
}

var _ ports.NonceStore = (*RedisNonceStore)(nil)
