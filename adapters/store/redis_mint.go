package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
	"github.com/redis/go-redis/v9"
)

const mintPrefix = "mintgate:mint:"

// mintLeaseTTL bounds how long a non-terminal claim may hold the key. A
// process that dies between Begin and the terminal Finish releases the key
// when the lease lapses instead of stranding the milestone in flight. Must
// comfortably exceed submission plus the confirmation wait.
const mintLeaseTTL = 10 * time.Minute

// beginScript claims the key unless a prior record is in flight or terminal.
// The claim is written under a lease (ARGV[2], milliseconds) so an orphaned
// claim eventually expires. Returns {acquired, priorJSON}.
var beginScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local state = cjson.decode(cur)['state']
	if state ~= 'failed' and state ~= 'submitted_unconfirmed' then
		return {0, cur}
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return {1, cur or ''}
`)

// leaseFor returns the write TTL for a record: in-flight states stay under
// the claim lease, outcomes are persisted without expiry.
func leaseFor(state core.MintState) time.Duration {
	switch state {
	case core.MintStatePending, core.MintStateSubmitted:
		return mintLeaseTTL
	default:
		return 0
	}
}

// RedisMintLedger is a Redis implementation of the MintLedger interface.
// Records are JSON blobs; outcome records carry no TTL, so confirmed keys
// are never purged.
type RedisMintLedger struct {
	client *redis.Client
}

// NewRedisMintLedger creates a new Redis mint ledger.
func NewRedisMintLedger(client *redis.Client) *RedisMintLedger {
	return &RedisMintLedger{client: client}
}

// Get returns the record for a key, or nil when none exists.
func (l *RedisMintLedger) Get(ctx context.Context, key string) (*core.MintRecord, error) {
	payload, err := l.client.Get(ctx, mintPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return unmarshalRecord(payload)
}

// Begin atomically claims the key via a Lua check-and-set.
func (l *RedisMintLedger) Begin(ctx context.Context, record *core.MintRecord) (*core.MintRecord, bool, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, false, fmt.Errorf("marshal mint record: %w", err)
	}

	res, err := beginScript.Run(ctx, l.client, []string{mintPrefix + record.Key}, payload, mintLeaseTTL.Milliseconds()).Slice()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("%w: unexpected script reply", core.ErrStoreOperationFailed)
	}

	acquired, _ := res[0].(int64)
	priorJSON, _ := res[1].(string)

	var prior *core.MintRecord
	if priorJSON != "" {
		prior, err = unmarshalRecord([]byte(priorJSON))
		if err != nil {
			return nil, false, err
		}
	}
	return prior, acquired == 1, nil
}

// Finish stores the request outcome. In-flight intermediate states keep the
// claim lease; terminal and retryable outcomes are written to stay.
func (l *RedisMintLedger) Finish(ctx context.Context, record *core.MintRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal mint record: %w", err)
	}
	if err := l.client.Set(ctx, mintPrefix+record.Key, payload, leaseFor(record.State)).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

func unmarshalRecord(payload []byte) (*core.MintRecord, error) {
	var record core.MintRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal mint record: %w", err)
	}
	return &record, nil
}

var _ ports.MintLedger = (*RedisMintLedger)(nil)
