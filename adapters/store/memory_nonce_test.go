package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceSingleUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNonceStore()

	challenge, err := s.Issue(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, challenge.SessionID)
	require.Len(t, challenge.Nonce, 32, "16 bytes of entropy, hex-encoded")
	require.Equal(t, 600, challenge.ExpiresIn)

	ok, err := s.Consume(ctx, challenge.SessionID, challenge.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)

	// Replay with the same value fails
	ok, err = s.Consume(ctx, challenge.SessionID, challenge.Nonce)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNonceMismatchHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNonceStore()

	challenge, err := s.Issue(ctx, "session-1")
	require.NoError(t, err)

	ok, err := s.Consume(ctx, "session-1", "wrong-nonce")
	require.NoError(t, err)
	assert.False(t, ok)

	// The real nonce must still be consumable
	ok, err = s.Consume(ctx, "session-1", challenge.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNonceReissueInvalidatesOld(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNonceStore()

	first, err := s.Issue(ctx, "session-1")
	require.NoError(t, err)
	second, err := s.Issue(ctx, "session-1")
	require.NoError(t, err)
	require.NotEqual(t, first.Nonce, second.Nonce)

	ok, err := s.Consume(ctx, "session-1", first.Nonce)
	require.NoError(t, err)
	assert.False(t, ok, "old nonce is permanently invalid after reissue")

	ok, err = s.Consume(ctx, "session-1", second.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNonceExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNonceStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	challenge, err := s.Issue(ctx, "session-1")
	require.NoError(t, err)

	// Just inside the window still works on a fresh store
	s.now = func() time.Time { return now.Add(core.ChallengeTTL - time.Second) }
	ok, err := s.Consume(ctx, "session-1", challenge.Nonce)
	require.NoError(t, err)
	assert.True(t, ok)

	// Past the window fails even with the correct nonce
	s.now = func() time.Time { return now }
	challenge, err = s.Issue(ctx, "session-2")
	require.NoError(t, err)
	s.now = func() time.Time { return now.Add(core.ChallengeTTL + time.Second) }
	ok, err = s.Consume(ctx, "session-2", challenge.Nonce)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNonceSweepOnIssue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNonceStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Issue(ctx, id)
		require.NoError(t, err)
	}

	s.now = func() time.Time { return now.Add(core.ChallengeTTL + time.Minute) }
	_, err := s.Issue(ctx, "d")
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.entries, 1, "expired entries are purged on issue")
}

func TestNonceConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryNonceStore()

	challenge, err := s.Issue(ctx, "session-1")
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	successes := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := s.Consume(ctx, "session-1", challenge.Nonce)
			if ok {
				successes <- true
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent consume may succeed")
}
