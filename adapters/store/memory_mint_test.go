package store

import (
	"context"
	"testing"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingRecord(key string) *core.MintRecord {
	return &core.MintRecord{
		Key:         key,
		Recipient:   "0xabc",
		MilestoneID: "followers-1k",
		Amount:      "100",
		State:       core.MintStatePending,
		UpdatedAt:   time.Now(),
	}
}

func TestMintLedgerBeginClaimsFreeKey(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryMintLedger()

	prior, acquired, err := l.Begin(ctx, pendingRecord("k1"))
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.Nil(t, prior)
}

func TestMintLedgerBeginBlocksInFlight(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryMintLedger()

	_, acquired, err := l.Begin(ctx, pendingRecord("k1"))
	require.NoError(t, err)
	require.True(t, acquired)

	prior, acquired, err := l.Begin(ctx, pendingRecord("k1"))
	require.NoError(t, err)
	assert.False(t, acquired)
	require.NotNil(t, prior)
	assert.Equal(t, core.MintStatePending, prior.State)
}

func TestMintLedgerConfirmedIsPermanent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryMintLedger()

	record := pendingRecord("k1")
	_, _, err := l.Begin(ctx, record)
	require.NoError(t, err)

	record.State = core.MintStateConfirmed
	record.TxHash = "0xhash"
	require.NoError(t, l.Finish(ctx, record))

	prior, acquired, err := l.Begin(ctx, pendingRecord("k1"))
	require.NoError(t, err)
	assert.False(t, acquired, "confirmed keys can never be reclaimed")
	require.NotNil(t, prior)
	assert.Equal(t, core.MintStateConfirmed, prior.State)
	assert.Equal(t, "0xhash", prior.TxHash)
}

func TestMintLedgerFailedAllowsRetry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryMintLedger()

	record := pendingRecord("k1")
	_, _, err := l.Begin(ctx, record)
	require.NoError(t, err)

	record.State = core.MintStateFailed
	record.Reason = "submission failed"
	require.NoError(t, l.Finish(ctx, record))

	prior, acquired, err := l.Begin(ctx, pendingRecord("k1"))
	require.NoError(t, err)
	assert.True(t, acquired, "failed keys may be retried explicitly")
	require.NotNil(t, prior)
	assert.Equal(t, core.MintStateFailed, prior.State)
}

func TestMintLedgerUnconfirmedAllowsRetry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryMintLedger()

	record := pendingRecord("k1")
	_, _, err := l.Begin(ctx, record)
	require.NoError(t, err)

	record.State = core.MintStateSubmittedUnconfirmed
	require.NoError(t, l.Finish(ctx, record))

	_, acquired, err := l.Begin(ctx, pendingRecord("k1"))
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestMintLedgerGet(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryMintLedger()

	got, err := l.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	record := pendingRecord("k1")
	_, _, err = l.Begin(ctx, record)
	require.NoError(t, err)

	got, err = l.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.MilestoneID, got.MilestoneID)
}
