package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMilestoneFixture(t *testing.T, social *stubSocial) *service.MilestoneService {
	t.Helper()

	set, err := core.NewMilestoneSet([]core.Milestone{
		{ID: "followers-1k", FollowersMin: 1000, MintAmount: "100"},
		{ID: "followers-10k", FollowersMin: 10000, MintAmount: "1000"},
	})
	require.NoError(t, err)

	return service.NewMilestoneService(social, set, zap.NewNop())
}

func TestEvaluateAgainstSnapshot(t *testing.T) {
	ctx := context.Background()
	svc := newMilestoneFixture(t, &stubSocial{
		profile: &core.ProfileSnapshot{
			FollowersCount: 7500,
			PostsCount:     300,
			EngagementRate: 1.2,
			FetchedAt:      time.Now(),
		},
		engagement: &core.EngagementData{Likes: 100, Retweets: 50, Replies: 20},
	})

	verdict, err := svc.Evaluate(ctx, "acct-1")
	require.NoError(t, err)

	assert.Equal(t, "acct-1", verdict.AccountID)
	assert.True(t, verdict.MilestoneMet("followers-1k"))
	assert.False(t, verdict.MilestoneMet("followers-10k"))
	assert.InDelta(t, 75.0, verdict.Followers.Percent, 0.001)
}

func TestEvaluateDerivesEngagementRate(t *testing.T) {
	ctx := context.Background()
	svc := newMilestoneFixture(t, &stubSocial{
		profile: &core.ProfileSnapshot{
			FollowersCount: 10000,
			EngagementRate: 0, // the feed omitted it
			FetchedAt:      time.Now(),
		},
		engagement: &core.EngagementData{Likes: 100, Retweets: 50, Replies: 20},
	})

	snapshot, err := svc.Snapshot(ctx, "acct-1")
	require.NoError(t, err)
	assert.InDelta(t, 2.6, snapshot.EngagementRate, 0.001)
}

func TestEvaluateSnapshotUnavailable(t *testing.T) {
	ctx := context.Background()
	svc := newMilestoneFixture(t, &stubSocial{err: errors.New("rate limited")})

	_, err := svc.Evaluate(ctx, "acct-1")
	assert.ErrorIs(t, err, core.ErrSnapshotUnavailable,
		"fetch failure must never read as milestone not met")
}
