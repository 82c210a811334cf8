package service

import (
	"context"
	"fmt"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
	"go.uber.org/zap"
)

// DefaultEngagementPeriod is the reporting window used for engagement data.
const DefaultEngagementPeriod = "30d"

// MilestoneService evaluates social profiles against the declared milestone
// set. Evaluation itself is pure; this service owns fetching the snapshot.
type MilestoneService struct {
	social ports.SocialClient
	set    *core.MilestoneSet
	period string
	logger *zap.Logger
}

// NewMilestoneService creates a new milestone service.
func NewMilestoneService(social ports.SocialClient, set *core.MilestoneSet, logger *zap.Logger) *MilestoneService {
	return &MilestoneService{
		social: social,
		set:    set,
		period: DefaultEngagementPeriod,
		logger: logger,
	}
}

// Set returns the declared milestone set.
func (s *MilestoneService) Set() *core.MilestoneSet {
	return s.set
}

// Snapshot fetches a fresh profile and engagement snapshot. Any fetch
// failure is surfaced as snapshot-unavailable; it is never reported as zero
// metrics, which would read as "milestone not met".
func (s *MilestoneService) Snapshot(ctx context.Context, accountID string) (*core.ProfileSnapshot, error) {
	profile, err := s.social.GetProfile(ctx, accountID)
	if err != nil {
		s.logger.Warn("profile fetch failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", core.ErrSnapshotUnavailable, err)
	}

	engagement, err := s.social.GetEngagement(ctx, accountID, s.period)
	if err != nil {
		s.logger.Warn("engagement fetch failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", core.ErrSnapshotUnavailable, err)
	}

	// Some platform feeds omit a precomputed rate; derive it from the raw
	// counters in that case.
	if profile.EngagementRate == 0 {
		profile.EngagementRate = core.EngagementScore(
			engagement.Likes, engagement.Retweets, engagement.Replies, profile.FollowersCount)
	}
	return profile, nil
}

// Evaluate fetches a fresh snapshot and scores it against the milestone set.
func (s *MilestoneService) Evaluate(ctx context.Context, accountID string) (*core.Verdict, error) {
	snapshot, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	verdict := core.Evaluate(*snapshot, s.set)
	return &verdict, nil
}
