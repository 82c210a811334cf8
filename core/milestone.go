package core

import (
	"fmt"
	"time"
)

// Milestone is a named combination of threshold conditions over social
// metrics. A zero threshold means the dimension is not required by this
// milestone.
type Milestone struct {
	ID                string  `mapstructure:"id" json:"id"`
	FollowersMin      int64   `mapstructure:"followers_min" json:"followers_min"`
	PostsMin          int64   `mapstructure:"posts_min" json:"posts_min"`
	EngagementRateMin float64 `mapstructure:"engagement_rate_min" json:"engagement_rate_min"`
	RequireVerified   bool    `mapstructure:"require_verified" json:"require_verified"`
	MintAmount        string  `mapstructure:"mint_amount" json:"mint_amount"`
}

// MilestoneSet is an ordered, validated collection of milestones. Thresholds
// within each numeric dimension are strictly increasing across the set.
type MilestoneSet struct {
	milestones []Milestone
}

// NewMilestoneSet validates and wraps a declared milestone list.
func NewMilestoneSet(milestones []Milestone) (*MilestoneSet, error) {
	seen := make(map[string]struct{}, len(milestones))
	var prevFollowers, prevPosts int64
	var prevRate float64
	for i, m := range milestones {
		if m.ID == "" {
			return nil, fmt.Errorf("milestone %d: missing id", i)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("milestone %q: duplicate id", m.ID)
		}
		seen[m.ID] = struct{}{}

		if m.FollowersMin > 0 {
			if m.FollowersMin <= prevFollowers {
				return nil, fmt.Errorf("milestone %q: follower threshold %d not strictly increasing", m.ID, m.FollowersMin)
			}
			prevFollowers = m.FollowersMin
		}
		if m.PostsMin > 0 {
			if m.PostsMin <= prevPosts {
				return nil, fmt.Errorf("milestone %q: post threshold %d not strictly increasing", m.ID, m.PostsMin)
			}
			prevPosts = m.PostsMin
		}
		if m.EngagementRateMin > 0 {
			if m.EngagementRateMin <= prevRate {
				return nil, fmt.Errorf("milestone %q: engagement threshold %v not strictly increasing", m.ID, m.EngagementRateMin)
			}
			prevRate = m.EngagementRateMin
		}
	}
	return &MilestoneSet{milestones: milestones}, nil
}

// Milestones returns the declared milestones in order.
func (s *MilestoneSet) Milestones() []Milestone {
	return s.milestones
}

// Lookup returns the milestone with the given id.
func (s *MilestoneSet) Lookup(id string) (Milestone, bool) {
	for _, m := range s.milestones {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// MilestoneStatus is the evaluation result for a single milestone.
type MilestoneStatus struct {
	Milestone Milestone `json:"milestone"`
	Achieved  bool      `json:"achieved"`
}

// DimensionProgress tracks how close a metric is to its next unmet threshold.
type DimensionProgress struct {
	Current  float64 `json:"current"`
	Next     float64 `json:"next"`     // 0 when every threshold is met
	Achieved bool    `json:"achieved"` // true when no threshold remains
	Percent  float64 `json:"percent"`  // in [0,100]
}

// Verdict is the outcome of evaluating one snapshot against a milestone set.
type Verdict struct {
	AccountID   string              `json:"account_id"`
	Statuses    []MilestoneStatus   `json:"statuses"`
	Followers   DimensionProgress   `json:"followers"`
	Posts       DimensionProgress   `json:"posts"`
	Engagement  DimensionProgress   `json:"engagement"`
	Influencer  bool                `json:"influencer"`
	EvaluatedAt time.Time           `json:"evaluated_at"`
}

// MilestoneMet reports whether every required condition of the named
// milestone was met by the evaluated snapshot.
func (v *Verdict) MilestoneMet(id string) bool {
	for _, st := range v.Statuses {
		if st.Milestone.ID == id {
			return st.Achieved
		}
	}
	return false
}

// Evaluate computes which milestones the snapshot meets and how close the
// account is to the next unmet threshold in each dimension. Pure function.
func Evaluate(snapshot ProfileSnapshot, set *MilestoneSet) Verdict {
	verdict := Verdict{
		AccountID:   snapshot.AccountID,
		Influencer:  IsInfluencer(snapshot),
		EvaluatedAt: snapshot.FetchedAt,
	}

	var followerThresholds, postThresholds, rateThresholds []float64
	for _, m := range set.milestones {
		achieved := true
		if m.FollowersMin > 0 {
			followerThresholds = append(followerThresholds, float64(m.FollowersMin))
			achieved = achieved && snapshot.FollowersCount >= m.FollowersMin
		}
		if m.PostsMin > 0 {
			postThresholds = append(postThresholds, float64(m.PostsMin))
			achieved = achieved && snapshot.PostsCount >= m.PostsMin
		}
		if m.EngagementRateMin > 0 {
			rateThresholds = append(rateThresholds, m.EngagementRateMin)
			achieved = achieved && snapshot.EngagementRate >= m.EngagementRateMin
		}
		if m.RequireVerified {
			achieved = achieved && snapshot.Verified
		}
		verdict.Statuses = append(verdict.Statuses, MilestoneStatus{Milestone: m, Achieved: achieved})
	}

	verdict.Followers = progress(float64(snapshot.FollowersCount), followerThresholds)
	verdict.Posts = progress(float64(snapshot.PostsCount), postThresholds)
	verdict.Engagement = progress(snapshot.EngagementRate, rateThresholds)
	return verdict
}

// progress finds the smallest unmet threshold and the percentage of the way
// there. With no unmet threshold remaining the dimension is complete at 100%.
func progress(current float64, thresholds []float64) DimensionProgress {
	p := DimensionProgress{Current: current}
	for _, t := range thresholds {
		if current < t {
			p.Next = t
			p.Percent = current / t * 100
			return p
		}
	}
	p.Achieved = true
	p.Percent = 100
	return p
}

// EngagementScore derives a weighted engagement score normalized by follower
// count. Replies weigh more than retweets, retweets more than likes. Zero
// followers yields score 0.
func EngagementScore(likes, retweets, replies, followers int64) float64 {
	if followers <= 0 {
		return 0
	}
	total := float64(likes + retweets*2 + replies*3)
	return total / float64(followers) * 100
}

// IsInfluencer classifies an account as an influencer. Informational only;
// never a substitute for explicit milestone checks.
func IsInfluencer(snapshot ProfileSnapshot) bool {
	return snapshot.FollowersCount >= 10_000 ||
		snapshot.EngagementRate >= 2.0 ||
		snapshot.Verified
}
