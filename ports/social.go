package ports

import (
	"context"

	"github.com/layer-3/mintgate/core"
)

// SocialClient fetches current profile and engagement metrics from the
// external social-data service.
type SocialClient interface {
	// GetProfile returns a fresh profile snapshot for the account.
	GetProfile(ctx context.Context, accountID string) (*core.ProfileSnapshot, error)

	// GetEngagement returns raw engagement counters for the period.
	GetEngagement(ctx context.Context, accountID, period string) (*core.EngagementData, error)
}
