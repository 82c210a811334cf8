// Package social implements the client for the external influence-metrics
// API. Failures here are transport concerns; callers decide what an
// unavailable snapshot means.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
	"go.uber.org/zap"
)

// Client talks to the influence-metrics REST API.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates a new metrics API client.
func NewClient(baseURL, apiToken string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

type profileResponse struct {
	AccountID      string  `json:"accountId"`
	Username       string  `json:"username"`
	FollowersCount int64   `json:"followersCount"`
	PostsCount     int64   `json:"postsCount"`
	EngagementRate float64 `json:"engagementRate"`
	Verified       bool    `json:"verified"`
}

type engagementResponse struct {
	AccountID string `json:"accountId"`
	Period    string `json:"period"`
	Metrics   struct {
		Likes    int64 `json:"likes"`
		Retweets int64 `json:"retweets"`
		Replies  int64 `json:"replies"`
		Mentions int64 `json:"mentions"`
	} `json:"metrics"`
}

// GetProfile returns a fresh profile snapshot for the account.
func (c *Client) GetProfile(ctx context.Context, accountID string) (*core.ProfileSnapshot, error) {
	var resp profileResponse
	if err := c.get(ctx, "/profiles/"+url.PathEscape(accountID), nil, &resp); err != nil {
		return nil, err
	}

	return &core.ProfileSnapshot{
		AccountID:      resp.AccountID,
		Username:       resp.Username,
		FollowersCount: resp.FollowersCount,
		PostsCount:     resp.PostsCount,
		EngagementRate: resp.EngagementRate,
		Verified:       resp.Verified,
		FetchedAt:      c.now(),
	}, nil
}

// GetEngagement returns raw engagement counters for the period.
func (c *Client) GetEngagement(ctx context.Context, accountID, period string) (*core.EngagementData, error) {
	query := url.Values{"period": {period}}
	var resp engagementResponse
	if err := c.get(ctx, "/analytics/"+url.PathEscape(accountID)+"/engagement", query, &resp); err != nil {
		return nil, err
	}

	return &core.EngagementData{
		AccountID: resp.AccountID,
		Period:    resp.Period,
		Likes:     resp.Metrics.Likes,
		Retweets:  resp.Metrics.Retweets,
		Replies:   resp.Metrics.Replies,
		Mentions:  resp.Metrics.Mentions,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metrics API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("metrics API auth rejected (status %d)", resp.StatusCode)
	case http.StatusTooManyRequests:
		c.logger.Warn("metrics API rate limited", zap.String("path", path))
		return fmt.Errorf("metrics API rate limited (status %d)", resp.StatusCode)
	default:
		return fmt.Errorf("metrics API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode metrics API response: %w", err)
	}
	return nil
}

var _ ports.SocialClient = (*Client)(nil)
