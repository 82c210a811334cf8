package core

import (
	"strings"
	"time"
)

// ChallengeTTL is the lifetime of an issued challenge.
const ChallengeTTL = 10 * time.Minute

// Challenge represents a one-time authentication challenge bound to a session.
type Challenge struct {
	SessionID string    // Session the nonce is bound to
	Nonce     string    // Random hex nonce to be embedded in the signed message
	IssuedAt  time.Time // When the challenge was created
	ExpiresIn int       // Challenge lifetime in seconds
}

// Identity represents a wallet owner who proved control of their address.
type Identity struct {
	Address       string    `json:"address"`        // Lowercase Ethereum address, durable identity key
	VerifiedAt    time.Time `json:"verified_at"`    // When the last verification succeeded
	SessionToken  string    `json:"session_token"`  // Signed session token
	SessionExpiry time.Time `json:"session_expiry"` // Absolute token expiry
}

// SignatureBinding records the proof material of a successful verification.
// Kept alongside the identity as an audit trail; never consulted for trust.
type SignatureBinding struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Nonce     string `json:"nonce"`
}

// ProfileSnapshot is a read-only, time-stamped copy of a social profile.
type ProfileSnapshot struct {
	AccountID      string    `json:"account_id"`
	Username       string    `json:"username"`
	FollowersCount int64     `json:"followers_count"`
	PostsCount     int64     `json:"posts_count"`
	EngagementRate float64   `json:"engagement_rate"`
	Verified       bool      `json:"verified"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// EngagementData holds raw engagement counters for one reporting period.
type EngagementData struct {
	AccountID string `json:"account_id"`
	Period    string `json:"period"` // "7d", "30d", "90d"
	Likes     int64  `json:"likes"`
	Retweets  int64  `json:"retweets"`
	Replies   int64  `json:"replies"`
	Mentions  int64  `json:"mentions"`
}

// MintState is the lifecycle state of a mint request.
type MintState string

const (
	MintStatePending              MintState = "pending"
	MintStateSubmitted            MintState = "submitted"
	MintStateConfirmed            MintState = "confirmed"
	MintStateFailed               MintState = "failed"
	MintStateFailedPermanent      MintState = "failed_permanent"
	MintStateSubmittedUnconfirmed MintState = "submitted_unconfirmed"
)

// MintRequest asks the orchestrator to mint tokens for an achieved milestone.
type MintRequest struct {
	RecipientAddress string `json:"recipient_address"`
	Amount           string `json:"amount"` // Human-readable decimal string
	MilestoneID      string `json:"milestone_id"`
	RequestID        string `json:"request_id"`
}

// MintRecord is the durable result of a mint request, keyed by idempotency key.
type MintRecord struct {
	Key         string    `json:"key"`
	Recipient   string    `json:"recipient"`
	MilestoneID string    `json:"milestone_id"`
	Amount      string    `json:"amount"`
	State       MintState `json:"state"`
	TxHash      string    `json:"tx_hash,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Terminal reports whether the record can never transition again.
func (r *MintRecord) Terminal() bool {
	return r.State == MintStateConfirmed || r.State == MintStateFailedPermanent
}

// Retryable reports whether a new request for the same key may re-enter
// submission. In-flight and terminal records are not retryable.
func (r *MintRecord) Retryable() bool {
	return r.State == MintStateFailed || r.State == MintStateSubmittedUnconfirmed
}

// NormalizeAddress lowercases an Ethereum address for use as an identity key.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
