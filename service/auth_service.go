package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/internal/eth"
	"github.com/layer-3/mintgate/ports"
	"go.uber.org/zap"
)

// DefaultSessionTTL is the lifetime of an issued session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// AuthService runs the challenge-response handshake that proves control of a
// wallet address.
type AuthService struct {
	nonces     ports.NonceStore
	identities ports.IdentityStore
	tokenizer  ports.Tokenizer
	eventPub   ports.EventPublisher
	logger     *zap.Logger

	domain     string
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new authentication service. domain is the serving
// domain that signed messages must be addressed to.
func NewAuthService(
	nonces ports.NonceStore,
	identities ports.IdentityStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	domain string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		nonces:     nonces,
		identities: identities,
		tokenizer:  tokenizer,
		eventPub:   eventPub,
		logger:     logger,
		domain:     domain,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
}

// Challenge issues a fresh nonce for the session. A live challenge for the
// same session is replaced and its nonce becomes permanently invalid.
func (s *AuthService) Challenge(ctx context.Context, sessionID string) (core.Challenge, error) {
	challenge, err := s.nonces.Issue(ctx, sessionID)
	if err != nil {
		return core.Challenge{}, fmt.Errorf("issue challenge: %w", err)
	}
	return challenge, nil
}

// Verify validates a signed sign-in message and establishes a session.
//
// The nonce is consumed before the signature is checked: a failed signature
// never leaves a reusable nonce behind, which bounds the attacker's attempt
// window to one signature per challenge.
func (s *AuthService) Verify(ctx context.Context, rawMessage, signature, claimedAddress, sessionID string) (*core.Identity, error) {
	msg, err := core.ParseSignInMessage(rawMessage)
	if err != nil {
		return nil, err
	}

	consumed, err := s.nonces.Consume(ctx, sessionID, msg.Nonce)
	if err != nil {
		return nil, fmt.Errorf("consume nonce: %w", err)
	}
	if !consumed {
		return nil, core.ErrInvalidOrExpiredNonce
	}

	if !strings.EqualFold(msg.Address, claimedAddress) {
		return nil, core.ErrInvalidSignature
	}
	valid, err := eth.VerifyPersonalSignature(rawMessage, signature, claimedAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if !valid {
		return nil, core.ErrInvalidSignature
	}

	if msg.Domain != s.domain {
		return nil, core.ErrDomainMismatch
	}

	now := s.now()
	identity := &core.Identity{
		Address:       core.NormalizeAddress(claimedAddress),
		VerifiedAt:    now,
		SessionExpiry: now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.IdentityToToken(identity)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}
	identity.SessionToken = token

	binding := &core.SignatureBinding{
		Message:   rawMessage,
		Signature: signature,
		Nonce:     msg.Nonce,
	}
	if err := s.identities.Upsert(ctx, identity, binding); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}

	if err := s.eventPub.PublishLogin(ctx, identity.Address); err != nil {
		// The session is already established; losing the event is acceptable.
		s.logger.Warn("failed to publish login event", zap.Error(err))
	}

	s.logger.Info("wallet verified", zap.String("address", identity.Address))
	return identity, nil
}

// ValidateSession parses a session token and returns the identity it carries.
// Expiry is absolute wall-clock time, not sliding.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*core.Identity, error) {
	identity, err := s.tokenizer.TokenToIdentity(token)
	if err != nil {
		return nil, err
	}
	if s.now().After(identity.SessionExpiry) {
		return nil, core.ErrTokenExpired
	}

	// Refresh the stored view when present; the token alone carries trust.
	if stored, err := s.identities.Get(ctx, identity.Address); err == nil && stored != nil {
		identity.VerifiedAt = stored.VerifiedAt
	}
	return identity, nil
}
