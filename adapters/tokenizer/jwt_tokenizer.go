package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/ports"
)

const AudienceSession = "mintgate:session"

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs.
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// IdentityToToken converts a verified identity to a signed session JWT.
func (j *JWTTokenizer) IdentityToToken(identity *core.Identity) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Address,
			ExpiresAt: jwt.NewNumericDate(identity.SessionExpiry),
			IssuedAt:  jwt.NewNumericDate(identity.VerifiedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Verified: true,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// TokenToIdentity parses and validates a session JWT and returns the identity
// it carries.
func (j *JWTTokenizer) TokenToIdentity(tokenStr string) (*core.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !claims.Verified {
		return nil, core.ErrInvalidToken
	}

	identity := &core.Identity{
		Address:       claims.Subject,
		VerifiedAt:    claims.IssuedAt.Time,
		SessionToken:  tokenStr,
		SessionExpiry: claims.ExpiresAt.Time,
	}

	return identity, nil
}
