package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the verified-wallet marker.
type SessionClaims struct {
	jwt.RegisteredClaims
	Verified bool `json:"verified"`
}
