package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/layer-3/mintgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenizer(t *testing.T) *JWTTokenizer {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewJWTTokenizer(key).(*JWTTokenizer)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tok := newTokenizer(t)

	now := time.Now().Truncate(time.Second)
	identity := &core.Identity{
		Address:       "0x8ba1f109551bd432803012645ac136ddd64dba72",
		VerifiedAt:    now,
		SessionExpiry: now.Add(7 * 24 * time.Hour),
	}

	token, err := tok.IdentityToToken(identity)
	require.NoError(t, err)

	parsed, err := tok.TokenToIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, identity.Address, parsed.Address)
	assert.True(t, identity.SessionExpiry.Equal(parsed.SessionExpiry))
	assert.Equal(t, token, parsed.SessionToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok := newTokenizer(t)

	identity := &core.Identity{
		Address:       "0x8ba1f109551bd432803012645ac136ddd64dba72",
		VerifiedAt:    time.Now().Add(-8 * 24 * time.Hour),
		SessionExpiry: time.Now().Add(-time.Hour),
	}

	token, err := tok.IdentityToToken(identity)
	require.NoError(t, err)

	_, err = tok.TokenToIdentity(token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestForeignKeyRejected(t *testing.T) {
	tok := newTokenizer(t)
	other := newTokenizer(t)

	identity := &core.Identity{
		Address:       "0x8ba1f109551bd432803012645ac136ddd64dba72",
		VerifiedAt:    time.Now(),
		SessionExpiry: time.Now().Add(time.Hour),
	}

	token, err := other.IdentityToToken(identity)
	require.NoError(t, err)

	_, err = tok.TokenToIdentity(token)
	assert.Error(t, err, "tokens signed by another key are invalid")
}

func TestGarbageTokenRejected(t *testing.T) {
	tok := newTokenizer(t)
	_, err := tok.TokenToIdentity("not.a.jwt")
	assert.Error(t, err)
}
