package ports

import "github.com/layer-3/mintgate/core"

// Tokenizer converts between authenticated identities and session tokens.
type Tokenizer interface {
	// IdentityToToken mints a signed session token for a verified identity.
	IdentityToToken(identity *core.Identity) (string, error)

	// TokenToIdentity validates a session token and returns the identity it
	// carries. Expired or tampered tokens fail.
	TokenToIdentity(token string) (*core.Identity, error)
}
