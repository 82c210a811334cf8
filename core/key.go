package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// MintKey derives the idempotency key for a (recipient, milestone) pair.
// The recipient is lowercased first so checksum casing cannot split one
// logical intent across two keys.
func MintKey(recipient, milestoneID string) string {
	sum := sha256.Sum256([]byte(NormalizeAddress(recipient) + ":" + milestoneID))
	return hex.EncodeToString(sum[:])
}
