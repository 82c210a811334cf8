package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// nonceBytes is the entropy of a generated nonce.
const nonceBytes = 16

func generateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func orNewSessionID(sessionID string) string {
	if sessionID == "" {
		return uuid.New().String()
	}
	return sessionID
}
