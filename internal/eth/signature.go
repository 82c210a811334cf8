// Package eth wraps the go-ethereum primitives used for personal-sign
// signature verification.
package eth

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverAddress recovers the address that produced an EIP-191 personal-sign
// signature over message. Accepts both 0/1 and 27/28 recovery ids.
func RecoverAddress(message, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature has %d bytes, want %d", len(signature), crypto.SignatureLength)
	}
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyPersonalSignature reports whether the hex-encoded signature was
// produced by the given address over the exact message bytes.
func VerifyPersonalSignature(message, signatureHex, address string) (bool, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	recovered, err := RecoverAddress([]byte(message), sig)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered.Hex(), address), nil
}

// ValidAddress reports whether s is a well-formed hex Ethereum address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// SignPersonal produces a personal-sign signature over message with the
// wallet-style 27/28 recovery id. Used by tests and local tooling.
func SignPersonal(message []byte, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
