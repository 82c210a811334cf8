package core

import (
	"errors"
)

var (
	// ErrMalformedMessage is returned when a sign-in message is missing required fields
	ErrMalformedMessage = errors.New("malformed sign-in message")

	// ErrInvalidOrExpiredNonce is returned when a nonce is unknown, already used or expired
	ErrInvalidOrExpiredNonce = errors.New("invalid or expired nonce")

	// ErrInvalidSignature is returned when a signature does not match the claimed address
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrDomainMismatch is returned when a sign-in message was issued for another domain
	ErrDomainMismatch = errors.New("sign-in domain mismatch")

	// ErrTokenExpired is returned when a session token has expired
	ErrTokenExpired = errors.New("session token has expired")

	// ErrInvalidToken is returned when a session token is invalid
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSnapshotUnavailable is returned when social metrics cannot be fetched
	ErrSnapshotUnavailable = errors.New("social metrics snapshot unavailable")

	// ErrUnauthorized is returned when a mint is requested without a valid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMilestoneNotMet is returned when a mint is requested for an unmet milestone
	ErrMilestoneNotMet = errors.New("milestone conditions not met")

	// ErrInvalidAmount is returned when a token amount cannot be represented exactly
	ErrInvalidAmount = errors.New("invalid token amount")

	// ErrMintInFlight is returned when a mint for the same key is already submitted
	ErrMintInFlight = errors.New("mint already in flight for this milestone")

	// ErrSubmissionFailed is returned when the ledger rejects a transaction submission
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrReverted is returned when a submitted transaction was reverted on chain
	ErrReverted = errors.New("transaction reverted")

	// ErrConfirmationTimeout is returned when a submitted transaction was not
	// confirmed within the confirmation window; it may still confirm later
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

	// ErrStoreOperationFailed is returned when a store operation fails
	ErrStoreOperationFailed = errors.New("store operation failed")
)
