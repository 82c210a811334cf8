package ports

import "context"

// EventPublisher publishes notable pipeline events to other services.
type EventPublisher interface {
	// PublishLogin announces a successful wallet verification.
	PublishLogin(ctx context.Context, address string) error

	// PublishMintConfirmed announces a confirmed mint for a milestone.
	PublishMintConfirmed(ctx context.Context, recipient, milestoneID, txHash string) error
}
