package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/mintgate/ports"
)

const (
	// LoginTopic carries successful wallet verification events
	LoginTopic = "mintgate.login"

	// MintConfirmedTopic carries confirmed milestone mint events
	MintConfirmedTopic = "mintgate.mint_confirmed"
)

// LoginEvent represents a successful wallet verification
type LoginEvent struct {
	Address string `json:"address"`
}

// MintConfirmedEvent represents a confirmed milestone mint
type MintConfirmedEvent struct {
	Recipient   string `json:"recipient"`
	MilestoneID string `json:"milestone_id"`
	TxHash      string `json:"tx_hash"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(_ context.Context, address string) error {
	return p.publish(LoginTopic, LoginEvent{Address: address})
}

// PublishMintConfirmed publishes a mint confirmation event
func (p *WatermillPublisher) PublishMintConfirmed(_ context.Context, recipient, milestoneID, txHash string) error {
	return p.publish(MintConfirmedTopic, MintConfirmedEvent{
		Recipient:   recipient,
		MilestoneID: milestoneID,
		TxHash:      txHash,
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
