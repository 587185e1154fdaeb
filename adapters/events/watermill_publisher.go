package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/adawatch/charon/ports"
)

// LoginEvent is published after a wallet successfully authenticates
type LoginEvent struct {
	Address      string    `json:"address"`
	StakeAddress string    `json:"stake_address,omitempty"`
	SessionID    string    `json:"session_id"`
	At           time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "charon.login",
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, stakeAddress, sessionID string) error {
	event := LoginEvent{
		Address:      address,
		StakeAddress: stakeAddress,
		SessionID:    sessionID,
		At:           time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(sessionID, payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
