package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/galenus-health/galenus-go/core"
	"github.com/galenus-health/galenus-go/ports"
)

// SessionTopic is the topic session state transitions are published to.
const SessionTopic = "galenus.session"

// WatermillPublisher implements the EventPublisher interface over any
// Watermill publisher: a gochannel Pub/Sub for in-process subscribers,
// or a Redis stream when several terminals share a counter session.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a publisher emitting on SessionTopic.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     SessionTopic,
	}
}

// PublishStateChange publishes a session state transition event.
func (p *WatermillPublisher) PublishStateChange(ctx context.Context, event core.SessionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
