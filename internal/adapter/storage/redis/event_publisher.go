package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"vehicle-escrow-service/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// EventPublisher implements ports.EventPublisher over Redis pub/sub. Each
// outbound event is published as a JSON message on a single channel;
// downstream consumers (notifications, search indexers) subscribe and filter
// by event_type.
type EventPublisher struct {
	client  *goredis.Client
	channel string
}

// NewEventPublisher creates a Redis-backed event publisher.
func NewEventPublisher(client *goredis.Client, channel string) *EventPublisher {
	if channel == "" {
		channel = "escrow.events"
	}
	return &EventPublisher{client: client, channel: channel}
}

// Publish sends one event to the channel. Delivery is fire-and-forget at the
// bus level; the caller decides whether a failure is fatal.
func (p *EventPublisher) Publish(ctx context.Context, event ports.OutboundEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal outbound event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", event.Type, err)
	}
	return nil
}
