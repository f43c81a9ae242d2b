package ports

import (
	"context"
	"time"
)

// OutboundEvent is one domain event handed to the external notification bus.
type OutboundEvent struct {
	Type          string         `json:"event_type"`
	TransactionID string         `json:"transaction_id"`
	Data          map[string]any `json:"data,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// EventPublisher fans domain events out to other bounded contexts. Publishing
// is best-effort: a failure after a committed state change is logged by the
// caller and never rolled back or surfaced as an operation failure.
type EventPublisher interface {
	Publish(ctx context.Context, event OutboundEvent) error
}
