package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Projection is the read-side state rebuilt by replaying an escrow's event
// stream. It rebuilds the complete aggregate from event payloads, not just a
// status summary; for a committed transaction it must agree with the
// aggregate row, which stays authoritative.
type Projection struct {
	TransactionID string `json:"transaction_id"`
	EventCount    int    `json:"event_count"`

	// Aggregate state rebuilt from payloads.
	Buyer   Participant `json:"buyer"`
	Seller  Participant `json:"seller"`
	Vehicle Vehicle     `json:"vehicle"`
	Amount  int64       `json:"amount"`
	FeeRate float64     `json:"fee_rate"`
	Status  Status      `json:"current_status"`

	// Outcome facts accumulated along the way.
	FeeAmount    int64 `json:"fee_amount,omitempty"`
	SellerAmount int64 `json:"seller_amount,omitempty"`
	RefundAmount int64 `json:"refund_amount,omitempty"`

	LastEventType     EventType `json:"last_event_type"`
	LastEventSequence int64     `json:"last_event_sequence"`
	LastEventTime     time.Time `json:"last_event_time"`

	Events []Event `json:"events"`
}

// Replay folds an ordered event stream into a Projection. The stream must be
// ordered by sequence ascending and gap-free from 1; anything else means the
// store's append invariant was broken and replay refuses to guess.
func Replay(transactionID string, events []Event) (*Projection, error) {
	p := &Projection{
		TransactionID: transactionID,
		EventCount:    len(events),
		Events:        events,
	}

	for i, ev := range events {
		if ev.Sequence != int64(i+1) {
			return nil, fmt.Errorf("event stream for %s has sequence %d at position %d, want %d",
				transactionID, ev.Sequence, i, i+1)
		}
		if ev.TransactionID != transactionID {
			return nil, fmt.Errorf("event %s belongs to %s, not %s", ev.ID, ev.TransactionID, transactionID)
		}
		if err := p.apply(ev); err != nil {
			return nil, err
		}
	}

	if len(events) > 0 {
		last := events[len(events)-1]
		p.Status = last.NewStatus
		p.LastEventType = last.Type
		p.LastEventSequence = last.Sequence
		p.LastEventTime = last.OccurredAt
	}

	return p, nil
}

func (p *Projection) apply(ev Event) error {
	switch ev.Type {
	case EventEscrowCreated:
		var payload EscrowCreatedPayload
		if err := unmarshalPayload(ev, &payload); err != nil {
			return err
		}
		p.Buyer = payload.Buyer
		p.Seller = payload.Seller
		p.Vehicle = payload.Vehicle
		p.Amount = payload.Amount
		p.FeeRate = payload.FeeRate

	case EventSettlementStarted:
		var payload SettlementStartedPayload
		if err := unmarshalPayload(ev, &payload); err != nil {
			return err
		}
		p.FeeAmount = payload.FeeAmount
		p.SellerAmount = payload.SellerAmount

	case EventEscrowCompleted:
		var payload EscrowCompletedPayload
		if err := unmarshalPayload(ev, &payload); err != nil {
			return err
		}
		p.FeeAmount = payload.FeeAmount
		p.SellerAmount = payload.SellerAmount

	case EventEscrowCancelled:
		var payload EscrowCancelledPayload
		if err := unmarshalPayload(ev, &payload); err != nil {
			return err
		}
		p.RefundAmount = payload.RefundAmount
	}
	// Remaining event types carry no aggregate fields beyond the status
	// transition captured in NewStatus.
	return nil
}

func unmarshalPayload(ev Event, dst any) error {
	if len(ev.Payload) == 0 {
		return fmt.Errorf("event %d (%s) for %s has no payload", ev.Sequence, ev.Type, ev.TransactionID)
	}
	if err := json.Unmarshal(ev.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload at sequence %d: %w", ev.Type, ev.Sequence, err)
	}
	return nil
}
