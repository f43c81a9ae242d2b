package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType tags one state-affecting action in the escrow lifecycle.
type EventType string

const (
	EventEscrowCreated        EventType = "EscrowCreated"
	EventDepositConfirmed     EventType = "DepositConfirmed"
	EventVehicleDelivered     EventType = "VehicleDelivered"
	EventVehicleVerified      EventType = "VehicleVerified"
	EventVerificationFailed   EventType = "VerificationFailed"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
	EventSettlementStarted    EventType = "SettlementStarted"
	EventEscrowCompleted      EventType = "EscrowCompleted"
	EventSettlementFailed     EventType = "SettlementFailed"
	EventDisputeRaised        EventType = "DisputeRaised"
	EventDisputeResolved      EventType = "DisputeResolved"
	EventEscrowCancelled      EventType = "EscrowCancelled"
)

// Event is one immutable, per-transaction sequenced row in the event store.
// Sequence starts at 1 and is gap-free; assignment happens under the same
// serialization boundary as the aggregate mutation it records.
type Event struct {
	ID             uuid.UUID       `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	Sequence       int64           `json:"sequence"`
	Type           EventType       `json:"event_type"`
	PreviousStatus Status          `json:"previous_status,omitempty"` // empty on creation
	NewStatus      Status          `json:"new_status"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	TriggeredBy    string          `json:"triggered_by"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewEvent builds an unsequenced event; the store assigns Sequence on append.
func NewEvent(transactionID string, t EventType, previous, next Status, payload any, triggeredBy string) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		raw = b
	}
	return &Event{
		ID:             uuid.New(),
		TransactionID:  transactionID,
		Type:           t,
		PreviousStatus: previous,
		NewStatus:      next,
		Payload:        raw,
		TriggeredBy:    triggeredBy,
		OccurredAt:     time.Now().UTC(),
	}, nil
}

// --- Typed event payloads ---

// EscrowCreatedPayload carries the full aggregate snapshot so replay can
// rebuild the transaction from sequence 1 without consulting the aggregate
// table.
type EscrowCreatedPayload struct {
	Buyer   Participant `json:"buyer"`
	Seller  Participant `json:"seller"`
	Vehicle Vehicle     `json:"vehicle"`
	Amount  int64       `json:"amount"`
	FeeRate float64     `json:"fee_rate"`
}

type DepositConfirmedPayload struct {
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	DepositID uuid.UUID `json:"deposit_id"`
}

type VehicleDeliveredPayload struct {
	VIN         string `json:"vin"`
	ConfirmedBy string `json:"confirmed_by"`
}

type VehicleVerifiedPayload struct {
	VIN            string    `json:"vin"`
	VerifiedBy     string    `json:"verified_by"`
	VerificationID uuid.UUID `json:"verification_id"`
}

type VerificationFailedPayload struct {
	VerifiedBy     string    `json:"verified_by"`
	Reason         string    `json:"reason,omitempty"`
	VerificationID uuid.UUID `json:"verification_id"`
}

type OwnershipTransferredPayload struct {
	VIN            string    `json:"vin"`
	NewOwnerID     string    `json:"new_owner_id"`
	VerificationID uuid.UUID `json:"verification_id"`
}

type SettlementStartedPayload struct {
	TotalAmount  int64     `json:"total_amount"`
	FeeAmount    int64     `json:"fee_amount"`
	SellerAmount int64     `json:"seller_amount"`
	SettlementID uuid.UUID `json:"settlement_id"`
}

type EscrowCompletedPayload struct {
	SellerID      string `json:"seller_id"`
	SellerAmount  int64  `json:"seller_amount"`
	FeeAmount     int64  `json:"fee_amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_reference"`
}

type SettlementFailedPayload struct {
	Reason string `json:"reason"`
}

type DisputeRaisedPayload struct {
	RaisedBy       string    `json:"raised_by"`
	Reason         string    `json:"reason"`
	DisputeID      uuid.UUID `json:"dispute_id"`
	PreviousStatus Status    `json:"previous_status"`
}

type DisputeResolvedPayload struct {
	ResolvedBy string    `json:"resolved_by"`
	Resolution string    `json:"resolution"`
	DisputeID  uuid.UUID `json:"dispute_id"`
}

type EscrowCancelledPayload struct {
	Reason       string `json:"reason"`
	RefundAmount int64  `json:"refund_amount"`
	RefundTo     string `json:"refund_to,omitempty"`
}
