package domain

import (
	"math"
	"time"

	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
)

// DefaultFeeRate is applied when an escrow is created without an explicit rate.
const DefaultFeeRate = 0.03

// Status represents the lifecycle state of an escrow transaction.
type Status string

const (
	StatusInitiated            Status = "INITIATED"
	StatusDeposited            Status = "DEPOSITED"
	StatusDelivered            Status = "DELIVERED"
	StatusVerified             Status = "VERIFIED"
	StatusVerificationFailed   Status = "VERIFICATION_FAILED"
	StatusOwnershipTransferred Status = "OWNERSHIP_TRANSFERRED"
	StatusSettling             Status = "SETTLING"
	StatusCompleted            Status = "COMPLETED"
	StatusSettlementFailed     Status = "SETTLEMENT_FAILED"
	StatusDisputed             Status = "DISPUTED"
	StatusCancelled            Status = "CANCELLED"
)

// transitions is the full legal transition graph. Every mutation checks this
// table before touching state; a source status missing a target means the
// transition is illegal, full stop.
//
// VERIFICATION_FAILED and SETTLEMENT_FAILED only lead to DISPUTED: a failed
// check is remediated through dispute resolution, which then routes the
// transaction onward from DISPUTED with an explicit follow-up operation.
var transitions = map[Status][]Status{
	StatusInitiated:            {StatusDeposited, StatusDisputed, StatusCancelled},
	StatusDeposited:            {StatusDelivered, StatusDisputed, StatusCancelled},
	StatusDelivered:            {StatusVerified, StatusVerificationFailed, StatusDisputed, StatusCancelled},
	StatusVerified:             {StatusOwnershipTransferred, StatusDisputed, StatusCancelled},
	StatusVerificationFailed:   {StatusDisputed},
	StatusOwnershipTransferred: {StatusSettling, StatusDisputed, StatusCancelled},
	StatusSettling:             {StatusCompleted, StatusSettlementFailed, StatusDisputed},
	StatusSettlementFailed:     {StatusDisputed},
	StatusDisputed:             {StatusDeposited, StatusDelivered, StatusVerified, StatusOwnershipTransferred, StatusCancelled},
	StatusCompleted:            {},
	StatusCancelled:            {},
}

// CanTransitionTo reports whether the target status is reachable from s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses retained purely for audit.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// Participant identifies one side of the sale.
type Participant struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Vehicle describes the vehicle held in escrow.
type Vehicle struct {
	VIN          string `json:"vin"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

// EscrowTransaction is the aggregate for one buyer-seller vehicle sale.
// Amount and FeeRate are fixed at creation; Status only moves through the
// transition table above. The current Status is a projection of the latest
// event in the event store and the two must never disagree once committed.
type EscrowTransaction struct {
	ID            uuid.UUID   `json:"id"`
	TransactionID string      `json:"transaction_id"` // business key, immutable
	Buyer         Participant `json:"buyer"`
	Seller        Participant `json:"seller"`
	Vehicle       Vehicle     `json:"vehicle"`
	Amount        int64       `json:"amount"` // smallest currency unit
	FeeRate       float64     `json:"fee_rate"`
	Status        Status      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// NewEscrowTransaction creates an INITIATED escrow. A non-positive feeRate
// falls back to DefaultFeeRate.
func NewEscrowTransaction(buyer, seller Participant, vehicle Vehicle, amount int64, feeRate float64) *EscrowTransaction {
	if feeRate <= 0 {
		feeRate = DefaultFeeRate
	}
	now := time.Now().UTC()
	return &EscrowTransaction{
		ID:            uuid.New(),
		TransactionID: "ESC-" + uuid.New().String(),
		Buyer:         buyer,
		Seller:        seller,
		Vehicle:       vehicle,
		Amount:        amount,
		FeeRate:       feeRate,
		Status:        StatusInitiated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Fee computes the platform fee. Recomputed on demand, never stored ahead of
// settlement.
func (e *EscrowTransaction) Fee() int64 {
	return int64(math.Round(float64(e.Amount) * e.FeeRate))
}

// SellerAmount computes the payout due to the seller after fees.
func (e *EscrowTransaction) SellerAmount() int64 {
	return e.Amount - e.Fee()
}

// transition moves the aggregate to target if the transition table allows it.
func (e *EscrowTransaction) transition(target Status) error {
	if !e.Status.CanTransitionTo(target) {
		return apperror.ErrInvalidTransition(string(e.Status), string(target))
	}
	e.Status = target
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// ConfirmDeposit moves INITIATED -> DEPOSITED. The deposited amount must
// match the escrow amount exactly.
func (e *EscrowTransaction) ConfirmDeposit(depositAmount int64) error {
	if !e.Status.CanTransitionTo(StatusDeposited) {
		return apperror.ErrInvalidTransition(string(e.Status), string(StatusDeposited))
	}
	if depositAmount != e.Amount {
		return apperror.ErrDepositAmountMismatch(e.Amount, depositAmount)
	}
	return e.transition(StatusDeposited)
}

// ConfirmDelivery moves DEPOSITED -> DELIVERED.
func (e *EscrowTransaction) ConfirmDelivery() error {
	return e.transition(StatusDelivered)
}

// VerifyVehicle moves DELIVERED -> VERIFIED or VERIFICATION_FAILED depending
// on the recorded check outcome.
func (e *EscrowTransaction) VerifyVehicle(result VerificationResult) error {
	if result == VerificationPassed {
		return e.transition(StatusVerified)
	}
	return e.transition(StatusVerificationFailed)
}

// ConfirmOwnershipTransfer moves VERIFIED -> OWNERSHIP_TRANSFERRED.
func (e *EscrowTransaction) ConfirmOwnershipTransfer() error {
	return e.transition(StatusOwnershipTransferred)
}

// StartSettlement moves OWNERSHIP_TRANSFERRED -> SETTLING. The one-settlement
// idempotency guard lives in the settlement service, next to its ledger.
func (e *EscrowTransaction) StartSettlement() error {
	return e.transition(StatusSettling)
}

// CompleteSettlement moves SETTLING -> COMPLETED.
func (e *EscrowTransaction) CompleteSettlement() error {
	if err := e.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now().UTC()
	e.CompletedAt = &now
	return nil
}

// MarkSettlementFailed moves SETTLING -> SETTLEMENT_FAILED.
func (e *EscrowTransaction) MarkSettlementFailed() error {
	return e.transition(StatusSettlementFailed)
}

// RaiseDispute moves any non-terminal status -> DISPUTED and returns the
// pre-dispute status so the dispute ledger can record where to route back.
func (e *EscrowTransaction) RaiseDispute() (Status, error) {
	previous := e.Status
	if err := e.transition(StatusDisputed); err != nil {
		return previous, err
	}
	return previous, nil
}

// Cancel moves the escrow to CANCELLED if the current status allows it.
func (e *EscrowTransaction) Cancel() error {
	return e.transition(StatusCancelled)
}

// RefundAmount computes the refund owed to the buyer when cancelling out of
// the given pre-cancellation status: the full escrow amount once funds are
// held, zero before the deposit landed.
func RefundAmount(previous Status, amount int64) int64 {
	switch previous {
	case StatusDeposited, StatusDelivered, StatusVerified, StatusOwnershipTransferred:
		return amount
	default:
		return 0
	}
}
