package domain

import (
	"time"

	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
)

// SettlementStatus tracks the fee/payout execution outcome.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementFailed    SettlementStatus = "FAILED"
)

// Settlement is the one-per-transaction fee/payout breakdown. It is created
// when settlement starts and never recreated; starting settlement on a
// transaction that already has one is a precondition violation caught by the
// settlement service.
type Settlement struct {
	ID               uuid.UUID        `json:"id"`
	TransactionID    string           `json:"transaction_id"`
	TotalAmount      int64            `json:"total_amount"`
	FeeAmount        int64            `json:"fee_amount"`
	SellerAmount     int64            `json:"seller_amount"`
	SellerID         string           `json:"seller_id"`
	Status           SettlementStatus `json:"status"`
	PaymentMethod    *string          `json:"payment_method,omitempty"`
	PaymentReference *string          `json:"payment_reference,omitempty"`
	FailureReason    *string          `json:"failure_reason,omitempty"`
	InitiatedAt      time.Time        `json:"initiated_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
}

// NewSettlement starts a pending settlement with the computed breakdown.
func NewSettlement(transactionID string, totalAmount, feeAmount, sellerAmount int64, sellerID string) *Settlement {
	return &Settlement{
		ID:            uuid.New(),
		TransactionID: transactionID,
		TotalAmount:   totalAmount,
		FeeAmount:     feeAmount,
		SellerAmount:  sellerAmount,
		SellerID:      sellerID,
		Status:        SettlementPending,
		InitiatedAt:   time.Now().UTC(),
	}
}

// Complete records the payout confirmation from the payment gateway.
func (s *Settlement) Complete(method, reference string) error {
	if s.Status != SettlementPending {
		return apperror.ErrSettlementExists(s.TransactionID)
	}
	now := time.Now().UTC()
	s.Status = SettlementCompleted
	s.PaymentMethod = &method
	s.PaymentReference = &reference
	s.CompletedAt = &now
	return nil
}

// MarkFailed records a payout failure. A completed settlement cannot fail.
func (s *Settlement) MarkFailed(reason string) error {
	if s.Status == SettlementCompleted {
		return apperror.ErrSettlementExists(s.TransactionID)
	}
	s.Status = SettlementFailed
	s.FailureReason = &reason
	return nil
}
