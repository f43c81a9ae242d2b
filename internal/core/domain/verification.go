package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationType distinguishes the two recorded checks.
type VerificationType string

const (
	VerificationVehicleCondition  VerificationType = "VEHICLE_CONDITION"
	VerificationOwnershipTransfer VerificationType = "OWNERSHIP_TRANSFER"
)

// VerificationResult is the outcome supplied by the external verifier.
type VerificationResult string

const (
	VerificationPassed VerificationResult = "PASSED"
	VerificationFailed VerificationResult = "FAILED"
)

// Verification is an append-only record of one check outcome. Only a
// VEHICLE_CONDITION verification feeds the transaction's own state machine;
// an OWNERSHIP_TRANSFER row is always recorded as PASSED since it is a
// confirmation action, not a pass/fail check.
type Verification struct {
	ID            uuid.UUID          `json:"id"`
	TransactionID string             `json:"transaction_id"`
	Type          VerificationType   `json:"type"`
	Result        VerificationResult `json:"result"`
	VerifiedBy    string             `json:"verified_by"`
	Notes         string             `json:"notes,omitempty"`
	DocumentID    *string            `json:"document_id,omitempty"`
	VerifiedAt    time.Time          `json:"verified_at"`
}

// NewVerification records one check outcome.
func NewVerification(transactionID string, t VerificationType, result VerificationResult, verifiedBy, notes string, documentID *string) *Verification {
	return &Verification{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Type:          t,
		Result:        result,
		VerifiedBy:    verifiedBy,
		Notes:         notes,
		DocumentID:    documentID,
		VerifiedAt:    time.Now().UTC(),
	}
}

// IsPassed reports a passing outcome.
func (v *Verification) IsPassed() bool {
	return v.Result == VerificationPassed
}
