package domain

import (
	"time"

	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
)

// DisputeStatus tracks a dispute's own small lifecycle.
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "OPEN"
	DisputeUnderReview DisputeStatus = "UNDER_REVIEW"
	DisputeResolved    DisputeStatus = "RESOLVED"
)

// Dispute records an out-of-band challenge to the transaction's progress.
// PreviousStatus captures the transaction status at the moment the dispute
// was raised, so resolution can route the transaction back explicitly.
// Resolving a dispute never changes the transaction status by itself.
type Dispute struct {
	ID             uuid.UUID     `json:"id"`
	TransactionID  string        `json:"transaction_id"`
	Reason         string        `json:"reason"`
	RaisedBy       string        `json:"raised_by"`
	Status         DisputeStatus `json:"status"`
	PreviousStatus Status        `json:"previous_status"`
	Resolution     *string       `json:"resolution,omitempty"`
	ResolvedBy     *string       `json:"resolved_by,omitempty"`
	RaisedAt       time.Time     `json:"raised_at"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
}

// NewDispute opens a dispute against a transaction.
func NewDispute(transactionID, reason, raisedBy string, previousStatus Status) *Dispute {
	return &Dispute{
		ID:             uuid.New(),
		TransactionID:  transactionID,
		Reason:         reason,
		RaisedBy:       raisedBy,
		Status:         DisputeOpen,
		PreviousStatus: previousStatus,
		RaisedAt:       time.Now().UTC(),
	}
}

// StartReview moves an OPEN dispute to UNDER_REVIEW.
func (d *Dispute) StartReview() error {
	if d.Status != DisputeOpen {
		return apperror.ErrDisputeAlreadyResolved(d.ID.String())
	}
	d.Status = DisputeUnderReview
	return nil
}

// Resolve closes the dispute with a resolution text and resolving actor.
// The transaction's next status is a separate, explicit follow-up decision.
func (d *Dispute) Resolve(resolution, resolvedBy string) error {
	if d.Status == DisputeResolved {
		return apperror.ErrDisputeAlreadyResolved(d.ID.String())
	}
	now := time.Now().UTC()
	d.Status = DisputeResolved
	d.Resolution = &resolution
	d.ResolvedBy = &resolvedBy
	d.ResolvedAt = &now
	return nil
}

// IsResolved reports whether the dispute has been closed.
func (d *Dispute) IsResolved() bool {
	return d.Status == DisputeResolved
}
