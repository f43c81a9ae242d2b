package domain

import (
	"time"

	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
)

// Deposit records one buyer fund confirmation against an escrow transaction.
// Immutable once confirmed; a transaction may accumulate several rows across
// partial or retried fundings.
type Deposit struct {
	ID            uuid.UUID  `json:"id"`
	TransactionID string     `json:"transaction_id"`
	Amount        int64      `json:"amount"`
	Method        string     `json:"method"` // e.g. BANK_TRANSFER, CARD
	Reference     string     `json:"reference,omitempty"`
	DepositedAt   time.Time  `json:"deposited_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}

// NewDeposit records an unconfirmed deposit.
func NewDeposit(transactionID string, amount int64, method, reference string) *Deposit {
	return &Deposit{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Amount:        amount,
		Method:        method,
		Reference:     reference,
		DepositedAt:   time.Now().UTC(),
	}
}

// Confirm marks the deposit as confirmed. Confirming twice is an error.
func (d *Deposit) Confirm() error {
	if d.ConfirmedAt != nil {
		return apperror.Validation("deposit already confirmed")
	}
	now := time.Now().UTC()
	d.ConfirmedAt = &now
	return nil
}

// IsConfirmed reports whether the funds have been confirmed.
func (d *Deposit) IsConfirmed() bool {
	return d.ConfirmedAt != nil
}
