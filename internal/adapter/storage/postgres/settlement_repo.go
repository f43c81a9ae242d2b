package postgres

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

const settlementColumns = `id, transaction_id, total_amount, fee_amount, seller_amount, seller_id,
	status, payment_method, payment_reference, failure_reason, initiated_at, completed_at`

// SettlementRepo implements ports.SettlementRepository. The table carries a
// unique index on transaction_id so at most one settlement ever exists per
// transaction.
type SettlementRepo struct {
	pool Pool
}

// NewSettlementRepo creates a new SettlementRepo.
func NewSettlementRepo(pool Pool) *SettlementRepo {
	return &SettlementRepo{pool: pool}
}

// Create inserts the settlement row within a database transaction.
func (r *SettlementRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error {
	query := `INSERT INTO escrow_settlements (id, transaction_id, total_amount, fee_amount, seller_amount, seller_id,
		status, payment_method, payment_reference, failure_reason, initiated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		s.ID, s.TransactionID, s.TotalAmount, s.FeeAmount, s.SellerAmount, s.SellerID,
		s.Status, s.PaymentMethod, s.PaymentReference, s.FailureReason, s.InitiatedAt, s.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrSettlementExists(s.TransactionID)
		}
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// GetByTransactionID fetches the settlement for a transaction.
// Returns nil if none exists.
func (r *SettlementRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Settlement, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_settlements WHERE transaction_id = $1`, settlementColumns)

	s := &domain.Settlement{}
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&s.ID, &s.TransactionID, &s.TotalAmount, &s.FeeAmount, &s.SellerAmount, &s.SellerID,
		&s.Status, &s.PaymentMethod, &s.PaymentReference, &s.FailureReason, &s.InitiatedAt, &s.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return s, nil
}

// ExistsByTransactionID reports whether a settlement row already exists,
// checked inside the caller's transaction so the answer holds under the
// escrow row lock.
func (r *SettlementRepo) ExistsByTransactionID(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM escrow_settlements WHERE transaction_id = $1)`,
		transactionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check settlement exists: %w", err)
	}
	return exists, nil
}

// Update persists a settlement's outcome fields within a database transaction.
func (r *SettlementRepo) Update(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error {
	query := `UPDATE escrow_settlements
		SET status = $2, payment_method = $3, payment_reference = $4, failure_reason = $5, completed_at = $6
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		s.ID, s.Status, s.PaymentMethod, s.PaymentReference, s.FailureReason, s.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update settlement: no row for id %s", s.ID)
	}
	return nil
}
