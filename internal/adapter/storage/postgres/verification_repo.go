package postgres

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const verificationColumns = `id, transaction_id, type, result, verified_by, notes, document_id, verified_at`

// VerificationRepo implements ports.VerificationRepository.
type VerificationRepo struct {
	pool Pool
}

// NewVerificationRepo creates a new VerificationRepo.
func NewVerificationRepo(pool Pool) *VerificationRepo {
	return &VerificationRepo{pool: pool}
}

// Create inserts a verification record within a database transaction.
func (r *VerificationRepo) Create(ctx context.Context, tx pgx.Tx, v *domain.Verification) error {
	query := `INSERT INTO escrow_verifications (id, transaction_id, type, result, verified_by, notes, document_id, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		v.ID, v.TransactionID, v.Type, v.Result, v.VerifiedBy, v.Notes, v.DocumentID, v.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

// ListByTransaction fetches all verification records for a transaction.
func (r *VerificationRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Verification, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_verifications WHERE transaction_id = $1 ORDER BY verified_at ASC`, verificationColumns)

	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var records []domain.Verification
	for rows.Next() {
		v := domain.Verification{}
		if err := rows.Scan(&v.ID, &v.TransactionID, &v.Type, &v.Result, &v.VerifiedBy, &v.Notes, &v.DocumentID, &v.VerifiedAt); err != nil {
			return nil, fmt.Errorf("scan verification row: %w", err)
		}
		records = append(records, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification rows: %w", err)
	}
	return records, nil
}
