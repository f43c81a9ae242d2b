package postgres

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const disputeColumns = `id, transaction_id, reason, raised_by, status, previous_status,
	resolution, resolved_by, raised_at, resolved_at`

// DisputeRepo implements ports.DisputeRepository.
type DisputeRepo struct {
	pool Pool
}

// NewDisputeRepo creates a new DisputeRepo.
func NewDisputeRepo(pool Pool) *DisputeRepo {
	return &DisputeRepo{pool: pool}
}

// Create inserts a dispute row within a database transaction.
func (r *DisputeRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error {
	query := `INSERT INTO escrow_disputes (id, transaction_id, reason, raised_by, status, previous_status,
		resolution, resolved_by, raised_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		d.ID, d.TransactionID, d.Reason, d.RaisedBy, d.Status, d.PreviousStatus,
		d.Resolution, d.ResolvedBy, d.RaisedAt, d.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispute: %w", err)
	}
	return nil
}

// GetByID fetches a dispute by its id. Returns nil if not found.
func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_disputes WHERE id = $1`, disputeColumns)

	d := &domain.Dispute{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.TransactionID, &d.Reason, &d.RaisedBy, &d.Status, &d.PreviousStatus,
		&d.Resolution, &d.ResolvedBy, &d.RaisedAt, &d.ResolvedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispute: %w", err)
	}
	return d, nil
}

// ListByTransaction fetches all disputes raised against a transaction.
func (r *DisputeRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Dispute, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_disputes WHERE transaction_id = $1 ORDER BY raised_at ASC`, disputeColumns)
	return r.list(ctx, query, transactionID)
}

// ListByStatus fetches disputes in a given status, oldest first, for the
// admin review queue.
func (r *DisputeRepo) ListByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_disputes WHERE status = $1 ORDER BY raised_at ASC`, disputeColumns)
	return r.list(ctx, query, status)
}

// Update persists a dispute's review/resolution fields within a database
// transaction.
func (r *DisputeRepo) Update(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error {
	query := `UPDATE escrow_disputes
		SET status = $2, resolution = $3, resolved_by = $4, resolved_at = $5
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, d.ID, d.Status, d.Resolution, d.ResolvedBy, d.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update dispute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update dispute: no row for id %s", d.ID)
	}
	return nil
}

func (r *DisputeRepo) list(ctx context.Context, query string, arg any) ([]domain.Dispute, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	defer rows.Close()

	var disputes []domain.Dispute
	for rows.Next() {
		d := domain.Dispute{}
		if err := rows.Scan(
			&d.ID, &d.TransactionID, &d.Reason, &d.RaisedBy, &d.Status, &d.PreviousStatus,
			&d.Resolution, &d.ResolvedBy, &d.RaisedAt, &d.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan dispute row: %w", err)
		}
		disputes = append(disputes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispute rows: %w", err)
	}
	return disputes, nil
}
