package postgres

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const depositColumns = `id, transaction_id, amount, method, reference, deposited_at, confirmed_at`

// DepositRepo implements ports.DepositRepository.
type DepositRepo struct {
	pool Pool
}

// NewDepositRepo creates a new DepositRepo.
func NewDepositRepo(pool Pool) *DepositRepo {
	return &DepositRepo{pool: pool}
}

// Create inserts a deposit row within a database transaction.
func (r *DepositRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error {
	query := `INSERT INTO escrow_deposits (id, transaction_id, amount, method, reference, deposited_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		d.ID, d.TransactionID, d.Amount, d.Method, d.Reference, d.DepositedAt, d.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// ListByTransaction fetches all deposits for a transaction.
func (r *DepositRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Deposit, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_deposits WHERE transaction_id = $1 ORDER BY deposited_at ASC`, depositColumns)
	return r.list(ctx, query, transactionID)
}

// ListConfirmedByTransaction fetches only confirmed deposits.
func (r *DepositRepo) ListConfirmedByTransaction(ctx context.Context, transactionID string) ([]domain.Deposit, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_deposits WHERE transaction_id = $1 AND confirmed_at IS NOT NULL ORDER BY deposited_at ASC`, depositColumns)
	return r.list(ctx, query, transactionID)
}

func (r *DepositRepo) list(ctx context.Context, query, transactionID string) ([]domain.Deposit, error) {
	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		d := domain.Deposit{}
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.Amount, &d.Method, &d.Reference, &d.DepositedAt, &d.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("scan deposit row: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deposit rows: %w", err)
	}
	return deposits, nil
}
