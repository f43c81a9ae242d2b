package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const escrowColumns = `id, transaction_id,
	buyer_user_id, buyer_name, buyer_email,
	seller_user_id, seller_name, seller_email,
	vin, manufacturer, model,
	amount, fee_rate, status, created_at, updated_at, completed_at`

// EscrowRepo implements ports.EscrowRepository.
type EscrowRepo struct {
	pool Pool
}

// NewEscrowRepo creates a new EscrowRepo.
func NewEscrowRepo(pool Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

// Create inserts a new escrow transaction within a database transaction.
func (r *EscrowRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.EscrowTransaction) error {
	query := `INSERT INTO escrow_transactions (id, transaction_id,
		buyer_user_id, buyer_name, buyer_email,
		seller_user_id, seller_name, seller_email,
		vin, manufacturer, model,
		amount, fee_rate, status, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.TransactionID,
		e.Buyer.UserID, e.Buyer.Name, e.Buyer.Email,
		e.Seller.UserID, e.Seller.Name, e.Seller.Email,
		e.Vehicle.VIN, e.Vehicle.Manufacturer, e.Vehicle.Model,
		e.Amount, e.FeeRate, e.Status, e.CreatedAt, e.UpdatedAt, e.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert escrow transaction: %w", err)
	}
	return nil
}

// GetByTransactionID fetches an escrow by its business key.
func (r *EscrowRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.EscrowTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_transactions WHERE transaction_id = $1`, escrowColumns)
	return r.scanEscrow(r.pool.QueryRow(ctx, query, transactionID))
}

// GetByTransactionIDForUpdate fetches an escrow and takes the row lock that
// serializes all mutations for this transaction id until the enclosing
// database transaction ends.
func (r *EscrowRepo) GetByTransactionIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.EscrowTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_transactions WHERE transaction_id = $1 FOR UPDATE`, escrowColumns)
	return r.scanEscrow(tx.QueryRow(ctx, query, transactionID))
}

// UpdateStatus persists the aggregate's new status within a database transaction.
func (r *EscrowRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, transactionID string, status domain.Status, completedAt *time.Time) error {
	query := `UPDATE escrow_transactions
		SET status = $1, updated_at = $2, completed_at = COALESCE($3, completed_at)
		WHERE transaction_id = $4`

	tag, err := tx.Exec(ctx, query, status, time.Now().UTC(), completedAt, transactionID)
	if err != nil {
		return fmt.Errorf("update escrow status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("escrow transaction not found: %s", transactionID)
	}
	return nil
}

// ListByBuyer fetches all escrows where the given user is the buyer.
func (r *EscrowRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.EscrowTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_transactions WHERE buyer_user_id = $1 ORDER BY created_at DESC`, escrowColumns)
	return r.list(ctx, query, buyerID)
}

// ListBySeller fetches all escrows where the given user is the seller.
func (r *EscrowRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.EscrowTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_transactions WHERE seller_user_id = $1 ORDER BY created_at DESC`, escrowColumns)
	return r.list(ctx, query, sellerID)
}

// ListByStatus fetches all escrows currently in the given status.
func (r *EscrowRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.EscrowTransaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_transactions WHERE status = $1 ORDER BY created_at DESC`, escrowColumns)
	return r.list(ctx, query, status)
}

func (r *EscrowRepo) list(ctx context.Context, query string, arg any) ([]domain.EscrowTransaction, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list escrow transactions: %w", err)
	}
	defer rows.Close()

	var escrows []domain.EscrowTransaction
	for rows.Next() {
		e := domain.EscrowTransaction{}
		if err := scanEscrowFields(rows, &e); err != nil {
			return nil, fmt.Errorf("scan escrow row: %w", err)
		}
		escrows = append(escrows, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escrow rows: %w", err)
	}
	return escrows, nil
}

func (r *EscrowRepo) scanEscrow(row pgx.Row) (*domain.EscrowTransaction, error) {
	e := &domain.EscrowTransaction{}
	if err := scanEscrowFields(row, e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan escrow: %w", err)
	}
	return e, nil
}

func scanEscrowFields(row pgx.Row, e *domain.EscrowTransaction) error {
	return row.Scan(
		&e.ID, &e.TransactionID,
		&e.Buyer.UserID, &e.Buyer.Name, &e.Buyer.Email,
		&e.Seller.UserID, &e.Seller.Name, &e.Seller.Email,
		&e.Vehicle.VIN, &e.Vehicle.Manufacturer, &e.Vehicle.Model,
		&e.Amount, &e.FeeRate, &e.Status, &e.CreatedAt, &e.UpdatedAt, &e.CompletedAt,
	)
}
