package postgres

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, username, name, email, password_hash, role, created_at`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account. A duplicate username surfaces as a unique
// violation which the auth service maps to its own error.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, username, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Username, a.Name, a.Email, a.PasswordHash, a.Role, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrUsernameExists()
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by id. Returns nil if not found.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return r.get(ctx, query, id)
}

// GetByUsername fetches an account by username. Returns nil if not found.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE username = $1`, accountColumns)
	return r.get(ctx, query, username)
}

func (r *AccountRepo) get(ctx context.Context, query string, arg any) (*domain.Account, error) {
	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Username, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}
