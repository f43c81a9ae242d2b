package ports

import (
	"context"
	"time"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EscrowRepository defines persistence for the escrow aggregate.
// Methods accepting pgx.Tx run inside the mutation's database transaction;
// GetByTransactionIDForUpdate takes the row lock that serializes all
// mutations on one transaction id.
type EscrowRepository interface {
	Create(ctx context.Context, tx pgx.Tx, e *domain.EscrowTransaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.EscrowTransaction, error)
	GetByTransactionIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.EscrowTransaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, transactionID string, status domain.Status, completedAt *time.Time) error
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.EscrowTransaction, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.EscrowTransaction, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.EscrowTransaction, error)
}

// EventStoreRepository is the append-only event log. Append assigns the
// event's per-transaction sequence inside the caller's database transaction,
// so sequence assignment and the aggregate mutation commit or fail together.
type EventStoreRepository interface {
	Append(ctx context.Context, tx pgx.Tx, event *domain.Event) error
	History(ctx context.Context, transactionID string) ([]domain.Event, error)
	HistoryUpTo(ctx context.Context, transactionID string, upToSequence int64) ([]domain.Event, error)
}

// DepositRepository persists deposit ledger rows.
type DepositRepository interface {
	Create(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.Deposit, error)
	ListConfirmedByTransaction(ctx context.Context, transactionID string) ([]domain.Deposit, error)
}

// VerificationRepository persists verification ledger rows.
type VerificationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, v *domain.Verification) error
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.Verification, error)
}

// SettlementRepository persists the one-per-transaction settlement row.
type SettlementRepository interface {
	Create(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Settlement, error)
	ExistsByTransactionID(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error)
	Update(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error
}

// DisputeRepository persists dispute ledger rows.
type DisputeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispute, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.Dispute, error)
	ListByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error)
	Update(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error
}

// AccountRepository persists platform accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
