package ports

import (
	"context"
	"time"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/google/uuid"
)

// EscrowService drives creation, cancellation and read-side queries of the
// escrow aggregate.
type EscrowService interface {
	CreateEscrow(ctx context.Context, req CreateEscrowRequest) (*domain.EscrowTransaction, error)
	GetEscrow(ctx context.Context, transactionID string) (*domain.EscrowTransaction, error)
	ListEscrows(ctx context.Context, filter EscrowListFilter) ([]domain.EscrowTransaction, error)
	CancelEscrow(ctx context.Context, transactionID, reason, cancelledBy string) (*domain.EscrowTransaction, error)
}

// CreateEscrowRequest holds validated input for escrow creation.
type CreateEscrowRequest struct {
	Buyer   domain.Participant
	Seller  domain.Participant
	Vehicle domain.Vehicle
	Amount  int64
	FeeRate float64 // <= 0 means the configured default
}

// EscrowListFilter selects escrows on the read side. At most one of the
// fields is honored, checked in declaration order.
type EscrowListFilter struct {
	BuyerID  string
	SellerID string
	Status   domain.Status
}

// DepositService confirms buyer fundings.
type DepositService interface {
	ProcessDeposit(ctx context.Context, req DepositRequest) (*domain.Deposit, error)
	ListDeposits(ctx context.Context, transactionID string, confirmedOnly bool) ([]domain.Deposit, error)
}

// DepositRequest holds validated input for deposit processing.
type DepositRequest struct {
	TransactionID string
	Amount        int64
	Method        string
	Reference     string
}

// VerificationService records delivery, condition and ownership checks.
type VerificationService interface {
	ConfirmDelivery(ctx context.Context, transactionID, confirmedBy string) (*domain.EscrowTransaction, error)
	VerifyVehicle(ctx context.Context, req VerificationRequest) (*domain.Verification, error)
	ConfirmOwnershipTransfer(ctx context.Context, req OwnershipTransferRequest) (*domain.Verification, error)
	ListVerifications(ctx context.Context, transactionID string) ([]domain.Verification, error)
}

// VerificationRequest holds the outcome supplied by the external verifier.
type VerificationRequest struct {
	TransactionID string
	Type          domain.VerificationType
	Result        domain.VerificationResult
	VerifiedBy    string
	Notes         string
	DocumentID    *string
}

// OwnershipTransferRequest confirms the title transfer; always recorded as
// PASSED since it is a confirmation action.
type OwnershipTransferRequest struct {
	TransactionID string
	VerifiedBy    string
	Notes         string
	DocumentID    *string
}

// SettlementService computes and tracks the fee/payout breakdown.
type SettlementService interface {
	StartSettlement(ctx context.Context, transactionID, startedBy string) (*domain.Settlement, error)
	CompleteSettlement(ctx context.Context, transactionID, paymentMethod, paymentReference string) (*domain.Settlement, error)
	HandleSettlementFailure(ctx context.Context, transactionID, reason string) (*domain.Settlement, error)
	GetSettlement(ctx context.Context, transactionID string) (*domain.Settlement, error)
}

// DisputeService records disputes and their resolution. Resolution never
// auto-infers the transaction's next status.
type DisputeService interface {
	RaiseDispute(ctx context.Context, req DisputeRequest) (*domain.Dispute, error)
	StartDisputeReview(ctx context.Context, disputeID uuid.UUID) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID uuid.UUID, resolution, resolvedBy string) (*domain.Dispute, error)
	ListDisputes(ctx context.Context, transactionID string) ([]domain.Dispute, error)
	ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error)
}

// DisputeRequest holds validated input for raising a dispute.
type DisputeRequest struct {
	TransactionID string
	Reason        string
	RaisedBy      string
}

// EventSourcingService exposes the read side of the event store.
type EventSourcingService interface {
	History(ctx context.Context, transactionID string) ([]domain.Event, error)
	ReconstructState(ctx context.Context, transactionID string, upToSequence *int64) (*domain.Projection, error)
}

// AuthService defines account registration and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     domain.Role
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(account *domain.Account) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims. Username is the actor id recorded
// as triggeredBy on events caused by this account.
type TokenClaims struct {
	AccountID uuid.UUID
	Username  string
	Role      domain.Role
}
