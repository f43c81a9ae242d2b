package service

import (
	"context"
	"fmt"
	"strings"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// EscrowServiceImpl implements ports.EscrowService.
type EscrowServiceImpl struct {
	lifecycle
	disputeRepo    ports.DisputeRepository
	defaultFeeRate float64
}

// NewEscrowService creates a new EscrowServiceImpl. defaultFeeRate applies
// when a creation request omits the rate.
func NewEscrowService(
	escrowRepo ports.EscrowRepository,
	eventRepo ports.EventStoreRepository,
	disputeRepo ports.DisputeRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	defaultFeeRate float64,
	log zerolog.Logger,
) *EscrowServiceImpl {
	if defaultFeeRate <= 0 {
		defaultFeeRate = domain.DefaultFeeRate
	}
	return &EscrowServiceImpl{
		lifecycle: lifecycle{
			escrowRepo: escrowRepo,
			eventRepo:  eventRepo,
			transactor: transactor,
			publisher:  publisher,
			log:        log,
		},
		disputeRepo:    disputeRepo,
		defaultFeeRate: defaultFeeRate,
	}
}

// CreateEscrow opens a new INITIATED escrow and appends its first event.
func (s *EscrowServiceImpl) CreateEscrow(ctx context.Context, req ports.CreateEscrowRequest) (*domain.EscrowTransaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if err := validateParticipant("buyer", req.Buyer); err != nil {
		return nil, err
	}
	if err := validateParticipant("seller", req.Seller); err != nil {
		return nil, err
	}
	if req.Buyer.UserID == req.Seller.UserID {
		return nil, apperror.Validation("buyer and seller must be different users")
	}
	if strings.TrimSpace(req.Vehicle.VIN) == "" {
		return nil, apperror.Validation("vehicle vin is required")
	}

	feeRate := req.FeeRate
	if feeRate <= 0 {
		feeRate = s.defaultFeeRate
	}
	esc := domain.NewEscrowTransaction(req.Buyer, req.Seller, req.Vehicle, req.Amount, feeRate)

	event, err := domain.NewEvent(esc.TransactionID, domain.EventEscrowCreated,
		"", domain.StatusInitiated,
		domain.EscrowCreatedPayload{
			Buyer:   esc.Buyer,
			Seller:  esc.Seller,
			Vehicle: esc.Vehicle,
			Amount:  esc.Amount,
			FeeRate: esc.FeeRate,
		},
		esc.Buyer.UserID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.escrowRepo.Create(ctx, dbTx, esc); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create escrow: %w", err))
	}
	if err := s.eventRepo.Append(ctx, dbTx, event); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.publish(ctx, event)

	s.log.Info().
		Str("transaction_id", esc.TransactionID).
		Str("buyer", esc.Buyer.UserID).
		Str("seller", esc.Seller.UserID).
		Int64("amount", esc.Amount).
		Float64("fee_rate", esc.FeeRate).
		Msg("escrow created")

	return esc, nil
}

// GetEscrow fetches one escrow by its transaction id.
func (s *EscrowServiceImpl) GetEscrow(ctx context.Context, transactionID string) (*domain.EscrowTransaction, error) {
	esc, err := s.escrowRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}
	if esc == nil {
		return nil, apperror.ErrEscrowNotFound(transactionID)
	}
	return esc, nil
}

// ListEscrows queries the read side. The first non-empty filter field wins.
func (s *EscrowServiceImpl) ListEscrows(ctx context.Context, filter ports.EscrowListFilter) ([]domain.EscrowTransaction, error) {
	var (
		escrows []domain.EscrowTransaction
		err     error
	)
	switch {
	case filter.BuyerID != "":
		escrows, err = s.escrowRepo.ListByBuyer(ctx, filter.BuyerID)
	case filter.SellerID != "":
		escrows, err = s.escrowRepo.ListBySeller(ctx, filter.SellerID)
	case filter.Status != "":
		if !domain.ValidStatus(filter.Status) {
			return nil, apperror.Validation(fmt.Sprintf("unknown status: %s", filter.Status))
		}
		escrows, err = s.escrowRepo.ListByStatus(ctx, filter.Status)
	default:
		return nil, apperror.Validation("one of buyer_id, seller_id or status is required")
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list escrows: %w", err))
	}
	return escrows, nil
}

// CancelEscrow cancels the transaction and records the refund owed to the
// buyer. When cancelling out of DISPUTED the refund is computed from the
// status the transaction held before the dispute was raised.
func (s *EscrowServiceImpl) CancelEscrow(ctx context.Context, transactionID, reason, cancelledBy string) (*domain.EscrowTransaction, error) {
	esc, err := s.mutate(ctx, transactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		previous := esc.Status

		refundBasis := previous
		if previous == domain.StatusDisputed {
			basis, err := s.preDisputeStatus(ctx, transactionID)
			if err != nil {
				return nil, err
			}
			refundBasis = basis
		}

		if err := esc.Cancel(); err != nil {
			return nil, err
		}

		refund := domain.RefundAmount(refundBasis, esc.Amount)
		payload := domain.EscrowCancelledPayload{
			Reason:       reason,
			RefundAmount: refund,
		}
		if refund > 0 {
			payload.RefundTo = esc.Buyer.UserID
		}

		event, err := domain.NewEvent(transactionID, domain.EventEscrowCancelled,
			previous, esc.Status, payload, cancelledBy)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", transactionID).
		Str("cancelled_by", cancelledBy).
		Msg("escrow cancelled")

	return esc, nil
}

// preDisputeStatus finds the status the transaction held when its most
// recent dispute was raised.
func (s *EscrowServiceImpl) preDisputeStatus(ctx context.Context, transactionID string) (domain.Status, error) {
	disputes, err := s.disputeRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("list disputes: %w", err))
	}
	if len(disputes) == 0 {
		return "", apperror.InternalError(fmt.Errorf("escrow %s is DISPUTED but has no dispute rows", transactionID))
	}
	return disputes[len(disputes)-1].PreviousStatus, nil
}

func validateParticipant(side string, p domain.Participant) error {
	if strings.TrimSpace(p.UserID) == "" {
		return apperror.Validation(side + " user_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.Validation(side + " name is required")
	}
	return nil
}
