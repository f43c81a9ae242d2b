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

// DepositServiceImpl implements ports.DepositService.
type DepositServiceImpl struct {
	lifecycle
	depositRepo ports.DepositRepository
}

// NewDepositService creates a new DepositServiceImpl.
func NewDepositService(
	escrowRepo ports.EscrowRepository,
	eventRepo ports.EventStoreRepository,
	depositRepo ports.DepositRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *DepositServiceImpl {
	return &DepositServiceImpl{
		lifecycle: lifecycle{
			escrowRepo: escrowRepo,
			eventRepo:  eventRepo,
			transactor: transactor,
			publisher:  publisher,
			log:        log,
		},
		depositRepo: depositRepo,
	}
}

// ProcessDeposit confirms the buyer's funding and moves the escrow to
// DEPOSITED. The amount must match the escrow amount exactly; a mismatch
// leaves the transaction untouched.
func (s *DepositServiceImpl) ProcessDeposit(ctx context.Context, req ports.DepositRequest) (*domain.Deposit, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if strings.TrimSpace(req.Method) == "" {
		return nil, apperror.Validation("deposit method is required")
	}

	var deposit *domain.Deposit
	_, err := s.mutate(ctx, req.TransactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		previous := esc.Status
		if err := esc.ConfirmDeposit(req.Amount); err != nil {
			return nil, err
		}

		deposit = domain.NewDeposit(req.TransactionID, req.Amount, req.Method, req.Reference)
		if err := deposit.Confirm(); err != nil {
			return nil, apperror.InternalError(err)
		}
		if err := s.depositRepo.Create(ctx, dbTx, deposit); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create deposit: %w", err))
		}

		event, err := domain.NewEvent(req.TransactionID, domain.EventDepositConfirmed,
			previous, esc.Status,
			domain.DepositConfirmedPayload{
				Amount:    deposit.Amount,
				Method:    deposit.Method,
				Reference: deposit.Reference,
				DepositID: deposit.ID,
			},
			esc.Buyer.UserID)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", req.TransactionID).
		Int64("amount", req.Amount).
		Str("method", req.Method).
		Msg("deposit confirmed")

	return deposit, nil
}

// ListDeposits returns the deposit ledger for a transaction.
func (s *DepositServiceImpl) ListDeposits(ctx context.Context, transactionID string, confirmedOnly bool) ([]domain.Deposit, error) {
	esc, err := s.escrowRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}
	if esc == nil {
		return nil, apperror.ErrEscrowNotFound(transactionID)
	}

	var deposits []domain.Deposit
	if confirmedOnly {
		deposits, err = s.depositRepo.ListConfirmedByTransaction(ctx, transactionID)
	} else {
		deposits, err = s.depositRepo.ListByTransaction(ctx, transactionID)
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list deposits: %w", err))
	}
	return deposits, nil
}
