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

// SettlementServiceImpl implements ports.SettlementService.
type SettlementServiceImpl struct {
	lifecycle
	settlementRepo ports.SettlementRepository
}

// NewSettlementService creates a new SettlementServiceImpl.
func NewSettlementService(
	escrowRepo ports.EscrowRepository,
	eventRepo ports.EventStoreRepository,
	settlementRepo ports.SettlementRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		lifecycle: lifecycle{
			escrowRepo: escrowRepo,
			eventRepo:  eventRepo,
			transactor: transactor,
			publisher:  publisher,
			log:        log,
		},
		settlementRepo: settlementRepo,
	}
}

// StartSettlement computes the fee breakdown, creates the one-per-transaction
// settlement row and moves the escrow to SETTLING. A transaction that already
// has a settlement cannot start another one.
func (s *SettlementServiceImpl) StartSettlement(ctx context.Context, transactionID, startedBy string) (*domain.Settlement, error) {
	var settlement *domain.Settlement
	_, err := s.mutate(ctx, transactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		exists, err := s.settlementRepo.ExistsByTransactionID(ctx, dbTx, transactionID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check settlement exists: %w", err))
		}
		if exists {
			return nil, apperror.ErrSettlementExists(transactionID)
		}

		previous := esc.Status
		if err := esc.StartSettlement(); err != nil {
			return nil, err
		}

		settlement = domain.NewSettlement(transactionID, esc.Amount, esc.Fee(), esc.SellerAmount(), esc.Seller.UserID)
		if err := s.settlementRepo.Create(ctx, dbTx, settlement); err != nil {
			return nil, err
		}

		event, err := domain.NewEvent(transactionID, domain.EventSettlementStarted,
			previous, esc.Status,
			domain.SettlementStartedPayload{
				TotalAmount:  settlement.TotalAmount,
				FeeAmount:    settlement.FeeAmount,
				SellerAmount: settlement.SellerAmount,
				SettlementID: settlement.ID,
			},
			startedBy)
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
		Int64("total", settlement.TotalAmount).
		Int64("fee", settlement.FeeAmount).
		Int64("seller_amount", settlement.SellerAmount).
		Msg("settlement started")

	return settlement, nil
}

// CompleteSettlement records the payout confirmation and moves the escrow to
// COMPLETED. Triggered by the payment gateway callback, not a user.
func (s *SettlementServiceImpl) CompleteSettlement(ctx context.Context, transactionID, paymentMethod, paymentReference string) (*domain.Settlement, error) {
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, apperror.Validation("payment_method is required")
	}

	var settlement *domain.Settlement
	_, err := s.mutate(ctx, transactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		var err error
		settlement, err = s.settlementRepo.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get settlement: %w", err))
		}
		if settlement == nil {
			return nil, apperror.ErrSettlementNotFound(transactionID)
		}

		previous := esc.Status
		if err := esc.CompleteSettlement(); err != nil {
			return nil, err
		}
		if err := settlement.Complete(paymentMethod, paymentReference); err != nil {
			return nil, err
		}
		if err := s.settlementRepo.Update(ctx, dbTx, settlement); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update settlement: %w", err))
		}

		event, err := domain.NewEvent(transactionID, domain.EventEscrowCompleted,
			previous, esc.Status,
			domain.EscrowCompletedPayload{
				SellerID:      settlement.SellerID,
				SellerAmount:  settlement.SellerAmount,
				FeeAmount:     settlement.FeeAmount,
				PaymentMethod: paymentMethod,
				PaymentRef:    paymentReference,
			},
			"system")
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
		Str("payment_reference", paymentReference).
		Msg("settlement completed")

	return settlement, nil
}

// HandleSettlementFailure records a payout failure and moves the escrow to
// SETTLEMENT_FAILED. The settlement row survives for audit and retry via
// dispute resolution.
func (s *SettlementServiceImpl) HandleSettlementFailure(ctx context.Context, transactionID, reason string) (*domain.Settlement, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperror.Validation("failure reason is required")
	}

	var settlement *domain.Settlement
	_, err := s.mutate(ctx, transactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		var err error
		settlement, err = s.settlementRepo.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("get settlement: %w", err))
		}
		if settlement == nil {
			return nil, apperror.ErrSettlementNotFound(transactionID)
		}

		previous := esc.Status
		if err := esc.MarkSettlementFailed(); err != nil {
			return nil, err
		}
		if err := settlement.MarkFailed(reason); err != nil {
			return nil, err
		}
		if err := s.settlementRepo.Update(ctx, dbTx, settlement); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update settlement: %w", err))
		}

		event, err := domain.NewEvent(transactionID, domain.EventSettlementFailed,
			previous, esc.Status,
			domain.SettlementFailedPayload{Reason: reason},
			"system")
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Warn().
		Str("transaction_id", transactionID).
		Str("reason", reason).
		Msg("settlement failed")

	return settlement, nil
}

// GetSettlement fetches the settlement for a transaction.
func (s *SettlementServiceImpl) GetSettlement(ctx context.Context, transactionID string) (*domain.Settlement, error) {
	settlement, err := s.settlementRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get settlement: %w", err))
	}
	if settlement == nil {
		return nil, apperror.ErrSettlementNotFound(transactionID)
	}
	return settlement, nil
}
