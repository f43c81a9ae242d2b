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

// VerificationServiceImpl implements ports.VerificationService.
type VerificationServiceImpl struct {
	lifecycle
	verificationRepo ports.VerificationRepository
}

// NewVerificationService creates a new VerificationServiceImpl.
func NewVerificationService(
	escrowRepo ports.EscrowRepository,
	eventRepo ports.EventStoreRepository,
	verificationRepo ports.VerificationRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *VerificationServiceImpl {
	return &VerificationServiceImpl{
		lifecycle: lifecycle{
			escrowRepo: escrowRepo,
			eventRepo:  eventRepo,
			transactor: transactor,
			publisher:  publisher,
			log:        log,
		},
		verificationRepo: verificationRepo,
	}
}

// ConfirmDelivery moves the escrow to DELIVERED.
func (s *VerificationServiceImpl) ConfirmDelivery(ctx context.Context, transactionID, confirmedBy string) (*domain.EscrowTransaction, error) {
	if strings.TrimSpace(confirmedBy) == "" {
		return nil, apperror.Validation("confirmed_by is required")
	}

	esc, err := s.mutate(ctx, transactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		previous := esc.Status
		if err := esc.ConfirmDelivery(); err != nil {
			return nil, err
		}

		event, err := domain.NewEvent(transactionID, domain.EventVehicleDelivered,
			previous, esc.Status,
			domain.VehicleDeliveredPayload{
				VIN:         esc.Vehicle.VIN,
				ConfirmedBy: confirmedBy,
			},
			confirmedBy)
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
		Str("confirmed_by", confirmedBy).
		Msg("vehicle delivery confirmed")

	return esc, nil
}

// VerifyVehicle records the condition check outcome and moves the escrow to
// VERIFIED or VERIFICATION_FAILED accordingly.
func (s *VerificationServiceImpl) VerifyVehicle(ctx context.Context, req ports.VerificationRequest) (*domain.Verification, error) {
	if req.Type != domain.VerificationVehicleCondition {
		return nil, apperror.Validation(fmt.Sprintf("unsupported verification type: %s", req.Type))
	}
	if req.Result != domain.VerificationPassed && req.Result != domain.VerificationFailed {
		return nil, apperror.Validation(fmt.Sprintf("unknown verification result: %s", req.Result))
	}
	if strings.TrimSpace(req.VerifiedBy) == "" {
		return nil, apperror.Validation("verified_by is required")
	}

	var verification *domain.Verification
	_, err := s.mutate(ctx, req.TransactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		previous := esc.Status
		if err := esc.VerifyVehicle(req.Result); err != nil {
			return nil, err
		}

		verification = domain.NewVerification(req.TransactionID, req.Type, req.Result, req.VerifiedBy, req.Notes, req.DocumentID)
		if err := s.verificationRepo.Create(ctx, dbTx, verification); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create verification: %w", err))
		}

		eventType := domain.EventVehicleVerified
		var payload any
		if req.Result == domain.VerificationPassed {
			payload = domain.VehicleVerifiedPayload{
				VIN:            esc.Vehicle.VIN,
				VerifiedBy:     req.VerifiedBy,
				VerificationID: verification.ID,
			}
		} else {
			eventType = domain.EventVerificationFailed
			payload = domain.VerificationFailedPayload{
				VerifiedBy:     req.VerifiedBy,
				Reason:         req.Notes,
				VerificationID: verification.ID,
			}
		}

		event, err := domain.NewEvent(req.TransactionID, eventType, previous, esc.Status, payload, req.VerifiedBy)
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
		Str("result", string(req.Result)).
		Str("verified_by", req.VerifiedBy).
		Msg("vehicle verification recorded")

	return verification, nil
}

// ConfirmOwnershipTransfer records the title transfer and moves the escrow
// to OWNERSHIP_TRANSFERRED. Always recorded as PASSED: it is a confirmation
// action, not a pass/fail check.
func (s *VerificationServiceImpl) ConfirmOwnershipTransfer(ctx context.Context, req ports.OwnershipTransferRequest) (*domain.Verification, error) {
	if strings.TrimSpace(req.VerifiedBy) == "" {
		return nil, apperror.Validation("verified_by is required")
	}

	var verification *domain.Verification
	_, err := s.mutate(ctx, req.TransactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		previous := esc.Status
		if err := esc.ConfirmOwnershipTransfer(); err != nil {
			return nil, err
		}

		verification = domain.NewVerification(req.TransactionID, domain.VerificationOwnershipTransfer,
			domain.VerificationPassed, req.VerifiedBy, req.Notes, req.DocumentID)
		if err := s.verificationRepo.Create(ctx, dbTx, verification); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create verification: %w", err))
		}

		event, err := domain.NewEvent(req.TransactionID, domain.EventOwnershipTransferred,
			previous, esc.Status,
			domain.OwnershipTransferredPayload{
				VIN:            esc.Vehicle.VIN,
				NewOwnerID:     esc.Buyer.UserID,
				VerificationID: verification.ID,
			},
			req.VerifiedBy)
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
		Str("verified_by", req.VerifiedBy).
		Msg("ownership transfer confirmed")

	return verification, nil
}

// ListVerifications returns the verification ledger for a transaction.
func (s *VerificationServiceImpl) ListVerifications(ctx context.Context, transactionID string) ([]domain.Verification, error) {
	esc, err := s.escrowRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}
	if esc == nil {
		return nil, apperror.ErrEscrowNotFound(transactionID)
	}

	records, err := s.verificationRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list verifications: %w", err))
	}
	return records, nil
}
