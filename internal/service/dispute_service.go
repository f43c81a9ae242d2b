package service

import (
	"context"
	"fmt"
	"strings"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// DisputeServiceImpl implements ports.DisputeService.
type DisputeServiceImpl struct {
	lifecycle
	disputeRepo ports.DisputeRepository
}

// NewDisputeService creates a new DisputeServiceImpl.
func NewDisputeService(
	escrowRepo ports.EscrowRepository,
	eventRepo ports.EventStoreRepository,
	disputeRepo ports.DisputeRepository,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *DisputeServiceImpl {
	return &DisputeServiceImpl{
		lifecycle: lifecycle{
			escrowRepo: escrowRepo,
			eventRepo:  eventRepo,
			transactor: transactor,
			publisher:  publisher,
			log:        log,
		},
		disputeRepo: disputeRepo,
	}
}

// RaiseDispute freezes the transaction in DISPUTED and records the status it
// held, so resolution can route it back explicitly.
func (s *DisputeServiceImpl) RaiseDispute(ctx context.Context, req ports.DisputeRequest) (*domain.Dispute, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperror.Validation("dispute reason is required")
	}
	if strings.TrimSpace(req.RaisedBy) == "" {
		return nil, apperror.Validation("raised_by is required")
	}

	var dispute *domain.Dispute
	_, err := s.mutate(ctx, req.TransactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		previous, err := esc.RaiseDispute()
		if err != nil {
			return nil, err
		}

		dispute = domain.NewDispute(req.TransactionID, req.Reason, req.RaisedBy, previous)
		if err := s.disputeRepo.Create(ctx, dbTx, dispute); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create dispute: %w", err))
		}

		event, err := domain.NewEvent(req.TransactionID, domain.EventDisputeRaised,
			previous, esc.Status,
			domain.DisputeRaisedPayload{
				RaisedBy:       req.RaisedBy,
				Reason:         req.Reason,
				DisputeID:      dispute.ID,
				PreviousStatus: previous,
			},
			req.RaisedBy)
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
		Str("dispute_id", dispute.ID.String()).
		Str("raised_by", req.RaisedBy).
		Msg("dispute raised")

	return dispute, nil
}

// StartDisputeReview moves an OPEN dispute to UNDER_REVIEW. The transaction
// itself stays DISPUTED; only the dispute's own lifecycle advances, so no
// event is appended to the transaction stream.
func (s *DisputeServiceImpl) StartDisputeReview(ctx context.Context, disputeID uuid.UUID) (*domain.Dispute, error) {
	dispute, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := dispute.StartReview(); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.disputeRepo.Update(ctx, dbTx, dispute); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update dispute: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().Str("dispute_id", disputeID.String()).Msg("dispute review started")
	return dispute, nil
}

// ResolveDispute closes the dispute and appends a DisputeResolved event to
// the transaction stream without changing the transaction status. Routing
// the transaction out of DISPUTED is a separate explicit operation.
func (s *DisputeServiceImpl) ResolveDispute(ctx context.Context, disputeID uuid.UUID, resolution, resolvedBy string) (*domain.Dispute, error) {
	if strings.TrimSpace(resolution) == "" {
		return nil, apperror.Validation("resolution is required")
	}

	dispute, err := s.getDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, dispute.TransactionID, func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error) {
		if err := dispute.Resolve(resolution, resolvedBy); err != nil {
			return nil, err
		}
		if err := s.disputeRepo.Update(ctx, dbTx, dispute); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update dispute: %w", err))
		}

		// Status unchanged: previous == new on resolution events.
		event, err := domain.NewEvent(dispute.TransactionID, domain.EventDisputeResolved,
			esc.Status, esc.Status,
			domain.DisputeResolvedPayload{
				ResolvedBy: resolvedBy,
				Resolution: resolution,
				DisputeID:  dispute.ID,
			},
			resolvedBy)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		return event, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("dispute_id", disputeID.String()).
		Str("resolved_by", resolvedBy).
		Msg("dispute resolved")

	return dispute, nil
}

// ListDisputes returns all disputes raised against a transaction.
func (s *DisputeServiceImpl) ListDisputes(ctx context.Context, transactionID string) ([]domain.Dispute, error) {
	esc, err := s.escrowRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}
	if esc == nil {
		return nil, apperror.ErrEscrowNotFound(transactionID)
	}

	disputes, err := s.disputeRepo.ListByTransaction(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list disputes: %w", err))
	}
	return disputes, nil
}

// ListDisputesByStatus returns the admin review queue, oldest first.
func (s *DisputeServiceImpl) ListDisputesByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error) {
	switch status {
	case domain.DisputeOpen, domain.DisputeUnderReview, domain.DisputeResolved:
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown dispute status: %s", status))
	}

	disputes, err := s.disputeRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list disputes by status: %w", err))
	}
	return disputes, nil
}

func (s *DisputeServiceImpl) getDispute(ctx context.Context, disputeID uuid.UUID) (*domain.Dispute, error) {
	dispute, err := s.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get dispute: %w", err))
	}
	if dispute == nil {
		return nil, apperror.ErrDisputeNotFound(disputeID.String())
	}
	return dispute, nil
}
