package service

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/rs/zerolog"
)

// EventSourcingServiceImpl implements ports.EventSourcingService: the read
// side of the event store, including full state reconstruction by replay.
type EventSourcingServiceImpl struct {
	escrowRepo ports.EscrowRepository
	eventRepo  ports.EventStoreRepository
	log        zerolog.Logger
}

// NewEventSourcingService creates a new EventSourcingServiceImpl.
func NewEventSourcingService(
	escrowRepo ports.EscrowRepository,
	eventRepo ports.EventStoreRepository,
	log zerolog.Logger,
) *EventSourcingServiceImpl {
	return &EventSourcingServiceImpl{
		escrowRepo: escrowRepo,
		eventRepo:  eventRepo,
		log:        log,
	}
}

// History returns the full ordered event stream for a transaction.
func (s *EventSourcingServiceImpl) History(ctx context.Context, transactionID string) ([]domain.Event, error) {
	if err := s.ensureExists(ctx, transactionID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.History(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("event history: %w", err))
	}
	return events, nil
}

// ReconstructState replays the event stream into a projection. With
// upToSequence set, replay stops after that event, yielding the transaction
// as it stood at that point in time.
func (s *EventSourcingServiceImpl) ReconstructState(ctx context.Context, transactionID string, upToSequence *int64) (*domain.Projection, error) {
	if err := s.ensureExists(ctx, transactionID); err != nil {
		return nil, err
	}
	if upToSequence != nil && *upToSequence < 1 {
		return nil, apperror.Validation("up_to_sequence must be >= 1")
	}

	var (
		events []domain.Event
		err    error
	)
	if upToSequence != nil {
		events, err = s.eventRepo.HistoryUpTo(ctx, transactionID, *upToSequence)
	} else {
		events, err = s.eventRepo.History(ctx, transactionID)
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("event history: %w", err))
	}

	projection, err := domain.Replay(transactionID, events)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("replay %s: %w", transactionID, err))
	}
	return projection, nil
}

func (s *EventSourcingServiceImpl) ensureExists(ctx context.Context, transactionID string) error {
	esc, err := s.escrowRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get escrow: %w", err))
	}
	if esc == nil {
		return apperror.ErrEscrowNotFound(transactionID)
	}
	return nil
}
