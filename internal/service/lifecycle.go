package service

import (
	"context"
	"encoding/json"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// lifecycle bundles the write path every escrow mutation shares: lock the
// aggregate row, apply the change, append the event, persist the new status,
// commit, then hand the event to the bus. Embedding it keeps each service's
// operation down to its own business rules.
type lifecycle struct {
	escrowRepo ports.EscrowRepository
	eventRepo  ports.EventStoreRepository
	transactor ports.DBTransactor
	publisher  ports.EventPublisher
	log        zerolog.Logger
}

// mutateFn applies one state change to the locked aggregate and returns the
// event describing it. It may perform additional writes through dbTx; they
// commit or roll back together with the status update and the event.
type mutateFn func(dbTx pgx.Tx, esc *domain.EscrowTransaction) (*domain.Event, error)

// mutate runs fn under the escrow row lock. The aggregate status update and
// the event append are a single database transaction; publishing happens
// after commit and is best-effort.
func (l *lifecycle) mutate(ctx context.Context, transactionID string, fn mutateFn) (*domain.EscrowTransaction, error) {
	dbTx, err := l.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	esc, err := l.escrowRepo.GetByTransactionIDForUpdate(ctx, dbTx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock escrow: %w", err))
	}
	if esc == nil {
		return nil, apperror.ErrEscrowNotFound(transactionID)
	}

	event, err := fn(dbTx, esc)
	if err != nil {
		return nil, err
	}

	if err := l.eventRepo.Append(ctx, dbTx, event); err != nil {
		return nil, err
	}

	if err := l.escrowRepo.UpdateStatus(ctx, dbTx, transactionID, esc.Status, esc.CompletedAt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update escrow status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	l.publish(ctx, event)

	return esc, nil
}

// publish forwards a committed event to the bus. Failures are logged, never
// surfaced: the state change already committed.
func (l *lifecycle) publish(ctx context.Context, event *domain.Event) {
	if l.publisher == nil {
		return
	}

	var data map[string]any
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &data); err != nil {
			l.log.Warn().Err(err).Str("event_type", string(event.Type)).Msg("failed to decode event payload for publish")
			data = nil
		}
	}

	out := ports.OutboundEvent{
		Type:          string(event.Type),
		TransactionID: event.TransactionID,
		Data:          data,
		OccurredAt:    event.OccurredAt,
	}
	if err := l.publisher.Publish(ctx, out); err != nil {
		l.log.Warn().Err(err).
			Str("event_type", string(event.Type)).
			Str("transaction_id", event.TransactionID).
			Msg("failed to publish event")
	}
}
