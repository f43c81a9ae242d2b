package postgres

import (
	"context"
	"fmt"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, transaction_id, sequence, event_type, previous_status, new_status, payload, triggered_by, occurred_at`

// EventStoreRepo implements ports.EventStoreRepository. Rows are write-once:
// there is no update or delete path, and a unique index on
// (transaction_id, sequence) backs the gap-free ordering guarantee.
type EventStoreRepo struct {
	pool Pool
}

// NewEventStoreRepo creates a new EventStoreRepo.
func NewEventStoreRepo(pool Pool) *EventStoreRepo {
	return &EventStoreRepo{pool: pool}
}

// Append assigns the next per-transaction sequence and inserts the event,
// all inside the caller's database transaction. The caller already holds the
// escrow row lock, which serializes sequence assignment; the unique index is
// the backstop that turns a lost race into a retryable conflict.
func (r *EventStoreRepo) Append(ctx context.Context, tx pgx.Tx, event *domain.Event) error {
	seqQuery := `SELECT COALESCE(MAX(sequence), 0) + 1 FROM escrow_events WHERE transaction_id = $1`
	if err := tx.QueryRow(ctx, seqQuery, event.TransactionID).Scan(&event.Sequence); err != nil {
		return fmt.Errorf("next event sequence: %w", err)
	}

	insert := `INSERT INTO escrow_events (id, transaction_id, sequence, event_type, previous_status, new_status, payload, triggered_by, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, insert,
		event.ID, event.TransactionID, event.Sequence, event.Type,
		nullIfEmpty(string(event.PreviousStatus)), event.NewStatus,
		event.Payload, event.TriggeredBy, event.OccurredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrConcurrentUpdate(event.TransactionID)
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// History returns all events for a transaction ordered by sequence ascending.
func (r *EventStoreRepo) History(ctx context.Context, transactionID string) ([]domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_events WHERE transaction_id = $1 ORDER BY sequence ASC`, eventColumns)
	rows, err := r.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query event history: %w", err)
	}
	return scanEvents(rows)
}

// HistoryUpTo returns events up to and including the given sequence.
func (r *EventStoreRepo) HistoryUpTo(ctx context.Context, transactionID string, upToSequence int64) ([]domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM escrow_events WHERE transaction_id = $1 AND sequence <= $2 ORDER BY sequence ASC`, eventColumns)
	rows, err := r.pool.Query(ctx, query, transactionID, upToSequence)
	if err != nil {
		return nil, fmt.Errorf("query event history: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev := domain.Event{}
		var prev *string
		err := rows.Scan(
			&ev.ID, &ev.TransactionID, &ev.Sequence, &ev.Type,
			&prev, &ev.NewStatus, &ev.Payload, &ev.TriggeredBy, &ev.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if prev != nil {
			ev.PreviousStatus = domain.Status(*prev)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
