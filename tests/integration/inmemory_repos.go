package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Escrow Repo ---

type inMemoryEscrowRepo struct {
	mu      sync.RWMutex
	escrows map[string]*domain.EscrowTransaction
}

func newInMemoryEscrowRepo() *inMemoryEscrowRepo {
	return &inMemoryEscrowRepo{escrows: make(map[string]*domain.EscrowTransaction)}
}

func (r *inMemoryEscrowRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.EscrowTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.escrows[e.TransactionID] = &cp
	return nil
}

func (r *inMemoryEscrowRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.EscrowTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.escrows[transactionID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryEscrowRepo) GetByTransactionIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.EscrowTransaction, error) {
	return r.GetByTransactionID(ctx, transactionID)
}

func (r *inMemoryEscrowRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, transactionID string, status domain.Status, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.escrows[transactionID]
	if !ok {
		return fmt.Errorf("escrow not found")
	}
	e.Status = status
	e.CompletedAt = completedAt
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryEscrowRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.EscrowTransaction, error) {
	return r.list(func(e *domain.EscrowTransaction) bool { return e.Buyer.UserID == buyerID })
}

func (r *inMemoryEscrowRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.EscrowTransaction, error) {
	return r.list(func(e *domain.EscrowTransaction) bool { return e.Seller.UserID == sellerID })
}

func (r *inMemoryEscrowRepo) ListByStatus(ctx context.Context, status domain.Status) ([]domain.EscrowTransaction, error) {
	return r.list(func(e *domain.EscrowTransaction) bool { return e.Status == status })
}

func (r *inMemoryEscrowRepo) list(match func(*domain.EscrowTransaction) bool) ([]domain.EscrowTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.EscrowTransaction
	for _, e := range r.escrows {
		if match(e) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// --- In-Memory Event Store ---

type inMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]domain.Event
}

func newInMemoryEventStore() *inMemoryEventStore {
	return &inMemoryEventStore{events: make(map[string][]domain.Event)}
}

func (r *inMemoryEventStore) Append(ctx context.Context, tx pgx.Tx, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stream := r.events[event.TransactionID]
	event.Sequence = int64(len(stream)) + 1
	for _, existing := range stream {
		if existing.Sequence == event.Sequence {
			return apperror.ErrConcurrentUpdate(event.TransactionID)
		}
	}
	r.events[event.TransactionID] = append(stream, *event)
	return nil
}

func (r *inMemoryEventStore) History(ctx context.Context, transactionID string) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stream := r.events[transactionID]
	out := make([]domain.Event, len(stream))
	copy(out, stream)
	return out, nil
}

func (r *inMemoryEventStore) HistoryUpTo(ctx context.Context, transactionID string, upToSequence int64) ([]domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Event
	for _, e := range r.events[transactionID] {
		if e.Sequence <= upToSequence {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- In-Memory Deposit Repo ---

type inMemoryDepositRepo struct {
	mu       sync.RWMutex
	deposits map[string][]domain.Deposit
}

func newInMemoryDepositRepo() *inMemoryDepositRepo {
	return &inMemoryDepositRepo{deposits: make(map[string][]domain.Deposit)}
}

func (r *inMemoryDepositRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deposits[d.TransactionID] = append(r.deposits[d.TransactionID], *d)
	return nil
}

func (r *inMemoryDepositRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Deposit, len(r.deposits[transactionID]))
	copy(out, r.deposits[transactionID])
	return out, nil
}

func (r *inMemoryDepositRepo) ListConfirmedByTransaction(ctx context.Context, transactionID string) ([]domain.Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Deposit
	for _, d := range r.deposits[transactionID] {
		if d.IsConfirmed() {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- In-Memory Verification Repo ---

type inMemoryVerificationRepo struct {
	mu            sync.RWMutex
	verifications map[string][]domain.Verification
}

func newInMemoryVerificationRepo() *inMemoryVerificationRepo {
	return &inMemoryVerificationRepo{verifications: make(map[string][]domain.Verification)}
}

func (r *inMemoryVerificationRepo) Create(ctx context.Context, tx pgx.Tx, v *domain.Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifications[v.TransactionID] = append(r.verifications[v.TransactionID], *v)
	return nil
}

func (r *inMemoryVerificationRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Verification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Verification, len(r.verifications[transactionID]))
	copy(out, r.verifications[transactionID])
	return out, nil
}

// --- In-Memory Settlement Repo ---

type inMemorySettlementRepo struct {
	mu          sync.RWMutex
	settlements map[string]*domain.Settlement
}

func newInMemorySettlementRepo() *inMemorySettlementRepo {
	return &inMemorySettlementRepo{settlements: make(map[string]*domain.Settlement)}
}

func (r *inMemorySettlementRepo) Create(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.settlements[s.TransactionID]; ok {
		return apperror.ErrSettlementExists(s.TransactionID)
	}
	cp := *s
	r.settlements[s.TransactionID] = &cp
	return nil
}

func (r *inMemorySettlementRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Settlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settlements[transactionID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySettlementRepo) ExistsByTransactionID(ctx context.Context, tx pgx.Tx, transactionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.settlements[transactionID]
	return ok, nil
}

func (r *inMemorySettlementRepo) Update(ctx context.Context, tx pgx.Tx, s *domain.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.settlements[s.TransactionID]; !ok {
		return fmt.Errorf("settlement not found")
	}
	cp := *s
	r.settlements[s.TransactionID] = &cp
	return nil
}

// --- In-Memory Dispute Repo ---

type inMemoryDisputeRepo struct {
	mu       sync.RWMutex
	disputes map[uuid.UUID]*domain.Dispute
	order    []uuid.UUID
}

func newInMemoryDisputeRepo() *inMemoryDisputeRepo {
	return &inMemoryDisputeRepo{disputes: make(map[uuid.UUID]*domain.Dispute)}
}

func (r *inMemoryDisputeRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.disputes[d.ID] = &cp
	r.order = append(r.order, d.ID)
	return nil
}

func (r *inMemoryDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.disputes[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *inMemoryDisputeRepo) ListByTransaction(ctx context.Context, transactionID string) ([]domain.Dispute, error) {
	return r.list(func(d *domain.Dispute) bool { return d.TransactionID == transactionID })
}

func (r *inMemoryDisputeRepo) ListByStatus(ctx context.Context, status domain.DisputeStatus) ([]domain.Dispute, error) {
	return r.list(func(d *domain.Dispute) bool { return d.Status == status })
}

func (r *inMemoryDisputeRepo) list(match func(*domain.Dispute) bool) ([]domain.Dispute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Dispute
	for _, id := range r.order {
		if d := r.disputes[id]; match(d) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *inMemoryDisputeRepo) Update(ctx context.Context, tx pgx.Tx, d *domain.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.disputes[d.ID]; !ok {
		return fmt.Errorf("dispute not found")
	}
	cp := *d
	r.disputes[d.ID] = &cp
	return nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes mutations with a single mutex, standing in
// for the row lock taken by SELECT ... FOR UPDATE.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockTx{mu: &t.mu}, nil
}

// lockTx is a pgx.Tx stand-in that releases the transactor mutex exactly once
// on Commit or Rollback.
type lockTx struct {
	mu   *sync.Mutex
	done bool
}

func (t *lockTx) release() {
	if !t.done {
		t.done = true
		t.mu.Unlock()
	}
}

func (t *lockTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *lockTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *lockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockTx) Conn() *pgx.Conn { return nil }

// --- Capturing Event Publisher ---

type capturingPublisher struct {
	mu     sync.Mutex
	events []ports.OutboundEvent
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{}
}

func (p *capturingPublisher) Publish(ctx context.Context, event ports.OutboundEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Published() []ports.OutboundEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.OutboundEvent, len(p.events))
	copy(out, p.events)
	return out
}
