package service

import (
	"context"
	"testing"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/internal/core/ports/mocks"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type disputeTestDeps struct {
	svc         *DisputeServiceImpl
	escrowRepo  *mocks.MockEscrowRepository
	eventRepo   *mocks.MockEventStoreRepository
	disputeRepo *mocks.MockDisputeRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupDisputeService(t *testing.T) *disputeTestDeps {
	ctrl := gomock.NewController(t)
	d := &disputeTestDeps{
		escrowRepo:  mocks.NewMockEscrowRepository(ctrl),
		eventRepo:   mocks.NewMockEventStoreRepository(ctrl),
		disputeRepo: mocks.NewMockDisputeRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewDisputeService(
		d.escrowRepo, d.eventRepo, d.disputeRepo, d.transactor,
		nil, zerolog.Nop(),
	)
	return d
}

func TestDisputeService_RaiseDispute_Success(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDelivered)

	req := ports.DisputeRequest{
		TransactionID: existing.TransactionID,
		Reason:        "vehicle condition differs from listing",
		RaisedBy:      "buyer-1",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)
	d.disputeRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	var appended *domain.Event
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, ev *domain.Event) error {
			appended = ev
			return nil
		})
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusDisputed, gomock.Nil()).Return(nil)

	dispute, err := d.svc.RaiseDispute(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, dispute)
	assert.Equal(t, domain.DisputeOpen, dispute.Status)
	assert.Equal(t, domain.StatusDelivered, dispute.PreviousStatus)
	assert.Equal(t, "buyer-1", dispute.RaisedBy)
	assert.Equal(t, domain.StatusDisputed, existing.Status)

	require.NotNil(t, appended)
	assert.Equal(t, domain.EventDisputeRaised, appended.Type)
	assert.Equal(t, domain.StatusDelivered, appended.PreviousStatus)
	assert.Equal(t, domain.StatusDisputed, appended.NewStatus)
}

func TestDisputeService_RaiseDispute_TerminalTransaction(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusCompleted)

	req := ports.DisputeRequest{
		TransactionID: existing.TransactionID,
		Reason:        "buyer regret",
		RaisedBy:      "buyer-1",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)

	dispute, err := d.svc.RaiseDispute(ctx, req)
	assert.Nil(t, dispute)
	assertAppError(t, err, "ESC_002")
}

func TestDisputeService_RaiseDispute_MissingReason(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	req := ports.DisputeRequest{
		TransactionID: "ESC-x",
		RaisedBy:      "buyer-1",
	}

	dispute, err := d.svc.RaiseDispute(context.Background(), req)
	assert.Nil(t, dispute)
	assertAppError(t, err, "ESC_010")
}

func TestDisputeService_StartDisputeReview_Success(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	open := domain.NewDispute("ESC-1", "damage on delivery", "buyer-1", domain.StatusDelivered)

	d.disputeRepo.EXPECT().GetByID(ctx, open.ID).Return(open, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.disputeRepo.EXPECT().Update(ctx, tx, open).Return(nil)

	dispute, err := d.svc.StartDisputeReview(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeUnderReview, dispute.Status)
}

func TestDisputeService_StartDisputeReview_AlreadyResolved(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	resolved := domain.NewDispute("ESC-1", "damage on delivery", "buyer-1", domain.StatusDelivered)
	require.NoError(t, resolved.Resolve("refund issued", "admin-1"))

	d.disputeRepo.EXPECT().GetByID(ctx, resolved.ID).Return(resolved, nil)

	dispute, err := d.svc.StartDisputeReview(ctx, resolved.ID)
	assert.Nil(t, dispute)
	assertAppError(t, err, "ESC_007")
}

func TestDisputeService_ResolveDispute_Success(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDisputed)
	open := domain.NewDispute(existing.TransactionID, "damage on delivery", "buyer-1", domain.StatusDelivered)

	d.disputeRepo.EXPECT().GetByID(ctx, open.ID).Return(open, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)
	d.disputeRepo.EXPECT().Update(ctx, tx, open).Return(nil)

	var appended *domain.Event
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, ev *domain.Event) error {
			appended = ev
			return nil
		})
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusDisputed, gomock.Nil()).Return(nil)

	dispute, err := d.svc.ResolveDispute(ctx, open.ID, "seller repaired the defect", "admin-1")
	require.NoError(t, err)
	assert.True(t, dispute.IsResolved())
	require.NotNil(t, dispute.Resolution)
	assert.Equal(t, "seller repaired the defect", *dispute.Resolution)

	// The transaction stays DISPUTED until an explicit follow-up routes it.
	assert.Equal(t, domain.StatusDisputed, existing.Status)
	require.NotNil(t, appended)
	assert.Equal(t, domain.EventDisputeResolved, appended.Type)
	assert.Equal(t, domain.StatusDisputed, appended.PreviousStatus)
	assert.Equal(t, domain.StatusDisputed, appended.NewStatus)
}

func TestDisputeService_ResolveDispute_NotFound(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	missing := domain.NewDispute("ESC-1", "x", "buyer-1", domain.StatusDeposited)

	d.disputeRepo.EXPECT().GetByID(ctx, missing.ID).Return(nil, nil)

	dispute, err := d.svc.ResolveDispute(ctx, missing.ID, "resolution", "admin-1")
	assert.Nil(t, dispute)
	assertAppError(t, err, "ESC_006")
}

func TestDisputeService_ResolveDispute_MissingResolution(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	open := domain.NewDispute("ESC-1", "x", "buyer-1", domain.StatusDeposited)

	dispute, err := d.svc.ResolveDispute(context.Background(), open.ID, "", "admin-1")
	assert.Nil(t, dispute)
	assertAppError(t, err, "ESC_010")
}

func TestDisputeService_ListDisputesByStatus_Invalid(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	disputes, err := d.svc.ListDisputesByStatus(context.Background(), "ESCALATED")
	assert.Nil(t, disputes)
	assertAppError(t, err, "ESC_010")
}

func TestDisputeService_ListDisputesByStatus_Open(t *testing.T) {
	d := setupDisputeService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.disputeRepo.EXPECT().ListByStatus(ctx, domain.DisputeOpen).Return([]domain.Dispute{
		*domain.NewDispute("ESC-1", "damage", "buyer-1", domain.StatusDelivered),
	}, nil)

	disputes, err := d.svc.ListDisputesByStatus(ctx, domain.DisputeOpen)
	require.NoError(t, err)
	assert.Len(t, disputes, 1)
}
