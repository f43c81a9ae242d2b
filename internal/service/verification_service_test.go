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

type verificationTestDeps struct {
	svc              *VerificationServiceImpl
	escrowRepo       *mocks.MockEscrowRepository
	eventRepo        *mocks.MockEventStoreRepository
	verificationRepo *mocks.MockVerificationRepository
	transactor       *mocks.MockDBTransactor
	ctrl             *gomock.Controller
}

func setupVerificationService(t *testing.T) *verificationTestDeps {
	ctrl := gomock.NewController(t)
	d := &verificationTestDeps{
		escrowRepo:       mocks.NewMockEscrowRepository(ctrl),
		eventRepo:        mocks.NewMockEventStoreRepository(ctrl),
		verificationRepo: mocks.NewMockVerificationRepository(ctrl),
		transactor:       mocks.NewMockDBTransactor(ctrl),
		ctrl:             ctrl,
	}
	d.svc = NewVerificationService(
		d.escrowRepo, d.eventRepo, d.verificationRepo, d.transactor,
		nil, zerolog.Nop(),
	)
	return d
}

func TestVerificationService_ConfirmDelivery_Success(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDeposited)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)

	var appended *domain.Event
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, ev *domain.Event) error {
			appended = ev
			return nil
		})
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusDelivered, gomock.Nil()).Return(nil)

	esc, err := d.svc.ConfirmDelivery(ctx, existing.TransactionID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, esc.Status)

	require.NotNil(t, appended)
	assert.Equal(t, domain.EventVehicleDelivered, appended.Type)
	assert.Equal(t, "seller-1", appended.TriggeredBy)
}

func TestVerificationService_ConfirmDelivery_BeforeDeposit(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusInitiated)

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)

	esc, err := d.svc.ConfirmDelivery(ctx, existing.TransactionID, "seller-1")
	assert.Nil(t, esc)
	assertAppError(t, err, "ESC_002")
}

func TestVerificationService_VerifyVehicle_Passed(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDelivered)

	req := ports.VerificationRequest{
		TransactionID: existing.TransactionID,
		Type:          domain.VerificationVehicleCondition,
		Result:        domain.VerificationPassed,
		VerifiedBy:    "inspector-1",
		Notes:         "matches listing",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)
	d.verificationRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	var appended *domain.Event
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, ev *domain.Event) error {
			appended = ev
			return nil
		})
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusVerified, gomock.Nil()).Return(nil)

	verification, err := d.svc.VerifyVehicle(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, verification)
	assert.Equal(t, domain.VerificationPassed, verification.Result)

	require.NotNil(t, appended)
	assert.Equal(t, domain.EventVehicleVerified, appended.Type)
	assert.Equal(t, domain.StatusVerified, appended.NewStatus)
}

func TestVerificationService_VerifyVehicle_Failed(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDelivered)

	req := ports.VerificationRequest{
		TransactionID: existing.TransactionID,
		Type:          domain.VerificationVehicleCondition,
		Result:        domain.VerificationFailed,
		VerifiedBy:    "inspector-1",
		Notes:         "odometer tampering",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)
	d.verificationRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	var appended *domain.Event
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, ev *domain.Event) error {
			appended = ev
			return nil
		})
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusVerificationFailed, gomock.Nil()).Return(nil)

	verification, err := d.svc.VerifyVehicle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationFailed, verification.Result)

	require.NotNil(t, appended)
	assert.Equal(t, domain.EventVerificationFailed, appended.Type)
	assert.Equal(t, domain.StatusVerificationFailed, appended.NewStatus)
}

func TestVerificationService_VerifyVehicle_UnsupportedType(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	req := ports.VerificationRequest{
		TransactionID: "ESC-x",
		Type:          domain.VerificationOwnershipTransfer, // has its own operation
		Result:        domain.VerificationPassed,
		VerifiedBy:    "inspector-1",
	}

	verification, err := d.svc.VerifyVehicle(context.Background(), req)
	assert.Nil(t, verification)
	assertAppError(t, err, "ESC_010")
}

func TestVerificationService_ConfirmOwnershipTransfer_Success(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusVerified)

	req := ports.OwnershipTransferRequest{
		TransactionID: existing.TransactionID,
		VerifiedBy:    "registry-office",
		Notes:         "title recorded",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)
	d.verificationRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	var appended *domain.Event
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, ev *domain.Event) error {
			appended = ev
			return nil
		})
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusOwnershipTransferred, gomock.Nil()).Return(nil)

	verification, err := d.svc.ConfirmOwnershipTransfer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationOwnershipTransfer, verification.Type)
	assert.Equal(t, domain.VerificationPassed, verification.Result)

	require.NotNil(t, appended)
	assert.Equal(t, domain.EventOwnershipTransferred, appended.Type)
}

func TestVerificationService_ConfirmOwnershipTransfer_WithoutVerification(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDelivered)

	req := ports.OwnershipTransferRequest{
		TransactionID: existing.TransactionID,
		VerifiedBy:    "registry-office",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)

	verification, err := d.svc.ConfirmOwnershipTransfer(ctx, req)
	assert.Nil(t, verification)
	assertAppError(t, err, "ESC_002")
}

func TestVerificationService_ListVerifications_EscrowNotFound(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.escrowRepo.EXPECT().GetByTransactionID(ctx, "ESC-missing").Return(nil, nil)

	records, err := d.svc.ListVerifications(ctx, "ESC-missing")
	assert.Nil(t, records)
	assertAppError(t, err, "ESC_001")
}
