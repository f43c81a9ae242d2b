package service

import (
	"context"
	"testing"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type depositTestDeps struct {
	svc         *DepositServiceImpl
	escrowRepo  *mocks.MockEscrowRepository
	eventRepo   *mocks.MockEventStoreRepository
	depositRepo *mocks.MockDepositRepository
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupDepositService(t *testing.T) *depositTestDeps {
	ctrl := gomock.NewController(t)
	d := &depositTestDeps{
		escrowRepo:  mocks.NewMockEscrowRepository(ctrl),
		eventRepo:   mocks.NewMockEventStoreRepository(ctrl),
		depositRepo: mocks.NewMockDepositRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewDepositService(
		d.escrowRepo, d.eventRepo, d.depositRepo, d.transactor,
		nil, zerolog.Nop(),
	)
	return d
}

func TestDepositService_ProcessDeposit_Success(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusInitiated)

	req := ports.DepositRequest{
		TransactionID: existing.TransactionID,
		Amount:        30_000_000,
		Method:        "BANK_TRANSFER",
		Reference:     "FT2026083101",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)
	d.depositRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.eventRepo.EXPECT().Append(ctx, tx, gomock.Any()).Return(nil)
	d.escrowRepo.EXPECT().UpdateStatus(ctx, tx, existing.TransactionID, domain.StatusDeposited, gomock.Nil()).Return(nil)

	deposit, err := d.svc.ProcessDeposit(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, deposit)
	assert.Equal(t, int64(30_000_000), deposit.Amount)
	assert.Equal(t, "BANK_TRANSFER", deposit.Method)
	assert.True(t, deposit.IsConfirmed())
}

func TestDepositService_ProcessDeposit_AmountMismatch(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusInitiated)

	req := ports.DepositRequest{
		TransactionID: existing.TransactionID,
		Amount:        29_000_000, // escrow holds 30,000,000
		Method:        "BANK_TRANSFER",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)

	deposit, err := d.svc.ProcessDeposit(ctx, req)
	assert.Nil(t, deposit)
	assertAppError(t, err, "ESC_003")
	assert.Equal(t, domain.StatusInitiated, existing.Status)
}

func TestDepositService_ProcessDeposit_InvalidAmount(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	req := ports.DepositRequest{
		TransactionID: "ESC-x",
		Amount:        -1,
		Method:        "BANK_TRANSFER",
	}

	deposit, err := d.svc.ProcessDeposit(context.Background(), req)
	assert.Nil(t, deposit)
	assertAppError(t, err, "ESC_009")
}

func TestDepositService_ProcessDeposit_AlreadyDeposited(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	existing := escrowAt(domain.StatusDeposited)

	req := ports.DepositRequest{
		TransactionID: existing.TransactionID,
		Amount:        30_000_000,
		Method:        "BANK_TRANSFER",
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.escrowRepo.EXPECT().GetByTransactionIDForUpdate(ctx, tx, existing.TransactionID).Return(existing, nil)

	deposit, err := d.svc.ProcessDeposit(ctx, req)
	assert.Nil(t, deposit)
	assertAppError(t, err, "ESC_002")
}

func TestDepositService_ListDeposits_ConfirmedOnly(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	existing := escrowAt(domain.StatusDeposited)

	confirmed := domain.NewDeposit(existing.TransactionID, 30_000_000, "BANK_TRANSFER", "FT1")
	require.NoError(t, confirmed.Confirm())

	d.escrowRepo.EXPECT().GetByTransactionID(ctx, existing.TransactionID).Return(existing, nil)
	d.depositRepo.EXPECT().ListConfirmedByTransaction(ctx, existing.TransactionID).
		Return([]domain.Deposit{*confirmed}, nil)

	deposits, err := d.svc.ListDeposits(ctx, existing.TransactionID, true)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.True(t, deposits[0].IsConfirmed())
}

func TestDepositService_ListDeposits_EscrowNotFound(t *testing.T) {
	d := setupDepositService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.escrowRepo.EXPECT().GetByTransactionID(ctx, "ESC-missing").Return(nil, nil)

	deposits, err := d.svc.ListDeposits(ctx, "ESC-missing", false)
	assert.Nil(t, deposits)
	assertAppError(t, err, "ESC_001")
}
