package postgres

import (
	"context"
	"errors"
	"testing"

	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settlementColumnNames() []string {
	return []string{"id", "transaction_id", "total_amount", "fee_amount", "seller_amount", "seller_id",
		"status", "payment_method", "payment_reference", "failure_reason", "initiated_at", "completed_at"}
}

func settlementRow(s *domain.Settlement) *pgxmock.Rows {
	return pgxmock.NewRows(settlementColumnNames()).AddRow(
		s.ID, s.TransactionID, s.TotalAmount, s.FeeAmount, s.SellerAmount, s.SellerID,
		s.Status, s.PaymentMethod, s.PaymentReference, s.FailureReason, s.InitiatedAt, s.CompletedAt,
	)
}

func TestSettlementRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	stl := domain.NewSettlement("ESC-001", 30_000_000, 1_500_000, 28_500_000, "seller-1")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO escrow_settlements").
		WithArgs(
			stl.ID, stl.TransactionID, stl.TotalAmount, stl.FeeAmount, stl.SellerAmount, stl.SellerID,
			stl.Status, stl.PaymentMethod, stl.PaymentReference, stl.FailureReason, stl.InitiatedAt, stl.CompletedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, stl)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	stl := domain.NewSettlement("ESC-001", 30_000_000, 1_500_000, 28_500_000, "seller-1")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO escrow_settlements").
		WithArgs(
			stl.ID, stl.TransactionID, stl.TotalAmount, stl.FeeAmount, stl.SellerAmount, stl.SellerID,
			stl.Status, stl.PaymentMethod, stl.PaymentReference, stl.FailureReason, stl.InitiatedAt, stl.CompletedAt,
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, stl)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ESC_004", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_GetByTransactionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	stl := domain.NewSettlement("ESC-001", 30_000_000, 1_500_000, 28_500_000, "seller-1")

	mock.ExpectQuery("SELECT .+ FROM escrow_settlements WHERE transaction_id").
		WithArgs(stl.TransactionID).
		WillReturnRows(settlementRow(stl))

	result, err := repo.GetByTransactionID(context.Background(), stl.TransactionID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, stl.FeeAmount, result.FeeAmount)
	assert.Equal(t, stl.SellerAmount, result.SellerAmount)
	assert.Equal(t, domain.SettlementPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_GetByTransactionID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM escrow_settlements WHERE transaction_id").
		WithArgs("ESC-missing").
		WillReturnRows(pgxmock.NewRows(settlementColumnNames()))

	result, err := repo.GetByTransactionID(context.Background(), "ESC-missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_ExistsByTransactionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ESC-001").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	exists, err := repo.ExistsByTransactionID(context.Background(), dbTx, "ESC-001")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	stl := domain.NewSettlement("ESC-001", 30_000_000, 1_500_000, 28_500_000, "seller-1")
	require.NoError(t, stl.Complete("BANK_TRANSFER", "PAY-123"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE escrow_settlements").
		WithArgs(stl.ID, stl.Status, stl.PaymentMethod, stl.PaymentReference, stl.FailureReason, stl.CompletedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Update(context.Background(), dbTx, stl)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
