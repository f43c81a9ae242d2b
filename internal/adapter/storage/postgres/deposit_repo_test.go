package postgres

import (
	"context"
	"testing"

	"vehicle-escrow-service/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depositColumnNames() []string {
	return []string{"id", "transaction_id", "amount", "method", "reference", "deposited_at", "confirmed_at"}
}

func TestDepositRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	dep := domain.NewDeposit("ESC-001", 30_000_000, "BANK_TRANSFER", "TXN-789")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO escrow_deposits").
		WithArgs(dep.ID, dep.TransactionID, dep.Amount, dep.Method, dep.Reference, dep.DepositedAt, dep.ConfirmedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, dep)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepo_ListConfirmedByTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewDepositRepo(mock)
	dep := domain.NewDeposit("ESC-001", 30_000_000, "BANK_TRANSFER", "TXN-789")
	require.NoError(t, dep.Confirm())

	mock.ExpectQuery("SELECT .+ FROM escrow_deposits WHERE transaction_id .+ AND confirmed_at IS NOT NULL").
		WithArgs(dep.TransactionID).
		WillReturnRows(pgxmock.NewRows(depositColumnNames()).AddRow(
			dep.ID, dep.TransactionID, dep.Amount, dep.Method, dep.Reference, dep.DepositedAt, dep.ConfirmedAt,
		))

	results, err := repo.ListConfirmedByTransaction(context.Background(), dep.TransactionID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsConfirmed())
	assert.NoError(t, mock.ExpectationsWereMet())
}
