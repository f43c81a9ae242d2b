package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeposit_ConfirmOnce(t *testing.T) {
	d := NewDeposit("ESC-tx1", 30000000, "BANK_TRANSFER", "dep-ref-1")
	assert.False(t, d.IsConfirmed())

	require.NoError(t, d.Confirm())
	assert.True(t, d.IsConfirmed())

	assert.Error(t, d.Confirm(), "double confirmation must fail")
}

func TestSettlement_Lifecycle(t *testing.T) {
	s := NewSettlement("ESC-tx1", 30000000, 1500000, 28500000, "seller-1")
	assert.Equal(t, SettlementPending, s.Status)

	require.NoError(t, s.Complete("BANK_TRANSFER", "ref-1"))
	assert.Equal(t, SettlementCompleted, s.Status)
	require.NotNil(t, s.PaymentMethod)
	assert.Equal(t, "BANK_TRANSFER", *s.PaymentMethod)
	assert.NotNil(t, s.CompletedAt)

	assert.Error(t, s.Complete("BANK_TRANSFER", "ref-2"), "completing twice must fail")
	assert.Error(t, s.MarkFailed("late failure"), "completed settlement cannot fail")
}

func TestSettlement_MarkFailed(t *testing.T) {
	s := NewSettlement("ESC-tx1", 30000000, 1500000, 28500000, "seller-1")

	require.NoError(t, s.MarkFailed("gateway timeout"))
	assert.Equal(t, SettlementFailed, s.Status)
	require.NotNil(t, s.FailureReason)
	assert.Equal(t, "gateway timeout", *s.FailureReason)
	assert.Nil(t, s.CompletedAt)
}

func TestDispute_Lifecycle(t *testing.T) {
	d := NewDispute("ESC-tx1", "vehicle damaged on delivery", "buyer-1", StatusDelivered)
	assert.Equal(t, DisputeOpen, d.Status)
	assert.Equal(t, StatusDelivered, d.PreviousStatus)

	require.NoError(t, d.StartReview())
	assert.Equal(t, DisputeUnderReview, d.Status)

	require.NoError(t, d.Resolve("refund buyer in full", "admin-1"))
	assert.True(t, d.IsResolved())
	require.NotNil(t, d.Resolution)
	assert.Equal(t, "refund buyer in full", *d.Resolution)

	assert.Error(t, d.Resolve("again", "admin-1"), "resolving twice must fail")
	assert.Error(t, d.StartReview(), "review cannot start on a resolved dispute")
}

func TestAccount_IsAdmin(t *testing.T) {
	admin := Account{Role: RoleAdmin}
	buyer := Account{Role: RoleBuyer}
	assert.True(t, admin.IsAdmin())
	assert.False(t, buyer.IsAdmin())
}
