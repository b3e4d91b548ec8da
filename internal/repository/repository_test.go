package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateByPhone(t *testing.T) {
	r := repository.NewRepositories(testutil.NewDB(t))

	first, created, err := r.Users.FindOrCreateByPhone("+989121234567")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.VerificationUnverified, first.VerificationStatus)

	again, created, err := r.Users.FindOrCreateByPhone("+989121234567")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	_, err = r.Users.FindByID(first.ID + 100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWalletGetOrCreate(t *testing.T) {
	r := repository.NewRepositories(testutil.NewDB(t))

	a, err := r.Wallets.GetOrCreate(7)
	require.NoError(t, err)
	b, err := r.Wallets.GetOrCreate(7)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.Balance.IsZero())
}

func TestOneConfirmedEarningPerTask(t *testing.T) {
	r := repository.NewRepositories(testutil.NewDB(t))
	w, err := r.Wallets.GetOrCreate(1)
	require.NoError(t, err)

	taskID := uint(42)
	earning := func(status domain.TransactionStatus) *domain.WalletTransaction {
		return &domain.WalletTransaction{
			WalletID:      w.ID,
			Type:          domain.TransactionEarning,
			Amount:        decimal.NewFromInt(100),
			Status:        status,
			RelatedTaskID: &taskID,
		}
	}

	require.NoError(t, r.Wallets.CreateTransaction(earning(domain.TransactionConfirmed)))
	assert.ErrorIs(t, r.Wallets.CreateTransaction(earning(domain.TransactionConfirmed)), domain.ErrAlreadyProcessed)
	// the index only covers confirmed earnings
	require.NoError(t, r.Wallets.CreateTransaction(earning(domain.TransactionPending)))

	ok, err := r.Wallets.HasConfirmedEarning(w.ID, taskID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransitionStatusIsConditional(t *testing.T) {
	r := repository.NewRepositories(testutil.NewDB(t))
	w, err := r.Wallets.GetOrCreate(1)
	require.NoError(t, err)

	txn := &domain.WalletTransaction{
		WalletID: w.ID,
		Type:     domain.TransactionPayout,
		Amount:   decimal.NewFromInt(10),
		Status:   domain.TransactionRequested,
	}
	require.NoError(t, r.Wallets.CreateTransaction(txn))

	from := []domain.TransactionStatus{domain.TransactionRequested}
	ok, err := r.Wallets.TransitionStatus(txn.ID, from, domain.TransactionSentToBank)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Wallets.TransitionStatus(txn.ID, from, domain.TransactionSentToBank)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkAcceptedOnlyOnce(t *testing.T) {
	r := repository.NewRepositories(testutil.NewDB(t))

	biz := &domain.Business{Name: "Acme", Active: true}
	require.NoError(t, r.Businesses.Create(biz))
	task := &domain.Task{
		Title:         "Deliver",
		BusinessID:    biz.ID,
		Price:         decimal.NewFromInt(50),
		EstimatedTime: 30,
		StartDatetime: testutil.Epoch,
		Status:        domain.TaskStatusIssued,
	}
	require.NoError(t, r.Tasks.Create(task))

	ok, err := r.Tasks.MarkAccepted(task.ID, 1, testutil.Epoch)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Tasks.MarkAccepted(task.ID, 2, testutil.Epoch)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.Tasks.FindByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)
	require.NotNil(t, got.AssignedUserID)
	assert.Equal(t, uint(1), *got.AssignedUserID)

	// done requires the assignee
	ok, err = r.Tasks.MarkDone(task.ID, 2, testutil.Epoch)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPMarkUsedOnce(t *testing.T) {
	r := repository.NewRepositories(testutil.NewDB(t))

	otp := &domain.OTP{PhoneNumber: "+989121234567", Code: "123456", ExpiresAt: testutil.Epoch.Add(2 * time.Minute)}
	require.NoError(t, r.OTPs.Create(otp))

	ok, err := r.OTPs.MarkUsed(otp.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.OTPs.MarkUsed(otp.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	left, err := r.OTPs.FindUnused(otp.PhoneNumber, "")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestAtomicRollsBack(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Atomic(ctx, func(r *repository.Repositories) error {
		if _, _, err := r.Users.FindOrCreateByPhone("+989120000000"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Repos(ctx).Users.FindByPhone("+989120000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
