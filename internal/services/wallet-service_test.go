package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalanceOfCountsConfirmedLikeOnly(t *testing.T) {
	txns := []domain.WalletTransaction{
		{Type: domain.TransactionEarning, Amount: dec("100"), Status: domain.TransactionConfirmed},
		{Type: domain.TransactionAdjustment, Amount: dec("5.50"), Status: domain.TransactionConfirmed},
		{Type: domain.TransactionPayout, Amount: dec("30"), Status: domain.TransactionSentToBank},
		{Type: domain.TransactionPayout, Amount: dec("10"), Status: domain.TransactionPaid},
		{Type: domain.TransactionPayout, Amount: dec("40"), Status: domain.TransactionRequested},
		{Type: domain.TransactionPayout, Amount: dec("20"), Status: domain.TransactionDenied},
		{Type: domain.TransactionEarning, Amount: dec("999"), Status: domain.TransactionPending},
	}
	assert.Equal(t, "65.5", BalanceOf(txns).String())

	// order does not matter
	reversed := make([]domain.WalletTransaction, len(txns))
	for i := range txns {
		reversed[len(txns)-1-i] = txns[i]
	}
	assert.True(t, BalanceOf(txns).Equal(BalanceOf(reversed)))
	assert.True(t, BalanceOf(nil).IsZero())
}

// fund books a confirmed adjustment so the user has a balance to pay out.
func (e *env) fund(t *testing.T, admin Identity, userID uint, amount string) {
	t.Helper()
	_, err := NewWalletService(e.deps).Adjust(context.Background(), admin, userID, dto.AdjustmentRequest{Amount: dec(amount)})
	require.NoError(t, err)
}

// payout inserts a payout row directly, bypassing request-time checks, to
// model requests accepted before the current rules.
func (e *env) payout(t *testing.T, userID uint, amount string) *domain.WalletTransaction {
	t.Helper()
	var txn *domain.WalletTransaction
	require.NoError(t, e.store.Atomic(context.Background(), func(r *repository.Repositories) error {
		w, err := r.Wallets.GetOrCreate(userID)
		if err != nil {
			return err
		}
		txn = &domain.WalletTransaction{WalletID: w.ID, Type: domain.TransactionPayout, Amount: dec(amount), Status: domain.TransactionRequested}
		return r.Wallets.CreateTransaction(txn)
	}))
	return txn
}

func TestPayoutReservationFirstComeFirstServed(t *testing.T) {
	e := newEnv(t)
	svc := NewWalletService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989129999999", domain.VerificationVerified)

	e.fund(t, admin, u.ID, "100")
	first := e.payout(t, u.ID, "60")
	second := e.payout(t, u.ID, "60")

	// the later request cannot jump the queue
	_, err := svc.ApprovePayout(ctx, admin, second.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	approved, err := svc.ApprovePayout(ctx, admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionSentToBank, approved.Status)

	_, err = svc.ApprovePayout(ctx, admin, second.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	w, err := svc.GetWallet(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "40", w.Balance.String())

	_, err = svc.ApprovePayout(ctx, admin, first.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "already sent")
}

func TestRequestPayoutRespectsOutstanding(t *testing.T) {
	e := newEnv(t)
	svc := NewWalletService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989129999999", domain.VerificationVerified)

	_, err := svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	e.fund(t, admin, u.ID, "100")

	for _, bad := range []string{"0", "-5", "1.005"} {
		_, err = svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec(bad)})
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
	}

	p, err := svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("60")})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionRequested, p.Status)
	assert.Equal(t, defaultPayoutDescription, *p.Description)

	w, err := svc.GetWallet(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", w.Balance.String(), "requests do not move the balance")
	assert.Equal(t, "60", w.OutstandingPayouts.String())
	assert.Equal(t, "40", w.AvailableBalance.String())

	_, err = svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("60")})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("40")})
	assert.NoError(t, err)
}

func TestPayoutLifecycle(t *testing.T) {
	e := newEnv(t)
	svc := NewWalletService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989129999999", domain.VerificationVerified)
	e.fund(t, admin, u.ID, "100")

	p, err := svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("70")})
	require.NoError(t, err)

	_, err = svc.CompletePayout(ctx, admin, p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "must be sent to bank first")

	_, err = svc.ApprovePayout(ctx, admin, p.ID)
	require.NoError(t, err)

	paid, err := svc.CompletePayout(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPaid, paid.Status)

	_, err = svc.DenyPayout(ctx, admin, p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "paid is final")

	w, err := svc.GetWallet(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "30", w.Balance.String())
}

func TestDenyRestoresBalance(t *testing.T) {
	e := newEnv(t)
	svc := NewWalletService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989129999999", domain.VerificationVerified)
	e.fund(t, admin, u.ID, "100")

	p, err := svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("70")})
	require.NoError(t, err)
	_, err = svc.ApprovePayout(ctx, admin, p.ID)
	require.NoError(t, err)

	w, err := svc.GetWallet(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "30", w.Balance.String())

	denied, err := svc.DenyPayout(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionDenied, denied.Status)

	w, err = svc.GetWallet(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", w.Balance.String())

	summary, err := svc.AdminSummary(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.ActiveCashouts)
	assert.True(t, summary.ActiveTotal.IsZero())
}

func TestWalletAdminGuards(t *testing.T) {
	e := newEnv(t)
	svc := NewWalletService(e.deps)
	u := e.user(t, "+989129999999", domain.VerificationVerified)
	worker := Identity{UserID: u.ID, Role: domain.RoleUser}
	ctx := context.Background()

	_, err := svc.Adjust(ctx, worker, u.ID, dto.AdjustmentRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrPermission)
	_, err = svc.ListPayouts(ctx, worker, "", 10, 0)
	assert.ErrorIs(t, err, domain.ErrPermission)

	// admins without manage_wallets are refused too
	_, err = svc.Adjust(ctx, Identity{UserID: u.ID, Role: domain.RoleAdmin}, u.ID, dto.AdjustmentRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrPermission)
}

func TestListPayoutsDefaultsToActive(t *testing.T) {
	e := newEnv(t)
	svc := NewWalletService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989129999999", domain.VerificationVerified)
	e.fund(t, admin, u.ID, "100")

	a, err := svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("10")})
	require.NoError(t, err)
	b, err := svc.RequestPayout(ctx, u.ID, dto.PayoutRequest{Amount: dec("20")})
	require.NoError(t, err)
	_, err = svc.DenyPayout(ctx, admin, b.ID)
	require.NoError(t, err)

	active, err := svc.ListPayouts(ctx, admin, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	denied, err := svc.ListPayouts(ctx, admin, "denied", 10, 0)
	require.NoError(t, err)
	require.Len(t, denied, 1)
	assert.Equal(t, b.ID, denied[0].ID)
}
