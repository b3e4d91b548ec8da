package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPIssueAndVerifySingleUse(t *testing.T) {
	e := newEnv(t)
	sms := &fakeSMS{}
	svc := NewOTPService(e.deps, sms, nil)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "09123456789")
	require.NoError(t, err)
	assert.Equal(t, "+989123456789", otp.PhoneNumber)
	assert.Len(t, otp.Code, OTPLength)
	assert.Equal(t, otp.Code, sms.codes["+989123456789"])
	assert.Equal(t, e.clock.Now().Add(OTPTTL), otp.ExpiresAt)

	ok, err := svc.Verify(ctx, "+98 912 345 6789", otp.Code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "09123456789", otp.Code)
	require.NoError(t, err)
	assert.False(t, ok, "a code can be used once")
}

func TestOTPVerifyRejectsExpiredAndWrongCodes(t *testing.T) {
	e := newEnv(t)
	svc := NewOTPService(e.deps, &fakeSMS{}, nil)
	ctx := context.Background()

	otp, err := svc.Issue(ctx, "09123456789")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "09123456789", "not-it")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, "09000000000", otp.Code)
	require.NoError(t, err)
	assert.False(t, ok, "code is bound to its phone")

	e.clock.Advance(OTPTTL)
	ok, err = svc.Verify(ctx, "09123456789", otp.Code)
	require.NoError(t, err)
	assert.False(t, ok, "expiry is inclusive")
}

func TestOTPDeliveryFailureIsNotReturned(t *testing.T) {
	e := newEnv(t)
	svc := NewOTPService(e.deps, &fakeSMS{err: errors.New("provider down")}, nil)

	otp, err := svc.Issue(context.Background(), "09123456789")
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), "09123456789", otp.Code)
	require.NoError(t, err)
	assert.True(t, ok, "the stored code still works")
}

func TestOTPIssueRateLimited(t *testing.T) {
	e := newEnv(t)
	svc := NewOTPService(e.deps, &fakeSMS{}, rate.NewMemory(2, 10*time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Issue(ctx, "09123456789")
		require.NoError(t, err)
	}

	_, err := svc.Issue(ctx, "+989123456789")
	var rl *domain.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Positive(t, rl.RetryAfter)

	_, err = svc.Issue(ctx, "09350000000")
	assert.NoError(t, err, "limits are per phone")

	e.clock.Advance(10 * time.Minute)
	_, err = svc.Issue(ctx, "09123456789")
	assert.NoError(t, err)
}

func TestOTPPeek(t *testing.T) {
	e := newEnv(t)
	svc := NewOTPService(e.deps, &fakeSMS{}, nil)
	ctx := context.Background()
	admin := e.admin(t)

	_, err := svc.Issue(ctx, "09123456789")
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	latest, err := svc.Issue(ctx, "09123456789")
	require.NoError(t, err)

	got, err := svc.Peek(ctx, admin, "09123456789")
	require.NoError(t, err)
	assert.Equal(t, latest.Code, got.Code)

	_, err = svc.Peek(ctx, Identity{UserID: 99, Role: domain.RoleUser}, "09123456789")
	assert.ErrorIs(t, err, domain.ErrPermission)

	e.clock.Advance(OTPTTL)
	_, err = svc.Peek(ctx, admin, "09123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
