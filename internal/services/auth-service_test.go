package services

import (
	"context"
	"testing"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginCreatesUserOnce(t *testing.T) {
	e := newEnv(t)
	sms := &fakeSMS{}
	otp := NewOTPService(e.deps, sms, nil)
	users := NewUserService(e.deps, e.media)
	auth := helper.SetupAuth("test-secret", time.Hour)
	svc := NewAuthService(e.deps, otp, users, auth)
	ctx := context.Background()

	require.NoError(t, svc.RequestOTP(ctx, "09121112233"))
	resp, err := svc.Login(ctx, "0912 111 2233", sms.codes["+989121112233"])
	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
	assert.Equal(t, "+989121112233", resp.User.PhoneNumber)
	assert.Equal(t, "unverified", resp.User.VerificationStatus)

	claims, err := auth.VerifyToken("Bearer " + resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	require.NoError(t, svc.RequestOTP(ctx, "+989121112233"))
	again, err := svc.Login(ctx, "+989121112233", sms.codes["+989121112233"])
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, resp.User.ID, again.User.ID)

	assert.Contains(t, e.producer.keys, EventUserRegistered)
}

func TestLoginRejectsBadCode(t *testing.T) {
	e := newEnv(t)
	otp := NewOTPService(e.deps, &fakeSMS{}, nil)
	svc := NewAuthService(e.deps, otp, NewUserService(e.deps, e.media), helper.SetupAuth("s", time.Hour))

	_, err := svc.Login(context.Background(), "09121112233", "000000")
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = e.store.Repos(context.Background()).Users.FindByPhone("+989121112233")
	assert.ErrorIs(t, err, domain.ErrNotFound, "no account without a valid code")
}
