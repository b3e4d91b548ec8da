package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolp(b bool) *bool { return &b }

func strp(s string) *string { return &s }

func TestKYCEndToEnd(t *testing.T) {
	e := newEnv(t)
	svc := NewKYCService(e.deps, e.media)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989121111111", domain.VerificationUnverified)

	up, err := svc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("card.png"))
	require.NoError(t, err)
	assert.Equal(t, "unverified", up.VerificationStatus)
	firstAttempt := up.AttemptID

	up, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeSelfie, image("selfie.png"))
	require.NoError(t, err)
	assert.Equal(t, "pending", up.VerificationStatus)
	assert.Equal(t, firstAttempt, up.AttemptID)

	_, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeSelfie, image("selfie2.png"))
	assert.ErrorIs(t, err, domain.ErrKYCPendingReview)

	pending, err := svc.ListPending(ctx, admin, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, u.ID, pending[0].UserID)
	assert.Equal(t, u.PhoneNumber, pending[0].PhoneNumber)

	summary, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{
		Status:      "rejected",
		ReasonCodes: []string{"blurry_selfie", "id_mismatch"},
		ReasonText:  strp("  please retake  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected", summary.VerificationStatus)
	require.NotNil(t, summary.LastDecision)
	assert.Equal(t, []string{"blurry_selfie", "id_mismatch"}, summary.LastDecision.ReasonCodes)
	assert.Equal(t, "please retake", *summary.LastDecision.ReasonText)

	status, err := svc.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, status.CanUpload)

	up, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeSelfie, image("selfie3.png"))
	require.NoError(t, err)
	assert.NotEqual(t, firstAttempt, up.AttemptID, "resubmission opens a new attempt")
	assert.Equal(t, "pending", up.VerificationStatus)

	summary, err = svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "verified"})
	require.NoError(t, err)
	assert.Equal(t, "verified", summary.VerificationStatus)
	assert.NotNil(t, summary.LockedAt)
	assert.NotNil(t, summary.IDCardURL)
	assert.NotNil(t, summary.SelfieURL)
	assert.EqualValues(t, 2, summary.AttemptsCount)

	_, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("late.png"))
	assert.ErrorIs(t, err, domain.ErrKYCLocked)

	_, err = svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "verified"})
	assert.ErrorIs(t, err, domain.ErrAlreadyVerified)

	history, err := svc.History(ctx, admin, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "verified", history[0].Status)
	assert.Equal(t, "rejected", history[1].Status)
}

func TestKYCApproveRequiresDocuments(t *testing.T) {
	e := newEnv(t)
	svc := NewKYCService(e.deps, e.media)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989121111111", domain.VerificationUnverified)

	_, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "verified"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("card.png"))
	require.NoError(t, err)
	_, err = svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "verified"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestKYCDecisionValidation(t *testing.T) {
	e := newEnv(t)
	svc := NewKYCService(e.deps, e.media)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989121111111", domain.VerificationUnverified)

	_, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "pending"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "maybe"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Decide(ctx, Identity{UserID: u.ID, Role: domain.RoleUser}, u.ID, dto.KYCDecisionRequest{Status: "rejected"})
	assert.ErrorIs(t, err, domain.ErrPermission)

	_, err = svc.Decide(ctx, admin, 4242, dto.KYCDecisionRequest{Status: "rejected"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKYCRejectWithoutResubmission(t *testing.T) {
	e := newEnv(t)
	svc := NewKYCService(e.deps, e.media)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989121111111", domain.VerificationUnverified)

	_, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "rejected", AllowResubmission: boolp(false)})
	require.NoError(t, err)

	status, err := svc.Status(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, status.CanUpload)

	_, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("card.png"))
	assert.ErrorIs(t, err, domain.ErrKYCResubmissionDenied)

	// a reset re-opens uploads
	summary, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "unverified"})
	require.NoError(t, err)
	assert.Equal(t, "unverified", summary.VerificationStatus)
	assert.Nil(t, summary.LastDecision)

	_, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("card.png"))
	assert.NoError(t, err)
}

func TestKYCResetFromVerifiedOpensNewAttempt(t *testing.T) {
	e := newEnv(t)
	svc := NewKYCService(e.deps, e.media)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989121111111", domain.VerificationUnverified)

	_, err := svc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("card.png"))
	require.NoError(t, err)
	_, err = svc.UploadDocument(ctx, u.ID, domain.MediaTypeSelfie, image("selfie.png"))
	require.NoError(t, err)
	verified, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "verified"})
	require.NoError(t, err)

	reset, err := svc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "unverified"})
	require.NoError(t, err)
	assert.Equal(t, "unverified", reset.VerificationStatus)
	assert.Nil(t, reset.LockedAt)
	assert.NotEqual(t, *verified.CurrentAttemptID, *reset.CurrentAttemptID)
	assert.EqualValues(t, 2, reset.AttemptsCount)

	history, err := svc.History(ctx, admin, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "verified", history[1].Status, "decided attempts are never rewritten")
}

func TestKYCUploadRejectsNonDocuments(t *testing.T) {
	e := newEnv(t)
	svc := NewKYCService(e.deps, e.media)
	u := e.user(t, "+989121111111", domain.VerificationUnverified)

	_, err := svc.UploadDocument(context.Background(), u.ID, domain.MediaTypeAvatar, image("a.png"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
