package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfileValidatesAndNormalises(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.deps, e.media)
	ctx := context.Background()
	u := e.user(t, "+989121234567", domain.VerificationUnverified)

	profile, err := svc.UpdateProfile(ctx, u.ID, dto.UpdateUserProfile{
		FirstName:   strp("  Sara "),
		Birthdate:   strp("1995-04-12"),
		Sex:         strp("Female"),
		NationalID:  strp("0012345678"),
		ShabaNumber: strp("ir12 0000 0000 0000 0000 0000 01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sara", *profile.FirstName)
	assert.Equal(t, "1995-04-12", *profile.Birthdate)
	assert.Equal(t, "female", *profile.Sex)
	assert.Equal(t, "IR120000000000000000000001", *profile.ShabaNumber)
	assert.Equal(t, domain.RoleUser, profile.Role)

	bad := map[string]dto.UpdateUserProfile{
		"national id": {NationalID: strp("12345")},
		"shaba":       {ShabaNumber: strp("DE12000000000000000000000")},
		"sex":         {Sex: strp("robot")},
		"birthdate":   {Birthdate: strp("12/04/1995")},
	}
	for name, in := range bad {
		_, err := svc.UpdateProfile(ctx, u.ID, in)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}
}

func TestUpdateProfileUniqueness(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.deps, e.media)
	ctx := context.Background()
	a := e.user(t, "+989121234567", domain.VerificationUnverified)
	b := e.user(t, "+989127654321", domain.VerificationUnverified)

	_, err := svc.UpdateProfile(ctx, a.ID, dto.UpdateUserProfile{NationalID: strp("0012345678")})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, b.ID, dto.UpdateUserProfile{NationalID: strp("0012345678")})
	assert.ErrorIs(t, err, domain.ErrDuplicateValue)

	// re-saving your own value is fine
	_, err = svc.UpdateProfile(ctx, a.ID, dto.UpdateUserProfile{NationalID: strp("0012345678")})
	assert.NoError(t, err)
}

func TestIdentityLockedAfterVerification(t *testing.T) {
	e := newEnv(t)
	users := NewUserService(e.deps, e.media)
	kyc := NewKYCService(e.deps, e.media)
	admin := e.admin(t)
	ctx := context.Background()
	u := e.user(t, "+989121234567", domain.VerificationUnverified)

	_, err := users.UpdateProfile(ctx, u.ID, dto.UpdateUserProfile{FirstName: strp("Ali")})
	require.NoError(t, err)
	_, err = kyc.UploadDocument(ctx, u.ID, domain.MediaTypeIDCard, image("c.png"))
	require.NoError(t, err)
	_, err = kyc.UploadDocument(ctx, u.ID, domain.MediaTypeSelfie, image("s.png"))
	require.NoError(t, err)
	_, err = kyc.Decide(ctx, admin, u.ID, dto.KYCDecisionRequest{Status: "verified"})
	require.NoError(t, err)

	_, err = users.UpdateProfile(ctx, u.ID, dto.UpdateUserProfile{FirstName: strp("Reza")})
	assert.ErrorIs(t, err, domain.ErrIdentityLocked)

	// unchanged identity values and contact fields still go through
	profile, err := users.UpdateProfile(ctx, u.ID, dto.UpdateUserProfile{FirstName: strp("Ali"), Address: strp("Tehran")})
	require.NoError(t, err)
	assert.Equal(t, "Tehran", *profile.Address)
	assert.True(t, profile.KYCLocked)
}

func TestUploadAvatarSetsProfileURL(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.deps, e.media)
	ctx := context.Background()
	u := e.user(t, "+989121234567", domain.VerificationUnverified)

	media, err := svc.UploadAvatar(ctx, u.ID, image("me.png"))
	require.NoError(t, err)
	assert.Equal(t, "avatar", media.Type)

	profile, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.AvatarURL)
	assert.Equal(t, media.URL, *profile.AvatarURL)
}

func TestRolesAndPermissions(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.deps, e.media)
	ctx := context.Background()
	admin := e.admin(t)
	u := e.user(t, "+989121234567", domain.VerificationUnverified)

	assert.True(t, admin.Can(domain.PermissionReviewKYC))

	err := svc.AssignRole(ctx, admin, u.ID, domain.RoleOwner)
	assert.ErrorIs(t, err, domain.ErrPermission, "only owners mint owners")

	require.NoError(t, svc.AssignRole(ctx, admin, u.ID, "Admin"))
	id, err := svc.ResolveIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, id.Role)
	assert.ElementsMatch(t, domain.DefaultPermissions, id.Permissions)

	err = svc.AssignRole(ctx, admin, u.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateRole(ctx, admin, "dispatcher")
	assert.ErrorIs(t, err, domain.ErrPermission)

	owner, err := svc.BootstrapOwner(ctx, "09120000000")
	require.NoError(t, err)
	ownerID, err := svc.ResolveIdentity(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, ownerID.Can("anything"))

	role, err := svc.CreateRole(ctx, ownerID, " Dispatcher ")
	require.NoError(t, err)
	assert.Equal(t, "dispatcher", role.Name)

	require.NoError(t, svc.GrantPermission(ctx, ownerID, "dispatcher", domain.PermissionCreateTask))
	require.NoError(t, svc.GrantPermission(ctx, ownerID, "dispatcher", domain.PermissionCreateTask), "granting twice is a no-op")

	require.NoError(t, svc.AssignRole(ctx, ownerID, u.ID, "dispatcher"))
	id, err = svc.ResolveIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.PermissionCreateTask}, id.Permissions)
	assert.False(t, id.IsAdmin())
}

func TestBootstrapOwnerIsIdempotent(t *testing.T) {
	e := newEnv(t)
	svc := NewUserService(e.deps, e.media)
	ctx := context.Background()

	first, err := svc.BootstrapOwner(ctx, "09120000000")
	require.NoError(t, err)
	second, err := svc.BootstrapOwner(ctx, "+989120000000")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.BootstrapOwner(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
