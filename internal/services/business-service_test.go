package services

import (
	"context"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessCRUD(t *testing.T) {
	e := newEnv(t)
	svc := NewBusinessService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, dto.BusinessRequest{Name: strp("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	b, err := svc.Create(ctx, admin, dto.BusinessRequest{
		Name:        strp("Snapp Box"),
		PhoneNumber: strp("021 8888 0000"),
	})
	require.NoError(t, err)
	assert.True(t, b.Active)
	assert.Equal(t, "+982188880000", *b.PhoneNumber)
	require.NotNil(t, b.CreatedByAdminID)
	assert.Equal(t, admin.UserID, *b.CreatedByAdminID)

	inactive := false
	updated, err := svc.Update(ctx, admin, b.ID, dto.BusinessRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, "Snapp Box", updated.Name)

	active, err := svc.List(ctx, admin, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, admin, false, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = svc.Get(ctx, admin, 999)
	assert.ErrorIs(t, err, domain.ErrBusinessNotFound)

	_, err = svc.Create(ctx, Identity{UserID: 9, Role: domain.RoleUser}, dto.BusinessRequest{Name: strp("x")})
	assert.ErrorIs(t, err, domain.ErrPermission)
}
