package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditHandleMessage(t *testing.T) {
	e := newEnv(t)
	svc := NewAuditService(e.deps)
	admin := e.admin(t)
	ctx := context.Background()

	payload, err := json.Marshal(Event{
		Type:       EventPayoutApproved,
		ActorID:    actorRef(admin.UserID),
		Entity:     "wallet_transaction",
		EntityID:   12,
		Note:       " manual ",
		OccurredAt: e.clock.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.HandleMessage(ctx, []byte(EventPayoutApproved), payload))

	// type falls back to the message key
	require.NoError(t, svc.HandleMessage(ctx, []byte(EventPayoutPaid), []byte(`{"entity":"wallet_transaction","entity_id":12}`)))

	err = svc.HandleMessage(ctx, nil, []byte("{not json"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	logs, err := svc.List(ctx, admin, "wallet_transaction", 12, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, EventPayoutPaid, logs[0].Action)
	assert.Equal(t, EventPayoutApproved, logs[1].Action)
	assert.Equal(t, "manual", *logs[1].Note)
	assert.Equal(t, admin.UserID, *logs[1].ActorID)

	_, err = svc.List(ctx, Identity{UserID: 3, Role: domain.RoleUser}, "wallet_transaction", 12, 10)
	assert.ErrorIs(t, err, domain.ErrPermission)
}
