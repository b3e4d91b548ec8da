package services

import (
	"encoding/json"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"go.uber.org/zap"
)

const (
	EventUserRegistered  = "user.registered"
	EventRoleAssigned    = "user.role_assigned"
	EventProfileUpdated  = "user.profile_updated"
	EventOTPIssued       = "otp.issued"
	EventKYCUploaded     = "kyc.document_uploaded"
	EventKYCSubmitted    = "kyc.submitted"
	EventKYCDecided      = "kyc.decided"
	EventTaskCreated     = "task.created"
	EventTaskUpdated     = "task.updated"
	EventTaskAccepted    = "task.accepted"
	EventTaskCompleted   = "task.completed"
	EventTaskApproved    = "task.approved"
	EventPayoutRequested = "payout.requested"
	EventPayoutApproved  = "payout.approved"
	EventPayoutPaid      = "payout.paid"
	EventPayoutDenied    = "payout.denied"
	EventWalletAdjusted  = "wallet.adjusted"
	EventBusinessSaved   = "business.saved"
)

// Event is the payload published to the broker and persisted as an audit log.
type Event struct {
	Type       string    `json:"type"`
	ActorID    *uint     `json:"actor_id,omitempty"`
	Entity     string    `json:"entity"`
	EntityID   uint      `json:"entity_id"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type eventPublisher struct {
	producer interfaces.ProducerHandler
	log      *zap.Logger
}

// publish is best effort: broker failures are logged, never returned.
func (p eventPublisher) publish(e Event) {
	if p.producer == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		p.log.Warn("encode event", zap.String("type", e.Type), zap.Error(err))
		return
	}
	if err := p.producer.PublishMessage([]byte(e.Type), payload); err != nil {
		p.log.Warn("publish event",
			zap.String("type", e.Type),
			zap.String("entity", e.Entity),
			zap.Uint("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}

func actorRef(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
