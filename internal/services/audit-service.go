package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"go.uber.org/zap"
)

// AuditService persists consumed domain events and serves them to admins.
type AuditService interface {
	HandleMessage(ctx context.Context, key, value []byte) error
	Record(ctx context.Context, e Event) error
	List(ctx context.Context, actor Identity, entity string, entityID uint, limit int) ([]domain.AuditLog, error)
}

type auditService struct {
	base
}

func NewAuditService(d Deps) AuditService {
	return &auditService{base: newBase(d, "audit")}
}

func (s *auditService) HandleMessage(ctx context.Context, key, value []byte) error {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		s.log.Warn("drop malformed event", zap.ByteString("key", key), zap.Error(err))
		return fmt.Errorf("%w: decode event: %v", domain.ErrValidation, err)
	}
	if e.Type == "" {
		e.Type = string(key)
	}
	return s.Record(ctx, e)
}

func (s *auditService) Record(ctx context.Context, e Event) error {
	if e.Type == "" || e.Entity == "" {
		return domain.Validationf("event type and entity are required")
	}
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = s.clock.Now()
	}

	entry := &domain.AuditLog{
		ActorID:    e.ActorID,
		Action:     e.Type,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		OccurredAt: occurred,
	}
	if note := strings.TrimSpace(e.Note); note != "" {
		entry.Note = &note
	}
	return s.store.Repos(ctx).Audit.Create(entry)
}

func (s *auditService) List(ctx context.Context, actor Identity, entity string, entityID uint, limit int) ([]domain.AuditLog, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return nil, domain.Validationf("entity is required")
	}
	return s.store.Repos(ctx).Audit.ListByEntity(entity, entityID, limit)
}
