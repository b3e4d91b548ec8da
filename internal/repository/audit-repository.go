package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(entry *domain.AuditLog) error
	ListByEntity(entity string, entityID uint, limit int) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (a *auditRepository) Create(entry *domain.AuditLog) error {
	return a.db.Create(entry).Error
}

func (a *auditRepository) ListByEntity(entity string, entityID uint, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	q := a.db.Where("entity = ? AND entity_id = ?", entity, entityID).Order("id DESC")
	if err := paginate(q, limit, 0).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
