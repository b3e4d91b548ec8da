package domain

import "time"

// AuditLog is written by the event consumer for every published domain event.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    *uint     `gorm:"index" json:"actor_id,omitempty"` // nil for system events
	Action     string    `gorm:"type:varchar(100);not null" json:"action"`
	Entity     string    `gorm:"type:varchar(100);not null;index:idx_audit_entity" json:"entity"`
	EntityID   uint      `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	Note       *string   `gorm:"type:text" json:"note,omitempty"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
