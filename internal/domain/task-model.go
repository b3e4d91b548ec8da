package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusIssued     TaskStatus = "issued"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusApproved   TaskStatus = "approved"
	TaskStatusCanceled   TaskStatus = "canceled"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusRejected   TaskStatus = "rejected"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusIssued, TaskStatusInProgress, TaskStatusDone, TaskStatusApproved,
		TaskStatusCanceled, TaskStatusFailed, TaskStatusRejected:
		return true
	}
	return false
}

type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusDone       StepStatus = "done"
	StepStatusFailed     StepStatus = "failed"
	StepStatusCanceled   StepStatus = "canceled"
)

func (s StepStatus) Valid() bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusDone, StepStatusFailed, StepStatusCanceled:
		return true
	}
	return false
}

type Task struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Title            string          `gorm:"type:varchar(255);not null" json:"title"`
	Description      *string         `gorm:"type:text" json:"description,omitempty"`
	BusinessID       uint            `gorm:"not null;index" json:"business_id"`
	AssignedUserID   *uint           `gorm:"index" json:"assigned_user_id,omitempty"`
	CreatedByAdminID *uint           `json:"created_by_admin_id,omitempty"`
	Price            decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	EstimatedTime    int             `gorm:"not null" json:"estimated_time"` // minutes
	StartDatetime    time.Time       `gorm:"not null" json:"start_datetime"`
	Address          *string         `gorm:"type:text" json:"address,omitempty"`
	Status           TaskStatus      `gorm:"type:varchar(20);not null;index" json:"status"`

	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	DoneAt     *time.Time `json:"done_at,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	Steps []TaskStep `gorm:"foreignKey:TaskID" json:"steps"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IncompleteStepIDs lists steps that still block completion.
func (t *Task) IncompleteStepIDs() []uint {
	var ids []uint
	for _, s := range t.Steps {
		if s.Status != StepStatusDone {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

type TaskStep struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      uint       `gorm:"not null;index" json:"task_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	Address     string     `gorm:"type:text;not null" json:"address"`
	Order       int        `gorm:"column:step_order;not null" json:"order"`
	Status      StepStatus `gorm:"type:varchar(20);not null" json:"status"`
	DoneAt      *time.Time `json:"done_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
