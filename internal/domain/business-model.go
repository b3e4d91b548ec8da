package domain

import "time"

type Business struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	ContactPerson    *string   `gorm:"type:varchar(255)" json:"contact_person,omitempty"`
	PhoneNumber      *string   `gorm:"type:varchar(32)" json:"phone_number,omitempty"`
	Address          *string   `gorm:"type:text" json:"address,omitempty"`
	Active           bool      `gorm:"not null" json:"active"`
	CreatedByAdminID *uint     `json:"created_by_admin_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
