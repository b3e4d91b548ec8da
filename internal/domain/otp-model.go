package domain

import "time"

type OTP struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber string    `gorm:"type:varchar(32);not null;index" json:"phone_number"`
	Code        string    `gorm:"column:otp_code;type:varchar(6);not null" json:"otp_code"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	Used        bool      `gorm:"not null" json:"used"`
	CreatedAt   time.Time `json:"created_at"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) ExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
