package domain

import "time"

type MediaType string

const (
	MediaTypeIDCard MediaType = "id_card"
	MediaTypeSelfie MediaType = "selfie"
	MediaTypeAvatar MediaType = "avatar"
)

func (t MediaType) IsKYCDocument() bool {
	return t == MediaTypeIDCard || t == MediaTypeSelfie
}

// MediaFile records one stored blob. At most one record per (owner, type) is active.
type MediaFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OwnerUserID  uint      `gorm:"not null;index" json:"owner_user_id"`
	Type         MediaType `gorm:"type:varchar(20);not null" json:"type"`
	FilePath     string    `gorm:"type:text;uniqueIndex;not null" json:"file_path"`
	MimeType     string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	Checksum     string    `gorm:"type:varchar(64);not null" json:"checksum"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`
	KYCAttemptID *uint     `gorm:"column:kyc_attempt_id;index" json:"kyc_attempt_id,omitempty"`

	URL string `gorm:"-" json:"url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
