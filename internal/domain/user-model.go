package domain

import "time"

type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationVerified   VerificationStatus = "verified"
	VerificationRejected   VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PhoneNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone_number"`

	FirstName   *string    `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName    *string    `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	Birthdate   *time.Time `json:"birthdate,omitempty"`
	Sex         *string    `gorm:"type:varchar(10)" json:"sex,omitempty"`
	NationalID  *string    `gorm:"column:national_id;type:varchar(20);uniqueIndex" json:"national_id,omitempty"`
	ShabaNumber *string    `gorm:"type:varchar(34);uniqueIndex" json:"shaba_number,omitempty"`
	Address     *string    `gorm:"type:text" json:"address,omitempty"`

	AvatarMediaID *uint `json:"avatar_media_id,omitempty"`
	RoleID        *uint `gorm:"index" json:"role_id,omitempty"`

	// --- KYC snapshot ---
	VerificationStatus  VerificationStatus `gorm:"type:varchar(20);not null;index" json:"verification_status"`
	CurrentKYCAttemptID *uint              `gorm:"column:current_kyc_attempt_id" json:"current_kyc_attempt_id,omitempty"`
	KYCLockedAt         *time.Time         `gorm:"column:kyc_locked_at" json:"kyc_locked_at,omitempty"`
	KYCLastReasonCodes  *string            `gorm:"column:kyc_last_reason_codes;type:text" json:"-"`
	KYCLastReasonText   *string            `gorm:"column:kyc_last_reason_text;type:text" json:"kyc_last_reason_text,omitempty"`
	KYCLastDecidedAt    *time.Time         `gorm:"column:kyc_last_decided_at" json:"kyc_last_decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationVerified
}

// IdentityLocked reports whether identity fields are frozen by a verified KYC decision.
func (u *User) IdentityLocked() bool {
	return u.KYCLockedAt != nil
}
