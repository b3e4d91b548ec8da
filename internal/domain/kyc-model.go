package domain

import (
	"strings"
	"time"
)

// KYCAttempt is one submission cycle. Within an attempt the status only moves
// forward: unverified -> pending -> verified | rejected.
type KYCAttempt struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	UserID            uint               `gorm:"not null;index" json:"user_id"`
	Status            VerificationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReasonCodes       *string            `gorm:"type:text" json:"-"`
	ReasonText        *string            `gorm:"type:text" json:"reason_text,omitempty"`
	SubmittedAt       *time.Time         `json:"submitted_at,omitempty"`
	DecidedAt         *time.Time         `json:"decided_at,omitempty"`
	AllowResubmission bool               `gorm:"not null" json:"allow_resubmission"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KYCAttempt) TableName() string {
	return "kyc_attempts"
}

func (a *KYCAttempt) Codes() []string {
	return SplitReasonCodes(a.ReasonCodes)
}

// JoinReasonCodes stores reason codes as a comma separated column. Empty input maps to NULL.
func JoinReasonCodes(codes []string) *string {
	cleaned := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	joined := strings.Join(cleaned, ",")
	return &joined
}

func SplitReasonCodes(s *string) []string {
	if s == nil || *s == "" {
		return []string{}
	}
	return strings.Split(*s, ",")
}
