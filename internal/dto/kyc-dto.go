package dto

type KYCDecisionRequest struct {
	Status            string   `json:"status"` // verified | rejected | unverified
	ReasonCodes       []string `json:"reason_codes,omitempty"`
	ReasonText        *string  `json:"reason_text,omitempty"`
	AllowResubmission *bool    `json:"allow_resubmission,omitempty"`
}

type KYCDecisionResponse struct {
	Status      string   `json:"status"`
	ReasonCodes []string `json:"reason_codes"`
	ReasonText  *string  `json:"reason_text,omitempty"`
	DecidedAt   *string  `json:"decided_at,omitempty"`
}

type KYCUploadResponse struct {
	Media              MediaResponse `json:"media"`
	AttemptID          uint          `json:"attempt_id"`
	VerificationStatus string        `json:"verification_status"`
}

type KYCStatusResponse struct {
	VerificationStatus string               `json:"verification_status"`
	CurrentAttemptID   *uint                `json:"current_attempt_id,omitempty"`
	IDCardUploaded     bool                 `json:"id_card_uploaded"`
	SelfieUploaded     bool                 `json:"selfie_uploaded"`
	CanUpload          bool                 `json:"can_upload"`
	LastDecision       *KYCDecisionResponse `json:"last_decision,omitempty"`
}

type AdminKYCSummary struct {
	UserID             uint                 `json:"user_id"`
	PhoneNumber        string               `json:"phone_number"`
	VerificationStatus string               `json:"verification_status"`
	CurrentAttemptID   *uint                `json:"current_attempt_id,omitempty"`
	AttemptsCount      int64                `json:"attempts_count"`
	IDCardURL          *string              `json:"id_card_url,omitempty"`
	SelfieURL          *string              `json:"selfie_url,omitempty"`
	LockedAt           *string              `json:"locked_at,omitempty"`
	LastDecision       *KYCDecisionResponse `json:"last_decision,omitempty"`
}

type KYCAttemptResponse struct {
	ID                uint     `json:"id"`
	Status            string   `json:"status"`
	ReasonCodes       []string `json:"reason_codes"`
	ReasonText        *string  `json:"reason_text,omitempty"`
	AllowResubmission bool     `json:"allow_resubmission"`
	SubmittedAt       *string  `json:"submitted_at,omitempty"`
	DecidedAt         *string  `json:"decided_at,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

type PendingKYCResponse struct {
	AttemptID   uint    `json:"attempt_id"`
	UserID      uint    `json:"user_id"`
	PhoneNumber string  `json:"phone_number"`
	SubmittedAt *string `json:"submitted_at,omitempty"`
}
