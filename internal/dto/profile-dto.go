package dto

// UpdateUserProfile is a partial update: nil fields are left unchanged.
type UpdateUserProfile struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Birthdate   *string `json:"birthdate,omitempty"` // YYYY-MM-DD
	Sex         *string `json:"sex,omitempty"`
	NationalID  *string `json:"national_id,omitempty"`
	ShabaNumber *string `json:"shaba_number,omitempty"`
	Address     *string `json:"address,omitempty"`
}

type UserProfileResponse struct {
	ID                 uint    `json:"id"`
	PhoneNumber        string  `json:"phone_number"`
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	Birthdate          *string `json:"birthdate,omitempty"`
	Sex                *string `json:"sex,omitempty"`
	NationalID         *string `json:"national_id,omitempty"`
	ShabaNumber        *string `json:"shaba_number,omitempty"`
	Address            *string `json:"address,omitempty"`
	AvatarURL          *string `json:"avatar_url,omitempty"`
	Role               string  `json:"role"`
	VerificationStatus string  `json:"verification_status"`
	KYCLocked          bool    `json:"kyc_locked"`
	CreatedAt          string  `json:"created_at"`
}

// UploadFile is an uploaded file already read into memory.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type MediaResponse struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
	CreatedAt string `json:"created_at"`
}
