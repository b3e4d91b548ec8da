package dto

type OTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type OTPVerifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"otp_code"`
}

type LoginResponse struct {
	Token     string              `json:"token"`
	IsNewUser bool                `json:"is_new_user"`
	User      UserProfileResponse `json:"user"`
}

// AuthResponse holds the verified claims of an access token.
type AuthResponse struct {
	UserID uint    `json:"user_id"`
	Role   string  `json:"role"`
	Iat    float64 `json:"iat"`
	Expiry float64 `json:"expiry"`
}

type OTPPeekResponse struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"otp_code"`
	ExpiresAt   string `json:"expires_at"`
}
