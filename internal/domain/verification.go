package domain

// Verification types stored in the user_verifications table.
const (
	VerificationOTP   = "otp"   // password recovery code
	VerificationEmail = "email" // email confirmation token
	VerificationPhone = "phone" // phone confirmation code
)

// UserVerification stores one-time recovery and confirmation codes.
// One row per (user, type); re-requesting a code replaces the previous one.
type UserVerification struct {
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"` // Unix seconds
}
