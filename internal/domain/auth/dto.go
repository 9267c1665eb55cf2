package auth

// MagicLinkRequest asks for a one-time sign-in code
type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyRequest exchanges a code for a session token
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// User identifies the signed-in account
type User struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email,omitempty"`
	NewReader bool   `json:"newReader,omitempty"`
}

// Session carries the bearer token and its lifetime
type Session struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Profile is the reading-side view of an account
type Profile struct {
	Partition    string   `json:"partition"`
	Credits      int      `json:"credits"`
	PaidChapters []string `json:"paidChapters"`
}

// SessionResponse is returned after a successful sign-in
type SessionResponse struct {
	User    User    `json:"user"`
	Session Session `json:"session"`
}

// MeResponse describes the authenticated account
type MeResponse struct {
	User    User    `json:"user"`
	Profile Profile `json:"profile"`
}

// GuestResponse carries the freshly minted guest id
type GuestResponse struct {
	GuestID string `json:"guestId"`
}

// DeleteOTPRequest asks for an account-deletion confirmation code
type DeleteOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// DeleteConfirmRequest confirms the deletion with the emailed code
type DeleteConfirmRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}
