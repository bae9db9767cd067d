package domain

import "time"

// OTPPurpose identifies which flow a one-time passcode belongs to. Each
// purpose has its own storage slot on the account and its own expiry window.
type OTPPurpose string

const (
	OTPPurposeVerify OTPPurpose = "verify"
	OTPPurposeReset  OTPPurpose = "reset"
)

// Account represents a registered user account
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Verified     bool

	// Outstanding one-time passcodes, one slot per purpose. An empty code
	// means no passcode is outstanding for that purpose.
	VerifyOTP          string
	VerifyOTPExpiresAt time.Time
	ResetOTP           string
	ResetOTPExpiresAt  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthResult represents a successful authentication outcome
type AuthResult struct {
	Account   *Account
	Token     string
	ExpiresAt time.Time
}

// MailOutcome reports the delivery side effect of an operation whose primary
// mutation has already committed. A delivery failure never rolls the
// mutation back, so it is carried separately from the operation error.
type MailOutcome struct {
	Attempted bool
	Err       error
}

// Failed reports whether delivery was attempted and did not succeed.
func (m MailOutcome) Failed() bool {
	return m.Attempted && m.Err != nil
}

// TokenClaims represents the verified contents of a session token
type TokenClaims struct {
	AccountID string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
