package domain

import (
	"context"
	"time"
)

// AccountRepository defines account data access operations. Implementations
// must make SetOTP and ConsumeOTP atomic per account: two concurrent
// ConsumeOTP calls for the same code may succeed at most once, and a SetOTP
// racing a ConsumeOTP must never leave a superseded code consumable.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)

	// SetOTP binds a passcode and its expiry to the account for one purpose,
	// overwriting any outstanding passcode for that purpose.
	SetOTP(ctx context.Context, accountID string, purpose OTPPurpose, code string, expiresAt time.Time) error

	// ConsumeOTP clears the purpose's slot if and only if the stored
	// passcode equals code and has not expired as of now. Any other state
	// returns ErrOTPInvalidOrExpired and leaves the slot untouched.
	ConsumeOTP(ctx context.Context, accountID string, purpose OTPPurpose, code string, now time.Time) error

	MarkVerified(ctx context.Context, accountID string) error
	UpdatePassword(ctx context.Context, accountID string, passwordHash string) error
}

// AccountService defines the account business logic
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, MailOutcome, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, accountID string) (*Account, error)

	SendVerifyOTP(ctx context.Context, accountID string) (MailOutcome, error)
	VerifyEmail(ctx context.Context, accountID, code string) error

	SendResetOTP(ctx context.Context, email string) (MailOutcome, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// OTPService defines one-time passcode operations
type OTPService interface {
	Generate(ctx context.Context, accountID string, purpose OTPPurpose) (string, error)
	Validate(ctx context.Context, accountID string, purpose OTPPurpose, code string) error
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines session token operations
type TokenService interface {
	Mint(accountID string) (token string, expiresAt time.Time, err error)
	Validate(token string) (*TokenClaims, error)
}

// NotificationService defines outbound message delivery
type NotificationService interface {
	SendEmail(to, subject, body string) error
}
