package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockAccountService implements domain.AccountService for testing
type MockAccountService struct {
	RegisterFunc      func(ctx context.Context, name, email, password string) (*domain.AuthResult, domain.MailOutcome, error)
	LoginFunc         func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	ProfileFunc       func(ctx context.Context, accountID string) (*domain.Account, error)
	SendVerifyOTPFunc func(ctx context.Context, accountID string) (domain.MailOutcome, error)
	VerifyEmailFunc   func(ctx context.Context, accountID, code string) error
	SendResetOTPFunc  func(ctx context.Context, email string) (domain.MailOutcome, error)
	ResetPasswordFunc func(ctx context.Context, email, code, newPassword string) error
}

// NewMockAccountService creates a new MockAccountService with default behaviors
func NewMockAccountService() *MockAccountService {
	return &MockAccountService{}
}

// Register registers an account
func (m *MockAccountService) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, domain.MailOutcome, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	// Default behavior: success with a marker token
	return &domain.AuthResult{
		Account: &domain.Account{ID: "acc-1", Name: name, Email: email},
		Token:   "token_acc-1",
	}, domain.MailOutcome{Attempted: true}, nil
}

// Login authenticates an account
func (m *MockAccountService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// Profile returns the account for the resolved identity
func (m *MockAccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, accountID)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// SendVerifyOTP issues a verification passcode
func (m *MockAccountService) SendVerifyOTP(ctx context.Context, accountID string) (domain.MailOutcome, error) {
	if m.SendVerifyOTPFunc != nil {
		return m.SendVerifyOTPFunc(ctx, accountID)
	}
	// Default behavior: success
	return domain.MailOutcome{Attempted: true}, nil
}

// VerifyEmail consumes a verification passcode
func (m *MockAccountService) VerifyEmail(ctx context.Context, accountID, code string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, accountID, code)
	}
	// Default behavior: success
	return nil
}

// SendResetOTP issues a reset passcode
func (m *MockAccountService) SendResetOTP(ctx context.Context, email string) (domain.MailOutcome, error) {
	if m.SendResetOTPFunc != nil {
		return m.SendResetOTPFunc(ctx, email)
	}
	// Default behavior: success
	return domain.MailOutcome{Attempted: true}, nil
}

// ResetPassword consumes a reset passcode and rotates the password
func (m *MockAccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, code, newPassword)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountService = (*MockAccountService)(nil)
