package mocks

import (
	"context"

	"github.com/you/authsvc/domain"
)

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	GenerateFunc func(ctx context.Context, accountID string, purpose domain.OTPPurpose) (string, error)
	ValidateFunc func(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Generate issues a passcode
func (m *MockOTPService) Generate(ctx context.Context, accountID string, purpose domain.OTPPurpose) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, accountID, purpose)
	}
	// Default behavior: fixed code
	return "123456", nil
}

// Validate consumes a passcode
func (m *MockOTPService) Validate(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, accountID, purpose, code)
	}
	// Default behavior: accept the fixed code
	if code == "123456" {
		return nil
	}
	return domain.ErrOTPInvalidOrExpired
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
