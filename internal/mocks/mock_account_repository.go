package mocks

import (
	"context"
	"time"

	"github.com/you/authsvc/domain"
)

// MockAccountRepository implements domain.AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc         func(ctx context.Context, account *domain.Account) error
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.Account, error)
	FindByIDFunc       func(ctx context.Context, id string) (*domain.Account, error)
	SetOTPFunc         func(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, expiresAt time.Time) error
	ConsumeOTPFunc     func(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, now time.Time) error
	MarkVerifiedFunc   func(ctx context.Context, accountID string) error
	UpdatePasswordFunc func(ctx context.Context, accountID string, passwordHash string) error
}

// NewMockAccountRepository creates a new MockAccountRepository with default behaviors
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

// Create creates a new account
func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	// Default behavior: success, assign a fixed id
	if account.ID == "" {
		account.ID = "acc-1"
	}
	return nil
}

// FindByEmail finds an account by email
func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// FindByID finds an account by id
func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrAccountNotFound
}

// SetOTP binds a passcode to the account
func (m *MockAccountRepository) SetOTP(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, expiresAt time.Time) error {
	if m.SetOTPFunc != nil {
		return m.SetOTPFunc(ctx, accountID, purpose, code, expiresAt)
	}
	// Default behavior: success
	return nil
}

// ConsumeOTP consumes a stored passcode
func (m *MockAccountRepository) ConsumeOTP(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string, now time.Time) error {
	if m.ConsumeOTPFunc != nil {
		return m.ConsumeOTPFunc(ctx, accountID, purpose, code, now)
	}
	// Default behavior: nothing stored
	return domain.ErrOTPInvalidOrExpired
}

// MarkVerified marks the account verified
func (m *MockAccountRepository) MarkVerified(ctx context.Context, accountID string) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, accountID)
	}
	// Default behavior: success
	return nil
}

// UpdatePassword overwrites the stored password hash
func (m *MockAccountRepository) UpdatePassword(ctx context.Context, accountID string, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, accountID, passwordHash)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountRepository = (*MockAccountRepository)(nil)
