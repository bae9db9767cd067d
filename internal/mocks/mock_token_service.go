package mocks

import (
	"time"

	"github.com/you/authsvc/domain"
)

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	MintFunc     func(accountID string) (string, time.Time, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Mint mints a session token
func (m *MockTokenService) Mint(accountID string) (string, time.Time, error) {
	if m.MintFunc != nil {
		return m.MintFunc(accountID)
	}
	// Default behavior: marker token with a 7 day expiry
	return "token_" + accountID, time.Now().Add(7 * 24 * time.Hour), nil
}

// Validate validates a session token
func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	// Default behavior: invalid
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
