package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/you/authsvc/domain"
)

// OTPServiceImpl implements domain.OTPService on top of the account
// repository's atomic OTP slots.
type OTPServiceImpl struct {
	accounts domain.AccountRepository
	config   OTPConfig
}

type OTPConfig struct {
	Length    int
	VerifyTTL time.Duration
	ResetTTL  time.Duration
}

// NewOTPService creates a new OTP service
func NewOTPService(accounts domain.AccountRepository, config OTPConfig) domain.OTPService {
	return &OTPServiceImpl{
		accounts: accounts,
		config:   config,
	}
}

// Generate implements domain.OTPService. The new code overwrites any
// outstanding code for the same purpose, so at most one code per purpose is
// live at a time. Generating into an empty or already-consumed slot behaves
// like first issuance.
func (s *OTPServiceImpl) Generate(ctx context.Context, accountID string, purpose domain.OTPPurpose) (string, error) {
	code, err := s.generateSecureCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}

	expiresAt := time.Now().Add(s.ttl(purpose))
	if err := s.accounts.SetOTP(ctx, accountID, purpose, code, expiresAt); err != nil {
		return "", err
	}

	return code, nil
}

// Validate implements domain.OTPService. Consumption is single-use: the
// repository clears the slot atomically on a match, and a second submission
// of the same code fails. Wrong and expired codes are indistinguishable to
// the caller.
func (s *OTPServiceImpl) Validate(ctx context.Context, accountID string, purpose domain.OTPPurpose, code string) error {
	return s.accounts.ConsumeOTP(ctx, accountID, purpose, code, time.Now())
}

func (s *OTPServiceImpl) ttl(purpose domain.OTPPurpose) time.Duration {
	if purpose == domain.OTPPurposeReset {
		return s.config.ResetTTL
	}
	return s.config.VerifyTTL
}

// generateSecureCode draws each digit independently from crypto/rand, so the
// code is uniform over 000000-999999 and leading zeros are preserved.
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
