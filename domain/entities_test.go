package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAccount_OTPSlotsAreIndependent(t *testing.T) {
	account := &Account{
		ID:                 "acc-1",
		Email:              "ana@x.com",
		PasswordHash:       "hash",
		VerifyOTP:          "111111",
		VerifyOTPExpiresAt: time.Now().Add(24 * time.Hour),
		ResetOTP:           "222222",
		ResetOTPExpiresAt:  time.Now().Add(15 * time.Minute),
	}

	// Clearing one slot must not disturb the other.
	account.ResetOTP = ""
	account.ResetOTPExpiresAt = time.Time{}

	if account.VerifyOTP != "111111" {
		t.Errorf("verify slot changed when reset slot was cleared: %q", account.VerifyOTP)
	}
	if account.VerifyOTPExpiresAt.IsZero() {
		t.Error("verify expiry changed when reset slot was cleared")
	}
}

func TestOTPPurposeValues(t *testing.T) {
	if OTPPurposeVerify == OTPPurposeReset {
		t.Fatal("purposes must be distinct")
	}
	if OTPPurposeVerify != "verify" || OTPPurposeReset != "reset" {
		t.Errorf("unexpected purpose values: %q, %q", OTPPurposeVerify, OTPPurposeReset)
	}
}

func TestMailOutcome_Failed(t *testing.T) {
	tests := []struct {
		name     string
		outcome  MailOutcome
		expected bool
	}{
		{
			name:     "not attempted",
			outcome:  MailOutcome{},
			expected: false,
		},
		{
			name:     "attempted and delivered",
			outcome:  MailOutcome{Attempted: true},
			expected: false,
		},
		{
			name:     "attempted and failed",
			outcome:  MailOutcome{Attempted: true, Err: errors.New("smtp down")},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outcome.Failed(); got != tt.expected {
				t.Errorf("Failed() = %v, want %v", got, tt.expected)
			}
		})
	}
}
