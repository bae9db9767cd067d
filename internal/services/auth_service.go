package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/you/authsvc/domain"
)

// AuthServiceImpl implements domain.AccountService
type AuthServiceImpl struct {
	accounts    domain.AccountRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	otpSvc      domain.OTPService
	notifier    domain.NotificationService

	storeTimeout time.Duration
	mailTimeout  time.Duration
}

// NewAuthService creates a new account service
func NewAuthService(
	accounts domain.AccountRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	notifier domain.NotificationService,
	storeTimeout time.Duration,
	mailTimeout time.Duration,
) domain.AccountService {
	return &AuthServiceImpl{
		accounts:     accounts,
		passwordSvc:  passwordSvc,
		tokenSvc:     tokenSvc,
		otpSvc:       otpSvc,
		notifier:     notifier,
		storeTimeout: storeTimeout,
		mailTimeout:  mailTimeout,
	}
}

// Register implements domain.AccountService. The welcome mail is a
// best-effort side effect; its outcome is returned separately and never
// rolls back the created account.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, domain.MailOutcome, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.MailOutcome{}, domain.ErrMissingFields
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.MailOutcome{}, domain.ErrAccountExists
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, domain.MailOutcome{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Verified:     false,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, domain.MailOutcome{}, err
	}

	token, expiresAt, err := s.tokenSvc.Mint(account.ID)
	if err != nil {
		return nil, domain.MailOutcome{}, fmt.Errorf("failed to mint session token: %w", err)
	}

	mail := s.sendMail(account.Email, "Welcome",
		welcomeBody(account.Email))

	return &domain.AuthResult{
		Account:   account,
		Token:     token,
		ExpiresAt: expiresAt,
	}, mail, nil
}

// Login implements domain.AccountService. Verification status is advisory
// and does not gate login.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokenSvc.Mint(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	return &domain.AuthResult{
		Account:   account,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Profile implements domain.AccountService
func (s *AuthServiceImpl) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.accounts.FindByID(ctx, accountID)
}

// SendVerifyOTP implements domain.AccountService
func (s *AuthServiceImpl) SendVerifyOTP(ctx context.Context, accountID string) (domain.MailOutcome, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return domain.MailOutcome{}, err
	}
	if account.Verified {
		return domain.MailOutcome{}, domain.ErrAlreadyVerified
	}

	code, err := s.otpSvc.Generate(ctx, account.ID, domain.OTPPurposeVerify)
	if err != nil {
		return domain.MailOutcome{}, err
	}

	mail := s.sendMail(account.Email, "Account Verification OTP",
		verifyOTPBody(code, account.Email))
	return mail, nil
}

// VerifyEmail implements domain.AccountService. The OTP is consumed exactly
// once; a replay of the same code fails with ErrOTPInvalidOrExpired.
func (s *AuthServiceImpl) VerifyEmail(ctx context.Context, accountID, code string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.otpSvc.Validate(ctx, accountID, domain.OTPPurposeVerify, code); err != nil {
		return err
	}

	if err := s.accounts.MarkVerified(ctx, accountID); err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	log.Printf("ACCOUNT_VERIFIED: account_id=%s timestamp=%s",
		accountID, time.Now().UTC().Format(time.RFC3339))
	return nil
}

// SendResetOTP implements domain.AccountService
func (s *AuthServiceImpl) SendResetOTP(ctx context.Context, email string) (domain.MailOutcome, error) {
	if email == "" {
		return domain.MailOutcome{}, domain.ErrMissingFields
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return domain.MailOutcome{}, err
	}

	code, err := s.otpSvc.Generate(ctx, account.ID, domain.OTPPurposeReset)
	if err != nil {
		return domain.MailOutcome{}, err
	}

	mail := s.sendMail(account.Email, "Password Reset OTP",
		resetOTPBody(code, account.Email))
	return mail, nil
}

// ResetPassword implements domain.AccountService
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return domain.ErrMissingFields
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.otpSvc.Validate(ctx, account.ID, domain.OTPPurposeReset, code); err != nil {
		return err
	}

	hashed, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Printf("PASSWORD_RESET: account_id=%s timestamp=%s",
		account.ID, time.Now().UTC().Format(time.RFC3339))
	return nil
}

// sendMail delivers one message under the mail timeout and reports the
// outcome without failing the caller's committed mutation.
func (s *AuthServiceImpl) sendMail(to, subject, body string) domain.MailOutcome {
	done := make(chan error, 1)
	go func() {
		done <- s.notifier.SendEmail(to, subject, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("MAIL_DELIVERY_FAILED: to=%s subject=%q error=%v", to, subject, err)
			return domain.MailOutcome{Attempted: true, Err: fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)}
		}
		return domain.MailOutcome{Attempted: true}
	case <-time.After(s.mailTimeout):
		log.Printf("MAIL_DELIVERY_TIMEOUT: to=%s subject=%q", to, subject)
		return domain.MailOutcome{Attempted: true, Err: domain.ErrMailDelivery}
	}
}

func (s *AuthServiceImpl) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
