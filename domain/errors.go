package domain

import "errors"

// Validation and registration errors
var (
	ErrMissingFields = errors.New("missing details")
	ErrAccountExists = errors.New("account already exists")
)

// Authentication errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyVerified    = errors.New("account already verified")
)

// OTP errors. Wrong code and elapsed window deliberately share one error so
// callers cannot probe which of the two occurred.
var (
	ErrOTPInvalidOrExpired = errors.New("invalid or expired otp")
)

// Token errors. Any structural or signature failure maps to ErrTokenInvalid;
// ErrTokenExpired is returned only when the signature verified but the
// expiry has passed.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Side-effect and infrastructure errors
var (
	ErrMailDelivery = errors.New("mail delivery failed")
)
