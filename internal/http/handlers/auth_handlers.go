package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/http/middleware"
)

// CookieConfig carries the session cookie settings. The cookie is http-only
// and cross-site capable (SameSite=None), which requires Secure outside of
// local development.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

// AuthHandlers handles account HTTP requests
type AuthHandlers struct {
	accountSvc domain.AccountService
	cookie     CookieConfig
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(accountSvc domain.AccountService, cookie CookieConfig) *AuthHandlers {
	return &AuthHandlers{
		accountSvc: accountSvc,
		cookie:     cookie,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// VerifyAccountRequest represents an email verification request
type VerifyAccountRequest struct {
	OTP string `json:"otp" binding:"required"`
}

// SendResetOTPRequest represents a reset code request
type SendResetOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest represents a password reset request
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Register handles account registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		return
	}

	result, mail, err := h.accountSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		case errors.Is(err, domain.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "User already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
		}
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, h.withMailWarning(gin.H{"success": true}, mail))
}

// Login handles account login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and Password are required"})
		return
	}

	result, err := h.accountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid Email"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid Password"})
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and Password are required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
		}
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the session cookie. Tokens are stateless, so the server
// keeps no session state to remove.
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged Out"})
}

// IsAuthenticated reports a valid session. The auth gate already resolved
// the identity; reaching this handler is the proof.
func (h *AuthHandlers) IsAuthenticated(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UserData returns the profile of the resolved identity
func (h *AuthHandlers) UserData(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
		return
	}

	account, err := h.accountSvc.Profile(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not load user data"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userData": gin.H{
			"name":              account.Name,
			"email":             account.Email,
			"isAccountVerified": account.Verified,
		},
	})
}

// SendVerifyOTP issues and mails an email verification code
func (h *AuthHandlers) SendVerifyOTP(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
		return
	}

	mail, err := h.accountSvc.SendVerifyOTP(c.Request.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyVerified):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Account already verified"})
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not send verification OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, h.withMailWarning(gin.H{"success": true, "message": "Verification OTP sent"}, mail))
}

// VerifyAccount consumes a verification code and marks the account verified
func (h *AuthHandlers) VerifyAccount(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
		return
	}

	var req VerifyAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		return
	}

	if err := h.accountSvc.VerifyEmail(c.Request.Context(), accountID, req.OTP); err != nil {
		switch {
		case errors.Is(err, domain.ErrOTPInvalidOrExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or Expired OTP"})
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified"})
}

// SendResetOTP issues and mails a password reset code
func (h *AuthHandlers) SendResetOTP(c *gin.Context) {
	var req SendResetOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		return
	}

	mail, err := h.accountSvc.SendResetOTP(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not send reset OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, h.withMailWarning(gin.H{"success": true, "message": "Reset OTP sent"}, mail))
}

// ResetPassword consumes a reset code and rotates the password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		return
	}

	err := h.accountSvc.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		case errors.Is(err, domain.ErrOTPInvalidOrExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or Expired OTP"})
		case errors.Is(err, domain.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing details"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Password reset failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successful"})
}

// withMailWarning annotates a committed-success envelope when the mail side
// effect failed, so the two outcomes stay distinguishable to the client.
func (h *AuthHandlers) withMailWarning(body gin.H, mail domain.MailOutcome) gin.H {
	if mail.Failed() {
		body["warning"] = "Email delivery failed"
	}
	return body
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge.Seconds()), "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandlers) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}
