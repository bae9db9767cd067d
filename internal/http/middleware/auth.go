package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
)

// AuthMW wraps the token service and cookie settings for the auth gate
type AuthMW struct {
	tokenSvc   domain.TokenService
	cookieName string
}

// NewAuthMW creates a new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService, cookieName string) *AuthMW {
	return &AuthMW{
		tokenSvc:   tokenSvc,
		cookieName: cookieName,
	}
}

// WithAuth returns the session gate middleware function
func (mw *AuthMW) WithAuth() gin.HandlerFunc {
	return AuthMiddleware(mw.tokenSvc, mw.cookieName)
}
