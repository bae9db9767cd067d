package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
)

// accountIDKey is the context key under which the gate stores the resolved
// identity. Handlers read it through AccountID; the inbound request body is
// never touched.
const accountIDKey = "account_id"

// AccountID returns the account identity resolved by the auth gate.
func AccountID(c *gin.Context) (string, bool) {
	id, ok := c.Get(accountIDKey)
	if !ok {
		return "", false
	}
	s, ok := id.(string)
	return s, ok && s != ""
}

// AuthMiddleware creates the session gate. The token is read from the
// session cookie, with an Authorization bearer header accepted as a
// fallback carrier. Any failure rejects the request before the handler
// runs; no partial side effects.
func AuthMiddleware(tokenSvc domain.TokenService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(token)
		if err != nil {
			switch err {
			case domain.ErrTokenExpired:
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Session expired. Login Again"})
			default:
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
			}
			c.Abort()
			return
		}

		c.Set(accountIDKey, claims.AccountID)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
