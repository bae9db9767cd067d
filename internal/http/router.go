package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, mw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/api/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/login", ah.Login)
	auth.POST("/send-reset-otp", ah.SendResetOTP)
	auth.POST("/reset-password", ah.ResetPassword)

	gated := auth.Group("", mw.WithAuth())
	gated.POST("/logout", ah.Logout)
	gated.GET("/is-auth", ah.IsAuthenticated)
	gated.POST("/send-verify-otp", ah.SendVerifyOTP)
	gated.POST("/verify-account", ah.VerifyAccount)

	user := r.Group("/api/user", mw.WithAuth())
	user.GET("/data", ah.UserData)

	return r
}
