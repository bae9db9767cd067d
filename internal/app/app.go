package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/config"
	httpx "github.com/you/authsvc/internal/http"
	"github.com/you/authsvc/internal/http/handlers"
	"github.com/you/authsvc/internal/http/middleware"
	"github.com/you/authsvc/internal/infrastructure/auth"
	"github.com/you/authsvc/internal/infrastructure/database"
	"github.com/you/authsvc/internal/infrastructure/notifications"
	"github.com/you/authsvc/internal/infrastructure/repositories"
	"github.com/you/authsvc/internal/services"
)

func Run(cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	accountRepo, err := openStore(cfg)
	if err != nil {
		return err
	}

	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	notifier := notifications.NewSMTPService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.MailTimeout)

	otpSvc := services.NewOTPService(accountRepo, services.OTPConfig{
		Length:    cfg.OTPLength,
		VerifyTTL: cfg.VerifyOTPTTL,
		ResetTTL:  cfg.ResetOTPTTL,
	})

	accountSvc := services.NewAuthService(accountRepo, passwordSvc, tokenSvc, otpSvc, notifier, cfg.StoreTimeout, cfg.MailTimeout)

	authH := handlers.NewAuthHandlers(accountSvc, handlers.CookieConfig{
		Name:   cfg.CookieName,
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
		MaxAge: cfg.SessionTTL,
	})
	authMW := middleware.NewAuthMW(tokenSvc, cfg.CookieName)

	r := httpx.BuildRouter(authH, authMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (store=%s)", addr, cfg.StoreBackend)
	return http.ListenAndServe(addr, r)
}

// openStore selects and connects the account store. A store that cannot be
// reached at startup is a configuration fault and aborts the process.
func openStore(cfg *config.Config) (domain.AccountRepository, error) {
	switch cfg.StoreBackend {
	case "postgres":
		gdb, err := database.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := database.AutoMigrate(gdb); err != nil {
			return nil, err
		}
		return repositories.NewAccountRepository(gdb), nil
	case "redis":
		rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return repositories.NewRedisAccountRepository(rdb.Client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
