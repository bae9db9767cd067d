package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"` // "postgres" or "redis"
	DSN     string `yaml:"dsn"`
	Timeout string `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	SessionTTL string `yaml:"session_ttl"`
}

type OTPConfig struct {
	Length    int    `yaml:"length"`
	VerifyTTL string `yaml:"verify_ttl"`
	ResetTTL  string `yaml:"reset_ttl"`
}

type SMTPConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Pass    string `yaml:"pass"`
	From    string `yaml:"from"`
	Timeout string `yaml:"timeout"`
}

type CookieConfig struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
	Secure bool   `yaml:"secure"`
}

type ConfigFile struct {
	App    AppConfig    `yaml:"app"`
	Store  StoreConfig  `yaml:"store"`
	Redis  RedisConfig  `yaml:"redis"`
	JWT    JWTConfig    `yaml:"jwt"`
	OTP    OTPConfig    `yaml:"otp"`
	SMTP   SMTPConfig   `yaml:"smtp"`
	Cookie CookieConfig `yaml:"cookie"`
}

type Config struct {
	Port    string
	GinMode string

	StoreBackend string
	DSN          string
	StoreTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration

	OTPLength    int
	VerifyOTPTTL time.Duration
	ResetOTPTTL  time.Duration

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	MailTimeout time.Duration

	CookieName   string
	CookieDomain string
	CookieSecure bool
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// Load reads config/config.yml when present and fills the gaps from
// environment variables. A missing config file is not an error; a file that
// exists but cannot be parsed is.
func Load() (*Config, error) {
	file := &ConfigFile{}
	path := env("CONFIG_PATH", "config/config.yml")
	if bytes, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(bytes, file); err != nil {
			return nil, fmt.Errorf("could not parse config yaml at %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	cfg := &Config{
		Port:          pick(strconv.Itoa(file.App.Port), env("PORT", "4000"), "0"),
		GinMode:       pick(file.App.GinMode, env("GIN_MODE", "release"), ""),
		StoreBackend:  pick(file.Store.Backend, env("STORE_BACKEND", "postgres"), ""),
		DSN:           pick(file.Store.DSN, os.Getenv("DATABASE_DSN"), ""),
		RedisAddr:     pick(file.Redis.Addr, env("REDIS_ADDR", "localhost:6379"), ""),
		RedisPassword: pick(file.Redis.Password, os.Getenv("REDIS_PASSWORD"), ""),
		RedisDB:       file.Redis.DB,
		JWTSecret:     pick(file.JWT.Secret, os.Getenv("JWT_SECRET"), ""),
		JWTIssuer:     pick(file.JWT.Issuer, env("JWT_ISSUER", "authsvc"), ""),
		OTPLength:     file.OTP.Length,
		SMTPHost:      pick(file.SMTP.Host, os.Getenv("SMTP_HOST"), ""),
		SMTPPort:      file.SMTP.Port,
		SMTPUser:      pick(file.SMTP.User, os.Getenv("SMTP_USER"), ""),
		SMTPPass:      pick(file.SMTP.Pass, os.Getenv("SMTP_PASS"), ""),
		SMTPFrom:      pick(file.SMTP.From, env("SENDER_EMAIL", "no-reply@localhost"), ""),
		CookieName:    pick(file.Cookie.Name, env("COOKIE_NAME", "token"), ""),
		CookieDomain:  pick(file.Cookie.Domain, os.Getenv("COOKIE_DOMAIN"), ""),
		CookieSecure:  file.Cookie.Secure || env("COOKIE_SECURE", "true") == "true",
	}

	if cfg.RedisDB == 0 {
		cfg.RedisDB = envInt("REDIS_DB", 0)
	}
	if cfg.OTPLength == 0 {
		cfg.OTPLength = envInt("OTP_LENGTH", 6)
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = envInt("SMTP_PORT", 587)
	}

	var err error
	if cfg.SessionTTL, err = duration(file.JWT.SessionTTL, "SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}
	if cfg.VerifyOTPTTL, err = duration(file.OTP.VerifyTTL, "VERIFY_OTP_TTL", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid verify OTP TTL: %w", err)
	}
	if cfg.ResetOTPTTL, err = duration(file.OTP.ResetTTL, "RESET_OTP_TTL", 15*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid reset OTP TTL: %w", err)
	}
	if cfg.StoreTimeout, err = duration(file.Store.Timeout, "STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("invalid store timeout: %w", err)
	}
	if cfg.MailTimeout, err = duration(file.SMTP.Timeout, "MAIL_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("invalid mail timeout: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}
	if cfg.StoreBackend == "postgres" && cfg.DSN == "" {
		return nil, fmt.Errorf("postgres store selected but no DSN configured")
	}

	return cfg, nil
}

// pick returns the first value that differs from its zero marker.
func pick(fileVal, envVal, zero string) string {
	if fileVal != zero && fileVal != "" {
		return fileVal
	}
	if envVal != "" {
		return envVal
	}
	return fileVal
}

func duration(fileVal, envKey string, def time.Duration) (time.Duration, error) {
	raw := fileVal
	if raw == "" {
		raw = os.Getenv(envKey)
	}
	if raw == "" {
		return def, nil
	}
	return time.ParseDuration(raw)
}
