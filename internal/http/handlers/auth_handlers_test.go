package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/authsvc/domain"
	"github.com/you/authsvc/internal/mocks"
)

func testCookieConfig() CookieConfig {
	return CookieConfig{
		Name:   "token",
		Secure: true,
		MaxAge: 7 * 24 * time.Hour,
	}
}

// newHandlerTestRouter wires the handlers onto a bare engine. Gated routes
// get a stub gate that injects a fixed identity, so handler behavior is
// tested in isolation from token validation.
func newHandlerTestRouter(t *testing.T, svc domain.AccountService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewAuthHandlers(svc, testCookieConfig())

	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/send-reset-otp", h.SendResetOTP)
	r.POST("/api/auth/reset-password", h.ResetPassword)

	gated := r.Group("/api/auth")
	gated.Use(func(c *gin.Context) { c.Set("account_id", "acc-1") })
	gated.POST("/logout", h.Logout)
	gated.GET("/is-auth", h.IsAuthenticated)
	gated.POST("/send-verify-otp", h.SendVerifyOTP)
	gated.POST("/verify-account", h.VerifyAccount)

	user := r.Group("/api/user")
	user.Use(func(c *gin.Context) { c.Set("account_id", "acc-1") })
	user.GET("/data", h.UserData)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setup       func(*mocks.MockAccountService)
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "successful registration",
			body:        `{"name":"Ana","email":"ana@x.com","password":"Secret1"}`,
			wantStatus:  http.StatusCreated,
			wantSuccess: true,
		},
		{
			name:        "missing fields rejected before the service",
			body:        `{"email":"ana@x.com"}`,
			wantStatus:  http.StatusBadRequest,
			wantSuccess: false,
			wantMessage: "Missing details",
		},
		{
			name: "duplicate email",
			body: `{"name":"Ana","email":"ana@x.com","password":"Secret1"}`,
			setup: func(m *mocks.MockAccountService) {
				m.RegisterFunc = func(ctx context.Context, name, email, password string) (*domain.AuthResult, domain.MailOutcome, error) {
					return nil, domain.MailOutcome{}, domain.ErrAccountExists
				}
			},
			wantStatus:  http.StatusConflict,
			wantSuccess: false,
			wantMessage: "User already exists",
		},
		{
			name: "storage failure",
			body: `{"name":"Ana","email":"ana@x.com","password":"Secret1"}`,
			setup: func(m *mocks.MockAccountService) {
				m.RegisterFunc = func(ctx context.Context, name, email, password string) (*domain.AuthResult, domain.MailOutcome, error) {
					return nil, domain.MailOutcome{}, errors.New("db down")
				}
			},
			wantStatus:  http.StatusInternalServerError,
			wantSuccess: false,
			wantMessage: "Registration failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			r := newHandlerTestRouter(t, svc)

			w := doJSON(t, r, http.MethodPost, "/api/auth/register", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decodeEnvelope(t, w)
			if body["success"] != tt.wantSuccess {
				t.Errorf("expected success=%v, got %v", tt.wantSuccess, body["success"])
			}
			if tt.wantMessage != "" && body["message"] != tt.wantMessage {
				t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
			}
		})
	}
}

func TestRegister_SetsSessionCookie(t *testing.T) {
	svc := mocks.NewMockAccountService()
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"name":"Ana","email":"ana@x.com","password":"Secret1"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	cookie := sessionCookie(t, w)
	if cookie.Value != "token_acc-1" {
		t.Errorf("expected minted token in cookie, got %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be http-only")
	}
	if !cookie.Secure {
		t.Error("session cookie must be secure")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("expected SameSite=None, got %v", cookie.SameSite)
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("expected 7 day max-age, got %d", cookie.MaxAge)
	}
}

func TestRegister_MailFailureSurfacesWarning(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.RegisterFunc = func(ctx context.Context, name, email, password string) (*domain.AuthResult, domain.MailOutcome, error) {
		return &domain.AuthResult{
			Account: &domain.Account{ID: "acc-1", Name: name, Email: email},
			Token:   "token_acc-1",
		}, domain.MailOutcome{Attempted: true, Err: domain.ErrMailDelivery}, nil
	}
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", `{"name":"Ana","email":"ana@x.com","password":"Secret1"}`)

	// The registration committed, so the envelope stays a success; only the
	// warning field reports the undelivered mail.
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 despite mail failure, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != true {
		t.Errorf("expected success=true, got %v", body["success"])
	}
	if body["warning"] != "Email delivery failed" {
		t.Errorf("expected mail warning, got %v", body["warning"])
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setup       func(*mocks.MockAccountService)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "successful login",
			body: `{"email":"ana@x.com","password":"Secret1"}`,
			setup: func(m *mocks.MockAccountService) {
				m.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
					return &domain.AuthResult{
						Account: &domain.Account{ID: "acc-1", Email: email},
						Token:   "token_acc-1",
					}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "unknown email",
			body:        `{"email":"ghost@x.com","password":"Secret1"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid Email",
		},
		{
			name: "wrong password",
			body: `{"email":"ana@x.com","password":"wrong"}`,
			setup: func(m *mocks.MockAccountService) {
				m.LoginFunc = func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
					return nil, domain.ErrInvalidCredentials
				}
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid Password",
		},
		{
			name:        "missing password",
			body:        `{"email":"ana@x.com"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Email and Password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			r := newHandlerTestRouter(t, svc)

			w := doJSON(t, r, http.MethodPost, "/api/auth/login", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantMessage != "" {
				body := decodeEnvelope(t, w)
				if body["message"] != tt.wantMessage {
					t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
				}
			}
			if tt.wantStatus == http.StatusOK {
				if cookie := sessionCookie(t, w); cookie.Value != "token_acc-1" {
					t.Errorf("expected session cookie, got %q", cookie.Value)
				}
			}
		})
	}
}

func TestLogout_ClearsSessionCookie(t *testing.T) {
	svc := mocks.NewMockAccountService()
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["message"] != "Logged Out" {
		t.Errorf("expected Logged Out message, got %v", body["message"])
	}

	cookie := sessionCookie(t, w)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("expected an expired empty cookie, got value=%q max-age=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestIsAuthenticated(t *testing.T) {
	svc := mocks.NewMockAccountService()
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodGet, "/api/auth/is-auth", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["success"] != true {
		t.Errorf("expected success=true, got %v", body["success"])
	}
}

func TestUserData(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.ProfileFunc = func(ctx context.Context, accountID string) (*domain.Account, error) {
		return &domain.Account{ID: accountID, Name: "Ana", Email: "ana@x.com", Verified: true}, nil
	}
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodGet, "/api/user/data", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	userData, ok := body["userData"].(map[string]any)
	if !ok {
		t.Fatalf("expected userData object, got %v", body["userData"])
	}
	if userData["name"] != "Ana" {
		t.Errorf("expected name Ana, got %v", userData["name"])
	}
	if userData["isAccountVerified"] != true {
		t.Errorf("expected isAccountVerified=true, got %v", userData["isAccountVerified"])
	}
}

func TestUserData_AccountVanished(t *testing.T) {
	svc := mocks.NewMockAccountService()
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodGet, "/api/user/data", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["message"] != "User not found" {
		t.Errorf("expected User not found, got %v", body["message"])
	}
}

func TestSendVerifyOTP(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*mocks.MockAccountService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "issues and mails a code",
			wantStatus:  http.StatusOK,
			wantMessage: "Verification OTP sent",
		},
		{
			name: "already verified",
			setup: func(m *mocks.MockAccountService) {
				m.SendVerifyOTPFunc = func(ctx context.Context, accountID string) (domain.MailOutcome, error) {
					return domain.MailOutcome{}, domain.ErrAlreadyVerified
				}
			},
			wantStatus:  http.StatusConflict,
			wantMessage: "Account already verified",
		},
		{
			name: "account vanished",
			setup: func(m *mocks.MockAccountService) {
				m.SendVerifyOTPFunc = func(ctx context.Context, accountID string) (domain.MailOutcome, error) {
					return domain.MailOutcome{}, domain.ErrAccountNotFound
				}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			r := newHandlerTestRouter(t, svc)

			w := doJSON(t, r, http.MethodPost, "/api/auth/send-verify-otp", "")

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decodeEnvelope(t, w)
			if body["message"] != tt.wantMessage {
				t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
			}
		})
	}
}

func TestSendVerifyOTP_MailFailureSurfacesWarning(t *testing.T) {
	svc := mocks.NewMockAccountService()
	svc.SendVerifyOTPFunc = func(ctx context.Context, accountID string) (domain.MailOutcome, error) {
		return domain.MailOutcome{Attempted: true, Err: domain.ErrMailDelivery}, nil
	}
	r := newHandlerTestRouter(t, svc)

	w := doJSON(t, r, http.MethodPost, "/api/auth/send-verify-otp", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["warning"] != "Email delivery failed" {
		t.Errorf("expected mail warning, got %v", body["warning"])
	}
}

func TestVerifyAccount(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setup       func(*mocks.MockAccountService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "valid code verifies the account",
			body:        `{"otp":"123456"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Email verified",
		},
		{
			name:        "missing otp",
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Missing details",
		},
		{
			name: "wrong or expired code",
			body: `{"otp":"654321"}`,
			setup: func(m *mocks.MockAccountService) {
				m.VerifyEmailFunc = func(ctx context.Context, accountID, code string) error {
					return domain.ErrOTPInvalidOrExpired
				}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid or Expired OTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			r := newHandlerTestRouter(t, svc)

			w := doJSON(t, r, http.MethodPost, "/api/auth/verify-account", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decodeEnvelope(t, w)
			if body["message"] != tt.wantMessage {
				t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
			}
		})
	}
}

func TestSendResetOTP(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setup       func(*mocks.MockAccountService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "issues and mails a reset code",
			body:        `{"email":"ana@x.com"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Reset OTP sent",
		},
		{
			name:        "missing email",
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Email is required",
		},
		{
			name: "unknown email",
			body: `{"email":"ghost@x.com"}`,
			setup: func(m *mocks.MockAccountService) {
				m.SendResetOTPFunc = func(ctx context.Context, email string) (domain.MailOutcome, error) {
					return domain.MailOutcome{}, domain.ErrAccountNotFound
				}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			r := newHandlerTestRouter(t, svc)

			w := doJSON(t, r, http.MethodPost, "/api/auth/send-reset-otp", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decodeEnvelope(t, w)
			if body["message"] != tt.wantMessage {
				t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
			}
		})
	}
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setup       func(*mocks.MockAccountService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "valid code rotates the password",
			body:        `{"email":"ana@x.com","otp":"123456","newPassword":"New1"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Password reset successful",
		},
		{
			name:        "missing new password",
			body:        `{"email":"ana@x.com","otp":"123456"}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Missing details",
		},
		{
			name: "wrong or expired code",
			body: `{"email":"ana@x.com","otp":"654321","newPassword":"New1"}`,
			setup: func(m *mocks.MockAccountService) {
				m.ResetPasswordFunc = func(ctx context.Context, email, code, newPassword string) error {
					return domain.ErrOTPInvalidOrExpired
				}
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid or Expired OTP",
		},
		{
			name: "unknown email",
			body: `{"email":"ghost@x.com","otp":"123456","newPassword":"New1"}`,
			setup: func(m *mocks.MockAccountService) {
				m.ResetPasswordFunc = func(ctx context.Context, email, code, newPassword string) error {
					return domain.ErrAccountNotFound
				}
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewMockAccountService()
			if tt.setup != nil {
				tt.setup(svc)
			}
			r := newHandlerTestRouter(t, svc)

			w := doJSON(t, r, http.MethodPost, "/api/auth/reset-password", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decodeEnvelope(t, w)
			if body["message"] != tt.wantMessage {
				t.Errorf("expected message %q, got %v", tt.wantMessage, body["message"])
			}
		})
	}
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	res := w.Result()
	defer res.Body.Close()
	for _, c := range res.Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatalf("no session cookie in response; Set-Cookie: %s", strings.Join(w.Header().Values("Set-Cookie"), "; "))
	return nil
}
