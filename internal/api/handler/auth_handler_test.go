package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// ---- Stubs ----

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.TokenPair, error)
	changePasswordFn func(ctx context.Context, userID, current, next string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return nil, domain.ErrInvalidRefreshToken
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error { return nil }

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	return s.changePasswordFn(ctx, userID, current, next)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return &domain.User{ID: userID}, nil
}

func (s *stubAuthService) MustChangePassword(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

// ---- Helpers ----

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, userID string, role domain.Role) echo.Context {
	c.Set(CtxUserID, userID)
	c.Set(CtxRole, role)
	return c
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("expected success=true, got %v", resp["success"])
	}
	return resp
}

// ---- Tests ----

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "ana@example.com" || in.Role != domain.RolePsychologist || in.Name != "Ana" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, Name: in.Name, Role: in.Role}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"supersecret","name":"Ana","role":"PSYCHOLOGIST"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	user, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in data")
	}
	if user["email"] != "ana@example.com" || user["role"] != "PSYCHOLOGIST" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_ValidationDetails(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	c, _ := newJSONContext(http.MethodPost, "/auth/register",
		`{"email":"not-an-email","password":"short","name":"Ana","role":"ADMIN"}`)
	err := h.Register(c)

	var de *domain.Error
	if !errors.As(err, &de) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details, ok := de.Details.([]fieldViolation)
	if !ok {
		t.Fatalf("expected field violations, got %T", de.Details)
	}
	fields := map[string]bool{}
	for _, d := range details {
		fields[d.Field] = true
	}
	for _, f := range []string{"email", "password", "role"} {
		if !fields[f] {
			t.Fatalf("expected violation for %s, got %+v", f, details)
		}
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailAlreadyRegistered
		},
	})

	c, _ := newJSONContext(http.MethodPost, "/auth/register",
		`{"email":"ana@example.com","password":"supersecret","name":"Ana","role":"CONSULTANT"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected EMAIL_ALREADY_REGISTERED, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.TokenPair, error) {
			if password != "supersecret" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", ExpiresIn: 900}, nil
		},
	})

	c, rec := newJSONContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"supersecret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["access_token"] != "a" || data["token_type"] != "Bearer" {
		t.Fatalf("unexpected token payload: %+v", data)
	}

	c, _ = newJSONContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestAuthHandler_ChangePassword_RequiresActor(t *testing.T) {
	var gotUser string
	h := NewAuthHandler(&stubAuthService{
		changePasswordFn: func(ctx context.Context, userID, current, next string) error {
			gotUser = userID
			return nil
		},
	})

	c, _ := newJSONContext(http.MethodPost, "/auth/change-password", `{"current_password":"x","new_password":"newsecret"}`)
	if err := h.ChangePassword(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected UNAUTHENTICATED without actor, got %v", err)
	}

	c, rec := newJSONContext(http.MethodPost, "/auth/change-password", `{"current_password":"x","new_password":"newsecret"}`)
	withActor(c, "u1", domain.RoleConsultant)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || gotUser != "u1" {
		t.Fatalf("expected 204 for u1, got %d for %q", rec.Code, gotUser)
	}
}
