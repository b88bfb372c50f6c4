package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/api/handler"
	"github.com/terapia/practice-api/internal/core/domain"
)

func newCtx(role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(handler.CtxUserID, "user-1")
	c.Set(handler.CtxRole, role)
	return c, rec
}

func TestRequireRoles_Allows(t *testing.T) {
	cases := []struct {
		role    domain.Role
		allowed []domain.Role
	}{
		{domain.RolePsychologist, []domain.Role{domain.RolePsychologist}},
		{domain.RoleAdminPsychologist, []domain.Role{domain.RolePsychologist}},
		{domain.RoleAdminPsychologist, []domain.Role{domain.RoleAdmin}},
		{domain.RoleConsultant, []domain.Role{domain.RolePsychologist, domain.RoleConsultant}},
	}
	for _, tc := range cases {
		c, rec := newCtx(tc.role)
		called := false
		h := RequireRoles(tc.allowed...)(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})
		if err := h(c); err != nil {
			t.Fatalf("%s: handler error: %v", tc.role, err)
		}
		if !called || rec.Code != http.StatusOK {
			t.Fatalf("%s: expected next to run", tc.role)
		}
	}
}

func TestRequireRoles_Forbids(t *testing.T) {
	cases := []struct {
		role    domain.Role
		allowed []domain.Role
	}{
		{domain.RoleConsultant, []domain.Role{domain.RolePsychologist}},
		{domain.RolePsychologist, []domain.Role{domain.RoleAdmin}},
		{domain.RoleAdmin, []domain.Role{domain.RolePsychologist}},
		{"", []domain.Role{domain.RoleConsultant}},
	}
	for _, tc := range cases {
		c, _ := newCtx(tc.role)
		h := RequireRoles(tc.allowed...)(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next handler", tc.role)
			return nil
		})
		if err := h(c); !errors.Is(err, domain.ErrInsufficientPermissions) {
			t.Fatalf("%s: expected INSUFFICIENT_PERMISSIONS, got %v", tc.role, err)
		}
	}
}

type stubPasswordChecker struct {
	must bool
	err  error
}

func (s stubPasswordChecker) MustChangePassword(context.Context, string) (bool, error) {
	return s.must, s.err
}

func TestPasswordGate(t *testing.T) {
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, rec := newCtx(domain.RoleConsultant)
	if err := PasswordGate(stubPasswordChecker{})(next)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newCtx(domain.RoleConsultant)
	if err := PasswordGate(stubPasswordChecker{must: true})(next)(c); !errors.Is(err, domain.ErrPasswordChangeRequired) {
		t.Fatalf("expected PASSWORD_CHANGE_REQUIRED, got %v", err)
	}

	c, _ = newCtx(domain.RoleConsultant)
	if err := PasswordGate(stubPasswordChecker{err: domain.ErrUserNotFound})(next)(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected checker error, got %v", err)
	}
}
