package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/api/handler"
	"github.com/terapia/practice-api/internal/core/domain"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, called, err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "user-1",
		"role": "PSYCHOLOGIST",
		"typ":  "access",
		"exp":  time.Now().Add(time.Minute).Unix(),
	})

	c, called, err := runAuth(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if c.Get(handler.CtxUserID) != "user-1" {
		t.Fatalf("user_id not set")
	}
	if c.Get(handler.CtxRole) != domain.RolePsychologist {
		t.Fatalf("role not set, got %v", c.Get(handler.CtxRole))
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	exp := time.Now().Add(time.Minute).Unix()
	cases := map[string]string{
		"missing header": "",
		"invalid format": "Token abc",
		"invalid token":  "Bearer not-a-token",
		"refresh token":  "Bearer " + signToken(t, jwt.MapClaims{"sub": "user-1", "typ": "refresh", "exp": exp}),
		"expired":        "Bearer " + signToken(t, jwt.MapClaims{"sub": "user-1", "role": "ADMIN", "typ": "access", "exp": time.Now().Add(-time.Minute).Unix()}),
		"unknown role":   "Bearer " + signToken(t, jwt.MapClaims{"sub": "user-1", "role": "ROOT", "typ": "access", "exp": exp}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, called, err := runAuth(t, header)
			if called {
				t.Fatalf("should not reach next")
			}
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected UNAUTHENTICATED, got %v", err)
			}
		})
	}
}
