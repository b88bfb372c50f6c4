package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/api/handler"
	"github.com/terapia/practice-api/internal/core/domain"
)

// RequireRoles enforces role-based access control. The caller passes when
// its role grants any of allowedRoles, so ADMIN_PSYCHOLOGIST satisfies both
// ADMIN and PSYCHOLOGIST routes.
func RequireRoles(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(handler.CtxRole).(domain.Role)
			if !role.HasAny(allowedRoles...) {
				return domain.ErrInsufficientPermissions
			}
			return next(c)
		}
	}
}

// PasswordChecker reports whether a user still has to replace a temporary
// password.
type PasswordChecker interface {
	MustChangePassword(ctx context.Context, userID string) (bool, error)
}

// PasswordGate blocks every route it wraps until the caller has changed the
// temporary password it was invited with. Mount it after Auth.
func PasswordGate(checker PasswordChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(handler.CtxUserID).(string)
			if userID == "" {
				return domain.ErrUnauthenticated
			}
			must, err := checker.MustChangePassword(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if must {
				return domain.ErrPasswordChangeRequired
			}
			return next(c)
		}
	}
}
