package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/api/handler"
	"github.com/terapia/practice-api/internal/core/domain"
)

// Auth validates the access JWT and injects the caller's user id and role
// into the context. Refresh tokens are rejected.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return domain.ErrUnauthenticated.WithMessage("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrUnauthenticated.WithMessage("invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return domain.ErrUnauthenticated.WithMessage("invalid token")
			}
			if typ, _ := claims["typ"].(string); typ != "access" {
				return domain.ErrUnauthenticated.WithMessage("invalid token type")
			}

			sub, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			if sub == "" || !domain.Role(role).Valid() {
				return domain.ErrUnauthenticated.WithMessage("token missing identity")
			}

			c.Set(handler.CtxUserID, sub)
			c.Set(handler.CtxRole, domain.Role(role))

			return next(c)
		}
	}
}
