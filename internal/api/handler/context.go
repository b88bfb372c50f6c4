package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
)

// Context keys set by the Auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// ctxActor extracts the caller injected by the Auth middleware. A missing
// user id means the route was mounted without authentication.
func ctxActor(c echo.Context) (domain.Actor, error) {
	userID, _ := c.Get(CtxUserID).(string)
	role, _ := c.Get(CtxRole).(domain.Role)
	if userID == "" || !role.Valid() {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return domain.Actor{UserID: userID, Role: role}, nil
}
