package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type unreadCountResponse struct {
	Count int64 `json:"count"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// List handles GET /notifications.
//
// @Summary      List own notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread_only  query     bool  false  "Only unread"
// @Param        page         query     int   false  "Page"
// @Param        per_page     query     int   false  "Page size"
// @Success      200          {object}  envelope{data=[]domain.Notification}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	var unreadOnly bool
	if err := echo.QueryParamsBinder(c).Bool("unread_only", &unreadOnly).BindError(); err != nil {
		return domain.ErrValidation.WithMessage("unread_only must be a boolean")
	}
	result, err := h.service.List(c.Request().Context(), actor.UserID, unreadOnly, page)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// UnreadCount handles GET /notifications/unread-count.
//
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=unreadCountResponse}
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, unreadCountResponse{Count: n})
}

// MarkRead handles PATCH /notifications/:id/read.
//
// @Summary      Mark a notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Failure      404  {object}  map[string]any
// @Router       /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), actor.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PATCH /notifications/read-all.
//
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=markAllReadResponse}
// @Router       /notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkAllRead(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, markAllReadResponse{Updated: n})
}
