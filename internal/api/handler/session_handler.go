package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type cancelSessionRequest struct {
	Reason string `json:"reason"`
}

type postponeSessionRequest struct {
	PostponedTo time.Time `json:"postponed_to" validate:"required"`
}

type sessionFeeRequest struct {
	SessionFee *float64 `json:"session_fee" validate:"omitnil,gte=0"`
}

type sessionMediaRequest struct {
	MediaURL string `json:"media_url" validate:"required,url"`
}

// List handles GET /sessions.
//
// @Summary      List sessions visible to the caller
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        therapy_id  query     string  false  "Therapy id"
// @Param        status      query     string  false  "Session status"
// @Param        from        query     string  false  "RFC3339 lower bound"
// @Param        to          query     string  false  "RFC3339 upper bound"
// @Param        page        query     int     false  "Page"
// @Param        per_page    query     int     false  "Page size"
// @Success      200         {object}  envelope{data=[]domain.SessionView}
// @Router       /sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	in := ports.ListSessionsInput{
		TherapyID: c.QueryParam("therapy_id"),
		Status:    domain.SessionStatus(c.QueryParam("status")),
		Page:      page,
	}
	if in.Status != "" && !in.Status.Valid() {
		return domain.ErrValidation.WithMessage("unknown session status %q", in.Status)
	}
	var from, to time.Time
	err = echo.QueryParamsBinder(c).
		Time("from", &from, time.RFC3339).
		Time("to", &to, time.RFC3339).
		BindError()
	if err != nil {
		return domain.ErrValidation.WithMessage("from and to must be RFC3339 datetimes")
	}
	if !from.IsZero() {
		in.From = &from
	}
	if !to.IsZero() {
		in.To = &to
	}

	result, err := h.service.List(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// Get handles GET /sessions/:id.
//
// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  envelope{data=domain.SessionView}
// @Failure      404  {object}  map[string]any
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, view)
}

// Complete handles POST /sessions/:id/complete.
//
// @Summary      Mark a session as completed
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  envelope{data=domain.TherapySession}
// @Failure      422  {object}  map[string]any
// @Router       /sessions/{id}/complete [post]
func (h *SessionHandler) Complete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	s, err := h.service.Complete(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, s)
}

// Cancel handles POST /sessions/:id/cancel.
//
// @Summary      Cancel a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true   "Session id"
// @Param        body  body      cancelSessionRequest  false  "Reason"
// @Success      200   {object}  envelope{data=domain.TherapySession}
// @Failure      422   {object}  map[string]any
// @Router       /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req cancelSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.service.Cancel(c.Request().Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		return err
	}
	return ok(c, s)
}

// Postpone handles POST /sessions/:id/postpone.
//
// @Summary      Postpone a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Session id"
// @Param        body  body      postponeSessionRequest  true  "New datetime"
// @Success      200   {object}  envelope{data=domain.TherapySession}
// @Failure      422   {object}  map[string]any
// @Router       /sessions/{id}/postpone [post]
func (h *SessionHandler) Postpone(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req postponeSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.service.Postpone(c.Request().Context(), actor, c.Param("id"), req.PostponedTo)
	if err != nil {
		return err
	}
	return ok(c, s)
}

// ConfirmPostpone handles POST /sessions/:id/confirm-postpone.
//
// @Summary      Confirm a postponed session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  envelope{data=domain.TherapySession}
// @Failure      422  {object}  map[string]any
// @Router       /sessions/{id}/confirm-postpone [post]
func (h *SessionHandler) ConfirmPostpone(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	s, err := h.service.ConfirmPostpone(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, s)
}

// UpdateFee handles PATCH /sessions/:id/fee. A null fee falls back to the
// therapy billing plan.
//
// @Summary      Set or clear a session fee
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Session id"
// @Param        body  body      sessionFeeRequest  true  "Fee"
// @Success      200   {object}  envelope{data=domain.TherapySession}
// @Router       /sessions/{id}/fee [patch]
func (h *SessionHandler) UpdateFee(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req sessionFeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.service.UpdateFee(c.Request().Context(), actor, c.Param("id"), req.SessionFee)
	if err != nil {
		return err
	}
	return ok(c, s)
}

// AttachMedia handles POST /sessions/:id/media.
//
// @Summary      Attach an uploaded media URL to a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Session id"
// @Param        body  body      sessionMediaRequest  true  "Media URL"
// @Success      200   {object}  envelope{data=domain.TherapySession}
// @Router       /sessions/{id}/media [post]
func (h *SessionHandler) AttachMedia(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req sessionMediaRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.service.AttachMedia(c.Request().Context(), actor, c.Param("id"), req.MediaURL)
	if err != nil {
		return err
	}
	return ok(c, s)
}
