package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// TherapyHandler serves therapies and their recurrence configuration.
type TherapyHandler struct {
	therapies  ports.TherapyService
	recurrence ports.RecurrenceService
}

func NewTherapyHandler(therapies ports.TherapyService, recurrence ports.RecurrenceService) *TherapyHandler {
	return &TherapyHandler{therapies: therapies, recurrence: recurrence}
}

type billingRequest struct {
	BillingType string   `json:"billing_type" validate:"omitempty,oneof=PER_SESSION MONTHLY PACKAGE"`
	DefaultFee  *float64 `json:"default_fee" validate:"omitnil,gte=0"`
	Recurrence  string   `json:"recurrence"`
}

type inviteRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	Name     string         `json:"name"`
	Modality string         `json:"modality"`
	Notes    string         `json:"notes"`
	Billing  billingRequest `json:"billing"`
}

type updateTherapyRequest struct {
	Modality *string `json:"modality"`
	Notes    *string `json:"notes"`
	Status   *string `json:"status" validate:"omitnil,oneof=ACTIVE PAUSED COMPLETED CANCELLED"`
}

type recurrenceRequest struct {
	DayOfWeek     int       `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime     string    `json:"start_time" validate:"required,hhmm"`
	Duration      int       `json:"duration" validate:"required,gt=0"`
	Frequency     string    `json:"frequency" validate:"required,oneof=WEEKLY BIWEEKLY"`
	SessionsCount *int      `json:"sessions_count" validate:"omitnil,gt=0"`
	StartDate     time.Time `json:"start_date" validate:"required"`
}

// Invite handles POST /therapies.
//
// @Summary      Invite a consultant into a new therapy
// @Tags         therapies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      inviteRequest  true  "Consultant and billing"
// @Success      201   {object}  envelope{data=domain.Therapy}
// @Failure      409   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /therapies [post]
func (h *TherapyHandler) Invite(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req inviteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	therapy, err := h.therapies.Invite(c.Request().Context(), actor, ports.InviteConsultantInput{
		Email:       req.Email,
		Name:        req.Name,
		Modality:    req.Modality,
		Notes:       req.Notes,
		BillingType: domain.BillingType(req.Billing.BillingType),
		DefaultFee:  req.Billing.DefaultFee,
		Recurrence:  req.Billing.Recurrence,
	})
	if err != nil {
		return err
	}
	return created(c, therapy)
}

// List handles GET /therapies.
//
// @Summary      List the caller's therapies
// @Tags         therapies
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        page      query     int     false  "Page"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  envelope{data=[]domain.Therapy}
// @Router       /therapies [get]
func (h *TherapyHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	result, err := h.therapies.List(c.Request().Context(), actor, domain.TherapyStatus(c.QueryParam("status")), page)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// Get handles GET /therapies/:id.
//
// @Summary      Get a therapy
// @Tags         therapies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Therapy id"
// @Success      200  {object}  envelope{data=domain.Therapy}
// @Failure      404  {object}  map[string]any
// @Router       /therapies/{id} [get]
func (h *TherapyHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	therapy, err := h.therapies.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, therapy)
}

// Update handles PATCH /therapies/:id.
//
// @Summary      Update a therapy
// @Tags         therapies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Therapy id"
// @Param        body  body      updateTherapyRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=domain.Therapy}
// @Failure      409   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /therapies/{id} [patch]
func (h *TherapyHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateTherapyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := ports.UpdateTherapyInput{Modality: req.Modality, Notes: req.Notes}
	if req.Status != nil {
		status := domain.TherapyStatus(*req.Status)
		in.Status = &status
	}
	therapy, err := h.therapies.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return ok(c, therapy)
}

// Delete handles DELETE /therapies/:id.
//
// @Summary      Soft delete a therapy
// @Tags         therapies
// @Security     BearerAuth
// @Param        id   path  string  true  "Therapy id"
// @Success      204
// @Failure      404  {object}  map[string]any
// @Router       /therapies/{id} [delete]
func (h *TherapyHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.therapies.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetRecurrence handles GET /therapies/:id/recurrence.
//
// @Summary      Get the recurrence configuration
// @Tags         recurrence
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Therapy id"
// @Success      200  {object}  envelope{data=domain.RecurrenceConfiguration}
// @Failure      404  {object}  map[string]any
// @Router       /therapies/{id}/recurrence [get]
func (h *TherapyHandler) GetRecurrence(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	cfg, err := h.recurrence.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, cfg)
}

// ConfigureRecurrence handles PUT /therapies/:id/recurrence. Future scheduled
// recurrent sessions are regenerated from start_date.
//
// @Summary      Configure recurring sessions
// @Tags         recurrence
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Therapy id"
// @Param        body  body      recurrenceRequest  true  "Recurrence"
// @Success      200   {object}  envelope{data=ports.RecurrenceResult}
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /therapies/{id}/recurrence [put]
func (h *TherapyHandler) ConfigureRecurrence(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req recurrenceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.recurrence.Configure(c.Request().Context(), actor, c.Param("id"), ports.RecurrenceInput{
		DayOfWeek:     req.DayOfWeek,
		StartTime:     req.StartTime,
		Duration:      req.Duration,
		Frequency:     domain.Frequency(req.Frequency),
		SessionsCount: req.SessionsCount,
		StartDate:     req.StartDate,
	})
	if err != nil {
		return err
	}
	return ok(c, result)
}
