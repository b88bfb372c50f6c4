package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// SchedulingHandler serves the two session booking workflows nested under a
// therapy: psychologist propositions and consultant session requests.
type SchedulingHandler struct {
	propositions ports.PropositionService
	requests     ports.SessionRequestService
}

func NewSchedulingHandler(propositions ports.PropositionService, requests ports.SessionRequestService) *SchedulingHandler {
	return &SchedulingHandler{propositions: propositions, requests: requests}
}

type createPropositionRequest struct {
	ProposedSlots []time.Time `json:"proposed_slots" validate:"required,min=1"`
	Type          string      `json:"type" validate:"omitempty,oneof=INITIAL RECURRENT EXTRAORDINARY FOLLOW_UP"`
	Duration      int         `json:"duration" validate:"gte=0"`
}

type selectSlotRequest struct {
	SelectedSlot time.Time `json:"selected_slot" validate:"required"`
}

type createSessionRequestRequest struct {
	ProposedAt time.Time `json:"proposed_at" validate:"required"`
	Duration   int       `json:"duration" validate:"gte=0"`
	Type       string    `json:"type" validate:"omitempty,oneof=INITIAL RECURRENT EXTRAORDINARY FOLLOW_UP"`
	Notes      string    `json:"notes"`
}

type respondRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// CreateProposition handles POST /therapies/:id/propositions.
//
// @Summary      Offer candidate session datetimes
// @Tags         propositions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Therapy id"
// @Param        body  body      createPropositionRequest  true  "Candidate datetimes"
// @Success      201   {object}  envelope{data=domain.ScheduleProposition}
// @Failure      400   {object}  map[string]any
// @Router       /therapies/{id}/propositions [post]
func (h *SchedulingHandler) CreateProposition(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createPropositionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.propositions.Create(c.Request().Context(), actor, c.Param("id"), ports.CreatePropositionInput{
		ProposedSlots: req.ProposedSlots,
		Type:          domain.SessionType(req.Type),
		Duration:      req.Duration,
	})
	if err != nil {
		return err
	}
	return created(c, p)
}

// ListPropositions handles GET /therapies/:id/propositions.
//
// @Summary      List propositions of a therapy
// @Tags         propositions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Therapy id"
// @Success      200  {object}  envelope{data=[]domain.ScheduleProposition}
// @Router       /therapies/{id}/propositions [get]
func (h *SchedulingHandler) ListPropositions(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.propositions.List(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, items)
}

// SelectSlot handles POST /therapies/:id/propositions/:propositionId/select.
//
// @Summary      Select one proposed datetime
// @Tags         propositions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id             path      string             true  "Therapy id"
// @Param        propositionId  path      string             true  "Proposition id"
// @Param        body           body      selectSlotRequest  true  "Chosen datetime"
// @Success      201            {object}  envelope{data=ports.SelectionResult}
// @Failure      400            {object}  map[string]any
// @Router       /therapies/{id}/propositions/{propositionId}/select [post]
func (h *SchedulingHandler) SelectSlot(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req selectSlotRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.propositions.SelectSlot(c.Request().Context(), actor, c.Param("id"), c.Param("propositionId"), req.SelectedSlot)
	if err != nil {
		return err
	}
	return created(c, result)
}

// CreateSessionRequest handles POST /therapies/:id/session-requests.
//
// @Summary      Request a session at one datetime
// @Tags         session-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Therapy id"
// @Param        body  body      createSessionRequestRequest  true  "Requested datetime"
// @Success      201   {object}  envelope{data=domain.SessionRequest}
// @Failure      400   {object}  map[string]any
// @Router       /therapies/{id}/session-requests [post]
func (h *SchedulingHandler) CreateSessionRequest(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createSessionRequestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.requests.Create(c.Request().Context(), actor, c.Param("id"), ports.CreateSessionRequestInput{
		ProposedAt: req.ProposedAt,
		Duration:   req.Duration,
		Type:       domain.SessionType(req.Type),
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, r)
}

// ListSessionRequests handles GET /therapies/:id/session-requests.
//
// @Summary      List session requests of a therapy
// @Tags         session-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Therapy id"
// @Success      200  {object}  envelope{data=[]domain.SessionRequest}
// @Router       /therapies/{id}/session-requests [get]
func (h *SchedulingHandler) ListSessionRequests(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.requests.List(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, items)
}

// RespondSessionRequest handles POST /therapies/:id/session-requests/:requestId/respond.
//
// @Summary      Accept or reject a session request
// @Tags         session-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string          true  "Therapy id"
// @Param        requestId  path      string          true  "Session request id"
// @Param        body       body      respondRequest  true  "Decision"
// @Success      200        {object}  envelope{data=ports.SelectionResult}
// @Failure      400        {object}  map[string]any
// @Router       /therapies/{id}/session-requests/{requestId}/respond [post]
func (h *SchedulingHandler) RespondSessionRequest(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req respondRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.requests.Respond(c.Request().Context(), actor, c.Param("id"), c.Param("requestId"), *req.Accept)
	if err != nil {
		return err
	}
	return ok(c, result)
}
