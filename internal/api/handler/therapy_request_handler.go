package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type TherapyRequestHandler struct {
	service ports.TherapyRequestService
}

func NewTherapyRequestHandler(service ports.TherapyRequestService) *TherapyRequestHandler {
	return &TherapyRequestHandler{service: service}
}

type createTherapyRequestRequest struct {
	PsychologistID string `json:"psychologist_id" validate:"required"`
	Message        string `json:"message"`
}

// Create handles POST /therapy-requests.
//
// @Summary      Ask a psychologist to start a therapy
// @Tags         therapy-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTherapyRequestRequest  true  "Target psychologist"
// @Success      201   {object}  envelope{data=domain.TherapyRequest}
// @Failure      409   {object}  map[string]any
// @Router       /therapy-requests [post]
func (h *TherapyRequestHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req createTherapyRequestRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.service.Create(c.Request().Context(), actor, req.PsychologistID, req.Message)
	if err != nil {
		return err
	}
	return created(c, r)
}

// List handles GET /therapy-requests.
//
// @Summary      List therapy requests sent or received
// @Tags         therapy-requests
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "PENDING, ACCEPTED or REJECTED"
// @Param        page      query     int     false  "Page"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  envelope{data=[]domain.TherapyRequest}
// @Router       /therapy-requests [get]
func (h *TherapyRequestHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	result, err := h.service.List(c.Request().Context(), actor, domain.SessionRequestStatus(c.QueryParam("status")), page)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// Respond handles POST /therapy-requests/:id/respond.
//
// @Summary      Accept or reject a therapy request
// @Tags         therapy-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Therapy request id"
// @Param        body  body      respondRequest  true  "Decision"
// @Success      200   {object}  envelope{data=domain.TherapyRequest}
// @Failure      409   {object}  map[string]any
// @Router       /therapy-requests/{id}/respond [post]
func (h *TherapyRequestHandler) Respond(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req respondRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.service.Respond(c.Request().Context(), actor, c.Param("id"), *req.Accept)
	if err != nil {
		return err
	}
	return ok(c, r)
}
