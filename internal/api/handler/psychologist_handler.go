package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// PsychologistHandler serves the psychologist directory and the caller's own
// profile and weekly availability.
type PsychologistHandler struct {
	service ports.PsychologistService
}

func NewPsychologistHandler(service ports.PsychologistService) *PsychologistHandler {
	return &PsychologistHandler{service: service}
}

type psychologistProfileRequest struct {
	LicenseNumber   *string  `json:"license_number"`
	Bio             *string  `json:"bio"`
	Specializations []string `json:"specializations"`
	Modalities      []string `json:"modalities"`
	Languages       []string `json:"languages"`
	SessionFee      *float64 `json:"session_fee" validate:"omitnil,gte=0"`
	YearsExperience *int     `json:"years_experience" validate:"omitnil,gte=0"`
}

// Day and time formats are checked by the service so that each failure keeps
// its own error code.
type slotRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=AVAILABLE BLOCKED"`
}

type availabilityRequest struct {
	Slots []slotRequest `json:"slots" validate:"dive"`
}

// List handles GET /psychologists.
//
// @Summary      List psychologists
// @Tags         psychologists
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page (default 1)"
// @Param        per_page  query     int  false  "Page size (default 20, max 100)"
// @Success      200       {object}  envelope{data=[]domain.PsychologistProfile}
// @Router       /psychologists [get]
func (h *PsychologistHandler) List(c echo.Context) error {
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	result, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// Get handles GET /psychologists/:id.
//
// @Summary      Get a psychologist with availability
// @Tags         psychologists
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Psychologist user id"
// @Success      200  {object}  envelope{data=domain.PsychologistProfile}
// @Failure      404  {object}  map[string]any
// @Router       /psychologists/{id} [get]
func (h *PsychologistHandler) Get(c echo.Context) error {
	profile, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// MyProfile handles GET /psychologists/me/profile.
//
// @Summary      Get own psychologist profile
// @Tags         psychologists
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=domain.PsychologistProfile}
// @Router       /psychologists/me/profile [get]
func (h *PsychologistHandler) MyProfile(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	profile, err := h.service.MyProfile(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// UpdateMyProfile handles PUT /psychologists/me/profile.
//
// @Summary      Update own psychologist profile
// @Tags         psychologists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      psychologistProfileRequest  true  "Profile fields to change"
// @Success      200   {object}  envelope{data=domain.PsychologistProfile}
// @Failure      422   {object}  map[string]any
// @Router       /psychologists/me/profile [put]
func (h *PsychologistHandler) UpdateMyProfile(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req psychologistProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.service.UpdateMyProfile(c.Request().Context(), actor.UserID, ports.PsychologistProfileInput{
		LicenseNumber:   req.LicenseNumber,
		Bio:             req.Bio,
		Specializations: req.Specializations,
		Modalities:      req.Modalities,
		Languages:       req.Languages,
		SessionFee:      req.SessionFee,
		YearsExperience: req.YearsExperience,
	})
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// MyAvailability handles GET /psychologists/me/availability.
//
// @Summary      Get own availability
// @Tags         psychologists
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=[]domain.AvailabilitySlot}
// @Router       /psychologists/me/availability [get]
func (h *PsychologistHandler) MyAvailability(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	slots, err := h.service.MyAvailability(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, slots)
}

// SetMyAvailability handles PUT /psychologists/me/availability. The submitted
// set replaces every manually managed slot; recurrence blocks are kept.
//
// @Summary      Replace own availability
// @Tags         psychologists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      availabilityRequest  true  "Weekly slots"
// @Success      200   {object}  envelope{data=[]domain.AvailabilitySlot}
// @Failure      400   {object}  map[string]any
// @Router       /psychologists/me/availability [put]
func (h *PsychologistHandler) SetMyAvailability(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req availabilityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := make([]ports.SlotInput, 0, len(req.Slots))
	for _, s := range req.Slots {
		typ := domain.AvailabilityType(s.Type)
		if typ == "" {
			typ = domain.SlotAvailable
		}
		in = append(in, ports.SlotInput{DayOfWeek: s.DayOfWeek, StartTime: s.StartTime, EndTime: s.EndTime, Type: typ})
	}
	slots, err := h.service.SetMyAvailability(c.Request().Context(), actor.UserID, in)
	if err != nil {
		return err
	}
	return ok(c, slots)
}
