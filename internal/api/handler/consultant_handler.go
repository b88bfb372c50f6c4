package handler

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type ConsultantHandler struct {
	service ports.ConsultantService
}

func NewConsultantHandler(service ports.ConsultantService) *ConsultantHandler {
	return &ConsultantHandler{service: service}
}

type consultantProfileRequest struct {
	Phone            *string    `json:"phone"`
	EmergencyContact *string    `json:"emergency_contact"`
	BirthDate        *time.Time `json:"birth_date"`
}

type onboardingStepRequest struct {
	Data json.RawMessage `json:"data" validate:"required"`
}

type onboardingResponse struct {
	Status domain.OnboardingStatus    `json:"status"`
	Step   int                        `json:"step"`
	Data   map[string]json.RawMessage `json:"data"`
}

func toOnboardingResponse(p *domain.ConsultantProfile) onboardingResponse {
	return onboardingResponse{Status: p.OnboardingStatus, Step: p.OnboardingStep, Data: p.OnboardingData}
}

// MyProfile handles GET /consultants/me/profile.
//
// @Summary      Get own consultant profile
// @Tags         consultants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=domain.ConsultantProfile}
// @Router       /consultants/me/profile [get]
func (h *ConsultantHandler) MyProfile(c echo.Context) error {
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

// UpdateMyProfile handles PUT /consultants/me/profile.
//
// @Summary      Update own consultant profile
// @Tags         consultants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      consultantProfileRequest  true  "Profile fields to change"
// @Success      200   {object}  envelope{data=domain.ConsultantProfile}
// @Router       /consultants/me/profile [put]
func (h *ConsultantHandler) UpdateMyProfile(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req consultantProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.service.UpdateMyProfile(c.Request().Context(), actor.UserID, ports.ConsultantProfileInput{
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
		BirthDate:        req.BirthDate,
	})
	if err != nil {
		return err
	}
	return ok(c, profile)
}

// Onboarding handles GET /consultants/me/onboarding.
//
// @Summary      Get onboarding progress
// @Tags         consultants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=onboardingResponse}
// @Router       /consultants/me/onboarding [get]
func (h *ConsultantHandler) Onboarding(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	profile, err := h.service.MyProfile(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return ok(c, toOnboardingResponse(profile))
}

// SubmitOnboardingStep handles POST /consultants/me/onboarding/steps/:step.
//
// @Summary      Submit an onboarding step
// @Tags         consultants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        step  path      int                    true  "Step number (1-6)"
// @Param        body  body      onboardingStepRequest  true  "Step payload"
// @Success      200   {object}  envelope{data=onboardingResponse}
// @Failure      400   {object}  map[string]any
// @Router       /consultants/me/onboarding/steps/{step} [post]
func (h *ConsultantHandler) SubmitOnboardingStep(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return domain.ErrInvalidOnboardingStep
	}
	var req onboardingStepRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.service.SubmitOnboardingStep(c.Request().Context(), actor.UserID, step, req.Data)
	if err != nil {
		return err
	}
	return ok(c, toOnboardingResponse(profile))
}
