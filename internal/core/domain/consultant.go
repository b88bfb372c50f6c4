package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OnboardingSteps is the number of steps a consultant completes before a
// PENDING therapy can become ACTIVE.
const OnboardingSteps = 6

type OnboardingStatus string

const (
	OnboardingIncomplete OnboardingStatus = "INCOMPLETE"
	OnboardingCompleted  OnboardingStatus = "COMPLETED"
)

// ConsultantProfile tracks a consultant's personal data and onboarding.
type ConsultantProfile struct {
	ID               string                     `json:"id"`
	UserID           string                     `json:"user_id"`
	Phone            string                     `json:"phone,omitempty"`
	BirthDate        *time.Time                 `json:"birth_date,omitempty"`
	EmergencyContact string                     `json:"emergency_contact,omitempty"`
	OnboardingStatus OnboardingStatus           `json:"onboarding_status"`
	OnboardingStep   int                        `json:"onboarding_step"`
	OnboardingData   map[string]json.RawMessage `json:"onboarding_data"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// NewConsultantProfile returns an empty profile positioned at step 1.
func NewConsultantProfile(userID string) *ConsultantProfile {
	return &ConsultantProfile{
		UserID:           userID,
		OnboardingStatus: OnboardingIncomplete,
		OnboardingStep:   1,
		OnboardingData:   map[string]json.RawMessage{},
	}
}

// StepKey is the onboarding data key of step n.
func StepKey(n int) string {
	return fmt.Sprintf("step%d", n)
}

// SubmitStep records the payload for step and advances the cursor. Earlier
// steps may be resubmitted; skipping ahead is rejected. It reports whether
// the submission completed onboarding.
func (p *ConsultantProfile) SubmitStep(step int, data json.RawMessage) (bool, error) {
	if step < 1 || step > OnboardingSteps {
		return false, ErrInvalidOnboardingStep.WithMessage("step must be between 1 and %d", OnboardingSteps)
	}
	if p.OnboardingStatus != OnboardingCompleted && step > p.OnboardingStep {
		return false, ErrInvalidOnboardingStep.WithMessage("expected step %d, got %d", p.OnboardingStep, step)
	}
	if p.OnboardingData == nil {
		p.OnboardingData = map[string]json.RawMessage{}
	}
	p.OnboardingData[StepKey(step)] = data

	if p.OnboardingStatus == OnboardingCompleted {
		return false, nil
	}
	if step == p.OnboardingStep && step < OnboardingSteps {
		p.OnboardingStep = step + 1
		return false, nil
	}
	if step == OnboardingSteps {
		p.OnboardingStatus = OnboardingCompleted
		return true, nil
	}
	return false, nil
}
