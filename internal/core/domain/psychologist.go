package domain

import "time"

// DefaultSessionFee is used when a psychologist has not configured a fee.
const DefaultSessionFee = 500.0

// PsychologistProfile holds the professional data of a psychologist user.
type PsychologistProfile struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	LicenseNumber   string             `json:"license_number,omitempty"`
	Bio             string             `json:"bio,omitempty"`
	Specializations []string           `json:"specializations"`
	Modalities      []string           `json:"modalities"`
	Languages       []string           `json:"languages"`
	SessionFee      *float64           `json:"session_fee,omitempty"`
	YearsExperience int                `json:"years_experience"`
	User            *UserSummary       `json:"user,omitempty"`
	Slots           []AvailabilitySlot `json:"availability,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Fee returns the configured session fee or DefaultSessionFee.
func (p *PsychologistProfile) Fee() float64 {
	if p.SessionFee != nil {
		return *p.SessionFee
	}
	return DefaultSessionFee
}
