package domain

import "time"

// TherapyStatus represents the lifecycle state of a therapy.
type TherapyStatus string

const (
	TherapyPending   TherapyStatus = "PENDING"
	TherapyActive    TherapyStatus = "ACTIVE"
	TherapyPaused    TherapyStatus = "PAUSED"
	TherapyCompleted TherapyStatus = "COMPLETED"
	TherapyCancelled TherapyStatus = "CANCELLED"
)

var therapyTransitions = map[TherapyStatus][]TherapyStatus{
	TherapyPending: {TherapyActive, TherapyCancelled},
	TherapyActive:  {TherapyPaused, TherapyCompleted, TherapyCancelled},
	TherapyPaused:  {TherapyActive, TherapyCompleted, TherapyCancelled},
}

// CanTransitionTo reports whether a therapy may move from s to next.
func (s TherapyStatus) CanTransitionTo(next TherapyStatus) bool {
	for _, allowed := range therapyTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type TherapyOrigin string

const (
	OriginPsychologistInitiated TherapyOrigin = "PSYCHOLOGIST_INITIATED"
	OriginConsultantInitiated   TherapyOrigin = "CONSULTANT_INITIATED"
)

type BillingType string

const (
	BillingPerSession BillingType = "PER_SESSION"
	BillingMonthly    BillingType = "MONTHLY"
	BillingPackage    BillingType = "PACKAGE"
)

// DefaultModality is used for therapies created from a consultant request.
const DefaultModality = "virtual"

// BillingPlan holds the default pricing of a therapy.
type BillingPlan struct {
	ID          string      `json:"id"`
	TherapyID   string      `json:"therapy_id"`
	BillingType BillingType `json:"billing_type"`
	DefaultFee  float64     `json:"default_fee"`
	Recurrence  string      `json:"recurrence,omitempty"`
}

// Therapy is the relationship between one psychologist and one consultant.
type Therapy struct {
	ID             string                   `json:"id"`
	PsychologistID string                   `json:"psychologist_id"`
	ConsultantID   string                   `json:"consultant_id"`
	Origin         TherapyOrigin            `json:"origin"`
	Status         TherapyStatus            `json:"status"`
	Modality       string                   `json:"modality"`
	Notes          string                   `json:"notes,omitempty"`
	BillingPlan    *BillingPlan             `json:"billing_plan,omitempty"`
	Recurrence     *RecurrenceConfiguration `json:"recurrence,omitempty"`
	Psychologist   *UserSummary             `json:"psychologist,omitempty"`
	Consultant     *UserSummary             `json:"consultant,omitempty"`
	TherapyNotes   []TherapyNote            `json:"therapy_notes,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// IsParticipant reports whether userID is the psychologist or the consultant.
func (t *Therapy) IsParticipant(userID string) bool {
	return t.PsychologistID == userID || t.ConsultantID == userID
}

// CounterpartOf returns the other participant of userID.
func (t *Therapy) CounterpartOf(userID string) string {
	if t.PsychologistID == userID {
		return t.ConsultantID
	}
	return t.PsychologistID
}

// DefaultFee returns the billing plan fee, if any.
func (t *Therapy) DefaultFee() *float64 {
	if t.BillingPlan == nil {
		return nil
	}
	fee := t.BillingPlan.DefaultFee
	return &fee
}

// CanView reports whether the actor may read the therapy.
func (t *Therapy) CanView(a Actor) bool {
	return t.IsParticipant(a.UserID) || a.Role.IsAdmin()
}
