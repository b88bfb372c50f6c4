package domain

import "time"

// DefaultSessionDuration is the session length in minutes when none is given.
const DefaultSessionDuration = 60

// SessionStatus represents the lifecycle state of a therapy session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
	SessionPostponed SessionStatus = "POSTPONED"
)

// sessionTransitions defines the allowed state machine transitions.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionScheduled: {SessionCompleted, SessionCancelled, SessionPostponed},
	SessionPostponed: {SessionScheduled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionCancelled, SessionPostponed:
		return true
	}
	return false
}

// SessionType describes how a session came to be.
type SessionType string

const (
	SessionInitial       SessionType = "INITIAL"
	SessionRecurrent     SessionType = "RECURRENT"
	SessionExtraordinary SessionType = "EXTRAORDINARY"
	SessionFollowUp      SessionType = "FOLLOW_UP"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionInitial, SessionRecurrent, SessionExtraordinary, SessionFollowUp:
		return true
	}
	return false
}

// TherapySession is the unit of billable and clinical work.
type TherapySession struct {
	ID            string        `json:"id"`
	TherapyID     string        `json:"therapy_id"`
	PropositionID *string       `json:"proposition_id,omitempty"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	Duration      int           `json:"duration"`
	Status        SessionStatus `json:"status"`
	Type          SessionType   `json:"type"`
	SessionFee    *float64      `json:"session_fee"`
	PostponedTo   *time.Time    `json:"postponed_to"`
	CancelledBy   *string       `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason  string        `json:"cancel_reason,omitempty"`
	MediaURL      string        `json:"media_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewSession builds a SCHEDULED session whose fee defaults from the therapy
// billing plan.
func NewSession(therapy *Therapy, at time.Time, duration int, typ SessionType) TherapySession {
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	if !typ.Valid() {
		typ = SessionInitial
	}
	return TherapySession{
		TherapyID:   therapy.ID,
		ScheduledAt: at.UTC(),
		Duration:    duration,
		Status:      SessionScheduled,
		Type:        typ,
		SessionFee:  therapy.DefaultFee(),
	}
}

// ResolveFee returns the session fee, falling back to the billing plan.
func (s *TherapySession) ResolveFee(plan *BillingPlan) float64 {
	if s.SessionFee != nil {
		return *s.SessionFee
	}
	if plan != nil {
		return plan.DefaultFee
	}
	return 0
}

// Complete marks a SCHEDULED session as done.
func (s *TherapySession) Complete() error {
	if !s.Status.CanTransitionTo(SessionCompleted) {
		return InvalidSessionStatus(s.Status)
	}
	s.Status = SessionCompleted
	return nil
}

// Cancel records who cancelled a SCHEDULED session and why.
func (s *TherapySession) Cancel(by string, at time.Time, reason string) error {
	if !s.Status.CanTransitionTo(SessionCancelled) {
		return InvalidSessionStatus(s.Status)
	}
	s.Status = SessionCancelled
	s.CancelledBy = &by
	at = at.UTC()
	s.CancelledAt = &at
	s.CancelReason = reason
	return nil
}

// Postpone stages a new datetime without moving ScheduledAt yet.
func (s *TherapySession) Postpone(to time.Time) error {
	if !s.Status.CanTransitionTo(SessionPostponed) {
		return InvalidSessionStatus(s.Status)
	}
	to = to.UTC()
	s.Status = SessionPostponed
	s.PostponedTo = &to
	return nil
}

// ConfirmPostpone commits the staged datetime and reschedules the session.
func (s *TherapySession) ConfirmPostpone() error {
	if !s.Status.CanTransitionTo(SessionScheduled) || s.PostponedTo == nil {
		return InvalidSessionStatus(s.Status)
	}
	s.ScheduledAt = *s.PostponedTo
	s.PostponedTo = nil
	s.Status = SessionScheduled
	return nil
}

// SessionView is a session joined with the data callers usually need.
type SessionView struct {
	TherapySession
	EffectiveFee   float64      `json:"effective_fee"`
	PsychologistID string       `json:"psychologist_id"`
	ConsultantID   string       `json:"consultant_id"`
	Psychologist   *UserSummary `json:"psychologist,omitempty"`
	Consultant     *UserSummary `json:"consultant,omitempty"`
}
