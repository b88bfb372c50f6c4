package domain

import "time"

type PropositionStatus string

const (
	PropositionPending  PropositionStatus = "PENDING"
	PropositionAccepted PropositionStatus = "ACCEPTED"
)

// ScheduleProposition is a psychologist-offered batch of candidate datetimes.
type ScheduleProposition struct {
	ID            string            `json:"id"`
	TherapyID     string            `json:"therapy_id"`
	ProposedSlots []time.Time       `json:"proposed_slots"`
	SelectedSlot  *time.Time        `json:"selected_slot,omitempty"`
	Status        PropositionStatus `json:"status"`
	Type          SessionType       `json:"type"`
	Duration      int               `json:"duration"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Offers reports whether slot is exactly one of the proposed datetimes.
func (p *ScheduleProposition) Offers(slot time.Time) bool {
	for _, s := range p.ProposedSlots {
		if s.Equal(slot) {
			return true
		}
	}
	return false
}

// Select accepts slot, which must be PENDING and exactly proposed.
func (p *ScheduleProposition) Select(slot time.Time) error {
	if p.Status != PropositionPending {
		return ErrPropositionAlreadyProcessed
	}
	if !p.Offers(slot) {
		return ErrInvalidSelectedSlot
	}
	slot = slot.UTC()
	p.SelectedSlot = &slot
	p.Status = PropositionAccepted
	return nil
}

type SessionRequestStatus string

const (
	RequestPending  SessionRequestStatus = "PENDING"
	RequestAccepted SessionRequestStatus = "ACCEPTED"
	RequestRejected SessionRequestStatus = "REJECTED"
)

// SessionRequest is a consultant-offered single candidate datetime.
type SessionRequest struct {
	ID           string               `json:"id"`
	TherapyID    string               `json:"therapy_id"`
	ConsultantID string               `json:"consultant_id"`
	ProposedAt   time.Time            `json:"proposed_at"`
	Duration     int                  `json:"duration"`
	Type         SessionType          `json:"type"`
	Notes        string               `json:"notes,omitempty"`
	Status       SessionRequestStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Respond moves a PENDING request to ACCEPTED or REJECTED.
func (r *SessionRequest) Respond(accept bool) error {
	if r.Status != RequestPending {
		return ErrRequestAlreadyProcessed
	}
	if accept {
		r.Status = RequestAccepted
	} else {
		r.Status = RequestRejected
	}
	return nil
}

// TherapyRequest is a consultant's proposal to start therapy with a
// psychologist.
type TherapyRequest struct {
	ID             string               `json:"id"`
	ConsultantID   string               `json:"consultant_id"`
	PsychologistID string               `json:"psychologist_id"`
	Message        string               `json:"message,omitempty"`
	Status         SessionRequestStatus `json:"status"`
	TherapyID      *string              `json:"therapy_id,omitempty"`
	Consultant     *UserSummary         `json:"consultant,omitempty"`
	Psychologist   *UserSummary         `json:"psychologist,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Respond moves a PENDING therapy request to ACCEPTED or REJECTED.
func (r *TherapyRequest) Respond(accept bool) error {
	if r.Status != RequestPending {
		return ErrRequestAlreadyProcessed
	}
	if accept {
		r.Status = RequestAccepted
	} else {
		r.Status = RequestRejected
	}
	return nil
}
