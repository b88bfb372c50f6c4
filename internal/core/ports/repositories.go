package ports

import (
	"context"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
)

// UserRepository persists users. Soft-deleted users are invisible to every
// read.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, hash string, mustChange bool) error
	UpdateAvatar(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

// PsychologistRepository persists psychologist profiles.
type PsychologistRepository interface {
	Create(ctx context.Context, p *domain.PsychologistProfile) error
	FindByUserID(ctx context.Context, userID string) (*domain.PsychologistProfile, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.PsychologistProfile, int64, error)
	Update(ctx context.Context, p *domain.PsychologistProfile) error
}

// AvailabilityRepository persists availability slots.
type AvailabilityRepository interface {
	ListByProfile(ctx context.Context, profileID string) ([]domain.AvailabilitySlot, error)
	// ReplaceManaged swaps every slot not owned by a therapy for slots.
	ReplaceManaged(ctx context.Context, profileID string, slots []domain.AvailabilitySlot) error
	// ReplaceTherapyBlock removes the BLOCKED slot owned by slot.TherapyID and
	// inserts slot in its place.
	ReplaceTherapyBlock(ctx context.Context, slot *domain.AvailabilitySlot) error
}

// ConsultantRepository persists consultant profiles.
type ConsultantRepository interface {
	Create(ctx context.Context, p *domain.ConsultantProfile) error
	FindByUserID(ctx context.Context, userID string) (*domain.ConsultantProfile, error)
	FindByUserIDForUpdate(ctx context.Context, userID string) (*domain.ConsultantProfile, error)
	Update(ctx context.Context, p *domain.ConsultantProfile) error
}

// TherapyFilter narrows therapy listings. Empty fields are ignored.
type TherapyFilter struct {
	PsychologistID string
	ConsultantID   string
	Status         domain.TherapyStatus
	Page           domain.PageRequest
}

// TherapyRepository persists therapies with their billing plan and
// recurrence configuration. Soft-deleted therapies are invisible.
type TherapyRepository interface {
	// Create inserts the therapy and its billing plan. A second ACTIVE
	// therapy for the same consultant fails with
	// domain.ErrConsultantHasActiveTherapy.
	Create(ctx context.Context, t *domain.Therapy) error
	FindByID(ctx context.Context, id string) (*domain.Therapy, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Therapy, error)
	List(ctx context.Context, f TherapyFilter) ([]domain.Therapy, int64, error)
	// Update saves status, modality and notes.
	Update(ctx context.Context, t *domain.Therapy) error
	HasActive(ctx context.Context, consultantID string) (bool, error)
	ListByConsultant(ctx context.Context, consultantID string, status domain.TherapyStatus) ([]domain.Therapy, error)
	Delete(ctx context.Context, id string) error
	FindRecurrence(ctx context.Context, therapyID string) (*domain.RecurrenceConfiguration, error)
	UpsertRecurrence(ctx context.Context, c *domain.RecurrenceConfiguration) error
}

// SessionFilter narrows session listings. Empty fields are ignored.
type SessionFilter struct {
	TherapyID      string
	PsychologistID string
	ConsultantID   string
	Status         domain.SessionStatus
	From           *time.Time
	To             *time.Time
	Page           domain.PageRequest
}

// SessionRepository persists therapy sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.TherapySession) error
	CreateBatch(ctx context.Context, sessions []domain.TherapySession) error
	FindByID(ctx context.Context, id string) (*domain.TherapySession, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.TherapySession, error)
	Update(ctx context.Context, s *domain.TherapySession) error
	List(ctx context.Context, f SessionFilter) ([]domain.SessionView, int64, error)
	// DeleteScheduledRecurrentFrom removes SCHEDULED+RECURRENT sessions of the
	// therapy with scheduled_at >= from and returns how many were removed.
	DeleteScheduledRecurrentFrom(ctx context.Context, therapyID string, from time.Time) (int64, error)
}

// PropositionRepository persists schedule propositions.
type PropositionRepository interface {
	Create(ctx context.Context, p *domain.ScheduleProposition) error
	FindByIDForUpdate(ctx context.Context, id string) (*domain.ScheduleProposition, error)
	Update(ctx context.Context, p *domain.ScheduleProposition) error
	ListByTherapy(ctx context.Context, therapyID string) ([]domain.ScheduleProposition, error)
}

// SessionRequestRepository persists consultant session requests.
type SessionRequestRepository interface {
	Create(ctx context.Context, r *domain.SessionRequest) error
	FindByIDForUpdate(ctx context.Context, id string) (*domain.SessionRequest, error)
	Update(ctx context.Context, r *domain.SessionRequest) error
	ListByTherapy(ctx context.Context, therapyID string) ([]domain.SessionRequest, error)
}

// TherapyRequestFilter narrows therapy request listings.
type TherapyRequestFilter struct {
	ConsultantID   string
	PsychologistID string
	Status         domain.SessionRequestStatus
	Page           domain.PageRequest
}

// TherapyRequestRepository persists consultant therapy requests.
type TherapyRequestRepository interface {
	Create(ctx context.Context, r *domain.TherapyRequest) error
	FindByIDForUpdate(ctx context.Context, id string) (*domain.TherapyRequest, error)
	Update(ctx context.Context, r *domain.TherapyRequest) error
	ExistsPending(ctx context.Context, consultantID, psychologistID string) (bool, error)
	List(ctx context.Context, f TherapyRequestFilter) ([]domain.TherapyRequest, int64, error)
}

// SessionNoteRepository persists session notes.
type SessionNoteRepository interface {
	Create(ctx context.Context, n *domain.SessionNote) error
	FindByID(ctx context.Context, id string) (*domain.SessionNote, error)
	Update(ctx context.Context, n *domain.SessionNote) error
	Delete(ctx context.Context, id string) error
	// ListVisible returns the session notes viewerID may read.
	ListVisible(ctx context.Context, sessionID, viewerID string) ([]domain.SessionNote, error)
}

// TherapyNoteRepository persists therapy notes.
type TherapyNoteRepository interface {
	Create(ctx context.Context, n *domain.TherapyNote) error
	FindByID(ctx context.Context, id string) (*domain.TherapyNote, error)
	Update(ctx context.Context, n *domain.TherapyNote) error
	Delete(ctx context.Context, id string) error
	ListByTherapy(ctx context.Context, therapyID string) ([]domain.TherapyNote, error)
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	ListByTherapy(ctx context.Context, therapyID string, page domain.PageRequest) ([]domain.Payment, int64, error)
}

// Repositories bundles every relational repository bound to one database
// handle, either the pool or an open transaction.
type Repositories struct {
	Users           UserRepository
	Psychologists   PsychologistRepository
	Availability    AvailabilityRepository
	Consultants     ConsultantRepository
	Therapies       TherapyRepository
	Sessions        SessionRepository
	Propositions    PropositionRepository
	SessionRequests SessionRequestRepository
	TherapyRequests TherapyRequestRepository
	SessionNotes    SessionNoteRepository
	TherapyNotes    TherapyNoteRepository
	Payments        PaymentRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn in one transaction. Any error returned by fn rolls
	// back every write made through tx.
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
}
