package ports

import (
	"context"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
)

// InviteConsultantInput carries a psychologist's direct invitation.
type InviteConsultantInput struct {
	Email       string
	Name        string
	Modality    string
	Notes       string
	BillingType domain.BillingType
	DefaultFee  *float64
	Recurrence  string
}

// UpdateTherapyInput is a partial update; nil fields are left as is.
type UpdateTherapyInput struct {
	Modality *string
	Notes    *string
	Status   *domain.TherapyStatus
}

type TherapyService interface {
	Invite(ctx context.Context, actor domain.Actor, in InviteConsultantInput) (*domain.Therapy, error)
	List(ctx context.Context, actor domain.Actor, status domain.TherapyStatus, page domain.PageRequest) (*domain.Page[domain.Therapy], error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Therapy, error)
	Update(ctx context.Context, actor domain.Actor, id string, in UpdateTherapyInput) (*domain.Therapy, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

// RecurrenceInput configures the recurring sessions of a therapy.
type RecurrenceInput struct {
	DayOfWeek     int
	StartTime     string
	Duration      int
	Frequency     domain.Frequency
	SessionsCount *int
	StartDate     time.Time
}

// RecurrenceResult reports what a reconfiguration changed.
type RecurrenceResult struct {
	Configuration *domain.RecurrenceConfiguration `json:"configuration"`
	Sessions      []domain.TherapySession         `json:"sessions"`
	Removed       int64                           `json:"removed_sessions"`
	BlockedSlot   *domain.AvailabilitySlot        `json:"blocked_slot"`
}

type RecurrenceService interface {
	Configure(ctx context.Context, actor domain.Actor, therapyID string, in RecurrenceInput) (*RecurrenceResult, error)
	Get(ctx context.Context, actor domain.Actor, therapyID string) (*domain.RecurrenceConfiguration, error)
}

type TherapyRequestService interface {
	Create(ctx context.Context, actor domain.Actor, psychologistID, message string) (*domain.TherapyRequest, error)
	List(ctx context.Context, actor domain.Actor, status domain.SessionRequestStatus, page domain.PageRequest) (*domain.Page[domain.TherapyRequest], error)
	Respond(ctx context.Context, actor domain.Actor, id string, accept bool) (*domain.TherapyRequest, error)
}
