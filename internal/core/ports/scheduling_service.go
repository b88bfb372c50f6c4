package ports

import (
	"context"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
)

// CreatePropositionInput carries the candidate datetimes a psychologist offers.
type CreatePropositionInput struct {
	ProposedSlots []time.Time
	Type          domain.SessionType
	Duration      int
}

// SelectionResult is returned when a proposition or request produces a session.
type SelectionResult struct {
	Proposition *domain.ScheduleProposition `json:"proposition,omitempty"`
	Request     *domain.SessionRequest      `json:"session_request,omitempty"`
	Session     *domain.TherapySession      `json:"session,omitempty"`
}

type PropositionService interface {
	Create(ctx context.Context, actor domain.Actor, therapyID string, in CreatePropositionInput) (*domain.ScheduleProposition, error)
	List(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.ScheduleProposition, error)
	SelectSlot(ctx context.Context, actor domain.Actor, therapyID, propositionID string, slot time.Time) (*SelectionResult, error)
}

// CreateSessionRequestInput carries the single datetime a consultant proposes.
type CreateSessionRequestInput struct {
	ProposedAt time.Time
	Duration   int
	Type       domain.SessionType
	Notes      string
}

type SessionRequestService interface {
	Create(ctx context.Context, actor domain.Actor, therapyID string, in CreateSessionRequestInput) (*domain.SessionRequest, error)
	List(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.SessionRequest, error)
	Respond(ctx context.Context, actor domain.Actor, therapyID, requestID string, accept bool) (*SelectionResult, error)
}

// ListSessionsInput carries the optional session list filters.
type ListSessionsInput struct {
	TherapyID string
	Status    domain.SessionStatus
	From      *time.Time
	To        *time.Time
	Page      domain.PageRequest
}

type SessionService interface {
	List(ctx context.Context, actor domain.Actor, in ListSessionsInput) (*domain.Page[domain.SessionView], error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.SessionView, error)
	Complete(ctx context.Context, actor domain.Actor, id string) (*domain.TherapySession, error)
	Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.TherapySession, error)
	Postpone(ctx context.Context, actor domain.Actor, id string, to time.Time) (*domain.TherapySession, error)
	ConfirmPostpone(ctx context.Context, actor domain.Actor, id string) (*domain.TherapySession, error)
	UpdateFee(ctx context.Context, actor domain.Actor, id string, fee *float64) (*domain.TherapySession, error)
	AttachMedia(ctx context.Context, actor domain.Actor, id, url string) (*domain.TherapySession, error)
}
