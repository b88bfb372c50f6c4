package ports

import (
	"context"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
)

type NoteService interface {
	ListSessionNotes(ctx context.Context, actor domain.Actor, sessionID string) ([]domain.SessionNote, error)
	AddSessionNote(ctx context.Context, actor domain.Actor, sessionID, content string, private bool) (*domain.SessionNote, error)
	UpdateSessionNote(ctx context.Context, actor domain.Actor, sessionID, noteID string, content *string, private *bool) (*domain.SessionNote, error)
	DeleteSessionNote(ctx context.Context, actor domain.Actor, sessionID, noteID string) error

	ListTherapyNotes(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.TherapyNote, error)
	AddTherapyNote(ctx context.Context, actor domain.Actor, therapyID, title, content string) (*domain.TherapyNote, error)
	UpdateTherapyNote(ctx context.Context, actor domain.Actor, therapyID, noteID string, title, content *string) (*domain.TherapyNote, error)
	DeleteTherapyNote(ctx context.Context, actor domain.Actor, therapyID, noteID string) error
}

// RegisterPaymentInput carries a payment registered by the psychologist.
type RegisterPaymentInput struct {
	Amount    float64
	Method    string
	SessionID *string
	PaidAt    *time.Time
	Notes     string
}

type PaymentService interface {
	Register(ctx context.Context, actor domain.Actor, therapyID string, in RegisterPaymentInput) (*domain.Payment, error)
	List(ctx context.Context, actor domain.Actor, therapyID string, page domain.PageRequest) (*domain.Page[domain.Payment], error)
}

type MessageService interface {
	Send(ctx context.Context, actor domain.Actor, therapyID, content string) (*domain.Message, error)
	List(ctx context.Context, actor domain.Actor, therapyID string, page domain.PageRequest) (*domain.Page[domain.Message], error)
}

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, page domain.PageRequest) (*domain.Page[domain.Notification], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// NotificationDeliverer persists one published notification.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, n domain.Notification) error
}
