package ports

import (
	"context"
	"io"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
)

// NotificationRepository persists notification records.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, page domain.PageRequest) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead fails with domain.ErrNotificationNotFound unless the
	// notification exists and belongs to userID.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// MessageRepository persists therapy chat messages.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	ListByTherapy(ctx context.Context, therapyID string, page domain.PageRequest) ([]domain.Message, int64, error)
}

// Debouncer grants at most one acquisition of key per window.
type Debouncer interface {
	Acquire(ctx context.Context, key string, window time.Duration) (bool, error)
}

// Notifier publishes notifications produced by a committed use-case.
type Notifier interface {
	Publish(ctx context.Context, notifications ...domain.Notification)
}

// RefreshTokenStore keeps the hashes of live refresh tokens.
type RefreshTokenStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	// Consume deletes the hash and returns its user id, or
	// domain.ErrInvalidRefreshToken when it is unknown or expired.
	Consume(ctx context.Context, tokenHash string) (string, error)
	Revoke(ctx context.Context, tokenHash string) error
}

// InviteMailer delivers the credentials of an invited consultant.
type InviteMailer interface {
	SendInvite(ctx context.Context, to, name, temporaryPassword string) error
}

// FileUploader stores a file and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, r io.Reader, folder string) (string, error)
}
