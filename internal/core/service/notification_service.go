package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

// messageDebounceWindow groups NEW_MESSAGE notifications per recipient and
// therapy.
const messageDebounceWindow = 60 * time.Second

// NotificationService persists published notifications and serves the
// notification inbox.
type NotificationService struct {
	repo     ports.NotificationRepository
	debounce ports.Debouncer
	log      zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, debounce ports.Debouncer, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, debounce: debounce, log: log}
}

// Deliver stores one notification, dropping it when its debounce window is
// already held.
func (s *NotificationService) Deliver(ctx context.Context, n domain.Notification) error {
	start := time.Now()

	// 1. Debounce. Fails open when the store is unreachable.
	if key := n.DebounceKey(); key != "" && s.debounce != nil {
		acquired, err := s.debounce.Acquire(ctx, "notify:"+key, messageDebounceWindow)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", n.UserID).Msg("debounce check failed, delivering anyway")
		} else if !acquired {
			metrics.NotificationsDebouncedTotal.Inc()
			metrics.NotificationDeliveryDuration.WithLabelValues("debounced").Observe(time.Since(start).Seconds())
			s.log.Debug().Str("user_id", n.UserID).Str("type", string(n.Type)).Msg("notification debounced")
			return nil
		}
	}

	// 2. Persist.
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Insert(ctx, &n); err != nil {
		metrics.NotificationsErrorsTotal.WithLabelValues("insert_failed").Inc()
		metrics.NotificationDeliveryDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("deliver notification: %w", err)
	}

	metrics.NotificationsDeliveredTotal.WithLabelValues(string(n.Type)).Inc()
	metrics.NotificationDeliveryDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page domain.PageRequest) (*domain.Page[domain.Notification], error) {
	items, total, err := s.repo.List(ctx, userID, unreadOnly, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, page), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
