package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

// SessionService drives the session state machine and session reads.
type SessionService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewSessionService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *SessionService {
	return &SessionService{store: store, notifier: notifier, log: log}
}

// sessionRule checks role-specific preconditions and applies the change to
// the locked session.
type sessionRule func(therapy *domain.Therapy, session *domain.TherapySession) error

// transition locks the session row, applies rule and saves the result. The
// notification type, when set, goes to both participants after commit.
func (s *SessionService) transition(ctx context.Context, actor domain.Actor, id string, notify domain.NotificationType, rule sessionRule) (*domain.TherapySession, error) {
	var (
		updated *domain.TherapySession
		from    domain.SessionStatus
		outbox  domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		session, err := tx.Sessions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		therapy, err := tx.Therapies.FindByID(ctx, session.TherapyID)
		if err != nil {
			return err
		}
		if !therapy.IsParticipant(actor.UserID) {
			return domain.ErrSessionNotFound
		}

		from = session.Status
		if err := rule(therapy, session); err != nil {
			return err
		}
		if err := tx.Sessions.Update(ctx, session); err != nil {
			return err
		}

		if notify != "" {
			outbox.Add(notify, therapyPayload(therapy, map[string]any{
				"session_id":   session.ID,
				"scheduled_at": session.ScheduledAt,
				"by":           actor.UserID,
			}), therapy.PsychologistID, therapy.ConsultantID)
		}
		updated = session
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)
	if from != updated.Status {
		metrics.SessionTransitionsTotal.WithLabelValues(string(from), string(updated.Status)).Inc()
		s.log.Info().
			Str("session_id", updated.ID).
			Str("from", string(from)).
			Str("to", string(updated.Status)).
			Str("actor", actor.UserID).
			Msg("session transition")
	}
	return updated, nil
}

func psychologistOnly(actor domain.Actor, therapy *domain.Therapy) error {
	if therapy.PsychologistID != actor.UserID {
		return domain.ErrForbiddenSessionAction
	}
	return nil
}

// Complete is reserved to the therapy's psychologist.
func (s *SessionService) Complete(ctx context.Context, actor domain.Actor, id string) (*domain.TherapySession, error) {
	return s.transition(ctx, actor, id, domain.NotifySessionCompleted, func(t *domain.Therapy, sess *domain.TherapySession) error {
		if err := psychologistOnly(actor, t); err != nil {
			return err
		}
		return sess.Complete()
	})
}

// Cancel may be requested by either participant.
func (s *SessionService) Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.TherapySession, error) {
	return s.transition(ctx, actor, id, domain.NotifySessionCancelled, func(_ *domain.Therapy, sess *domain.TherapySession) error {
		return sess.Cancel(actor.UserID, time.Now(), reason)
	})
}

// Postpone stages a new datetime; either participant may request it.
func (s *SessionService) Postpone(ctx context.Context, actor domain.Actor, id string, to time.Time) (*domain.TherapySession, error) {
	if to.IsZero() {
		return nil, domain.ErrValidation.WithMessage("postponed_to is required")
	}
	return s.transition(ctx, actor, id, domain.NotifySessionPostponed, func(_ *domain.Therapy, sess *domain.TherapySession) error {
		return sess.Postpone(to)
	})
}

// ConfirmPostpone commits the staged datetime. It sends no notification.
func (s *SessionService) ConfirmPostpone(ctx context.Context, actor domain.Actor, id string) (*domain.TherapySession, error) {
	return s.transition(ctx, actor, id, "", func(t *domain.Therapy, sess *domain.TherapySession) error {
		if err := psychologistOnly(actor, t); err != nil {
			return err
		}
		return sess.ConfirmPostpone()
	})
}

// UpdateFee overrides the session fee; nil restores the billing plan default.
func (s *SessionService) UpdateFee(ctx context.Context, actor domain.Actor, id string, fee *float64) (*domain.TherapySession, error) {
	if fee != nil && *fee < 0 {
		return nil, domain.ErrValidation.WithMessage("session_fee must not be negative")
	}
	return s.transition(ctx, actor, id, "", func(t *domain.Therapy, sess *domain.TherapySession) error {
		if err := psychologistOnly(actor, t); err != nil {
			return err
		}
		sess.SessionFee = fee
		return nil
	})
}

// AttachMedia stores an uploaded media URL on the session.
func (s *SessionService) AttachMedia(ctx context.Context, actor domain.Actor, id, url string) (*domain.TherapySession, error) {
	if url == "" {
		return nil, domain.ErrValidation.WithMessage("media_url is required")
	}
	return s.transition(ctx, actor, id, "", func(_ *domain.Therapy, sess *domain.TherapySession) error {
		sess.MediaURL = url
		return nil
	})
}

// Get returns the session with its effective fee.
func (s *SessionService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.SessionView, error) {
	repos := s.store.Repos()
	session, err := repos.Sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	therapy, err := repos.Therapies.FindByID(ctx, session.TherapyID)
	if err != nil {
		return nil, err
	}
	if !therapy.CanView(actor) {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.SessionView{
		TherapySession: *session,
		EffectiveFee:   session.ResolveFee(therapy.BillingPlan),
		PsychologistID: therapy.PsychologistID,
		ConsultantID:   therapy.ConsultantID,
		Psychologist:   therapy.Psychologist,
		Consultant:     therapy.Consultant,
	}, nil
}

// List returns sessions scoped to the actor: admins see everything,
// psychologists their own therapies, consultants their own.
func (s *SessionService) List(ctx context.Context, actor domain.Actor, in ports.ListSessionsInput) (*domain.Page[domain.SessionView], error) {
	f := ports.SessionFilter{
		TherapyID: in.TherapyID,
		Status:    in.Status,
		From:      in.From,
		To:        in.To,
		Page:      in.Page,
	}
	switch {
	case actor.Role.IsAdmin():
	case actor.Role.IsPsychologist():
		f.PsychologistID = actor.UserID
	default:
		f.ConsultantID = actor.UserID
	}

	items, total, err := s.store.Repos().Sessions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, in.Page), nil
}
