package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

// SessionRequestService runs the consultant-proposes, psychologist-decides
// scheduling workflow.
type SessionRequestService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewSessionRequestService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *SessionRequestService {
	return &SessionRequestService{store: store, notifier: notifier, log: log}
}

func (s *SessionRequestService) Create(ctx context.Context, actor domain.Actor, therapyID string, in ports.CreateSessionRequestInput) (*domain.SessionRequest, error) {
	if in.ProposedAt.IsZero() {
		return nil, domain.ErrValidation.WithMessage("proposed_at is required")
	}
	repos := s.store.Repos()

	therapy, err := therapyForConsultant(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	if err := checkAvailability(ctx, repos, therapy.PsychologistID, []time.Time{in.ProposedAt}); err != nil {
		if errors.Is(err, domain.ErrSlotNotAvailable) {
			metrics.SchedulingOutcomesTotal.WithLabelValues("session_request", "unavailable").Inc()
		}
		return nil, err
	}

	typ := in.Type
	if typ == "" {
		typ = domain.SessionExtraordinary
	}
	duration := in.Duration
	if duration <= 0 {
		duration = domain.DefaultSessionDuration
	}

	req := &domain.SessionRequest{
		TherapyID:    therapy.ID,
		ConsultantID: actor.UserID,
		ProposedAt:   in.ProposedAt.UTC(),
		Duration:     duration,
		Type:         typ,
		Notes:        in.Notes,
		Status:       domain.RequestPending,
	}
	if err := repos.SessionRequests.Create(ctx, req); err != nil {
		return nil, err
	}

	var outbox domain.Outbox
	outbox.Add(domain.NotifySessionRequestReceived, therapyPayload(therapy, map[string]any{
		"session_request_id": req.ID,
		"proposed_at":        req.ProposedAt,
	}), therapy.PsychologistID)
	s.notifier.Publish(ctx, outbox...)

	metrics.SchedulingOutcomesTotal.WithLabelValues("session_request", "created").Inc()
	s.log.Info().Str("therapy_id", therapy.ID).Str("session_request_id", req.ID).Msg("session request created")
	return req, nil
}

func (s *SessionRequestService) List(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.SessionRequest, error) {
	repos := s.store.Repos()
	therapy, err := therapyForViewer(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	return repos.SessionRequests.ListByTherapy(ctx, therapy.ID)
}

// Respond accepts or rejects a pending request. Acceptance books the session
// in the same transaction.
func (s *SessionRequestService) Respond(ctx context.Context, actor domain.Actor, therapyID, requestID string, accept bool) (*ports.SelectionResult, error) {
	var (
		result ports.SelectionResult
		outbox domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		therapy, err := therapyForPsychologist(ctx, tx, actor, therapyID)
		if err != nil {
			return err
		}

		req, err := tx.SessionRequests.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.TherapyID != therapy.ID {
			return domain.ErrSessionRequestNotFound
		}
		if err := req.Respond(accept); err != nil {
			return err
		}
		if err := tx.SessionRequests.Update(ctx, req); err != nil {
			return err
		}
		result.Request = req

		payload := therapyPayload(therapy, map[string]any{"session_request_id": req.ID})
		if !accept {
			outbox.Add(domain.NotifySessionRequestRejected, payload, therapy.ConsultantID)
			return nil
		}

		session := domain.NewSession(therapy, req.ProposedAt, req.Duration, req.Type)
		if err := tx.Sessions.Create(ctx, &session); err != nil {
			return err
		}
		result.Session = &session

		payload["session_id"] = session.ID
		payload["scheduled_at"] = session.ScheduledAt
		outbox.Add(domain.NotifySessionRequestAccepted, payload, therapy.ConsultantID)
		outbox.Add(domain.NotifySessionScheduled, payload, therapy.PsychologistID, therapy.ConsultantID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)

	outcome := "rejected"
	if accept {
		outcome = "accepted"
	}
	metrics.SchedulingOutcomesTotal.WithLabelValues("session_request", outcome).Inc()
	s.log.Info().Str("session_request_id", requestID).Str("outcome", outcome).Msg("session request answered")
	return &result, nil
}
