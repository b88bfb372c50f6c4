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

// PropositionService runs the psychologist-offers, consultant-selects
// scheduling workflow.
type PropositionService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewPropositionService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *PropositionService {
	return &PropositionService{store: store, notifier: notifier, log: log}
}

// Create stores a batch of candidate datetimes. Every candidate must pass the
// availability check or nothing is stored.
func (s *PropositionService) Create(ctx context.Context, actor domain.Actor, therapyID string, in ports.CreatePropositionInput) (*domain.ScheduleProposition, error) {
	if len(in.ProposedSlots) == 0 {
		return nil, domain.ErrValidation.WithMessage("proposed_slots must not be empty")
	}
	repos := s.store.Repos()

	therapy, err := therapyForPsychologist(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	if err := checkAvailability(ctx, repos, therapy.PsychologistID, in.ProposedSlots); err != nil {
		if errors.Is(err, domain.ErrSlotNotAvailable) {
			metrics.SchedulingOutcomesTotal.WithLabelValues("proposition", "unavailable").Inc()
		}
		return nil, err
	}

	slots := make([]time.Time, len(in.ProposedSlots))
	for i, t := range in.ProposedSlots {
		slots[i] = t.UTC()
	}
	typ := in.Type
	if typ == "" {
		typ = domain.SessionInitial
	}
	duration := in.Duration
	if duration <= 0 {
		duration = domain.DefaultSessionDuration
	}

	p := &domain.ScheduleProposition{
		TherapyID:     therapy.ID,
		ProposedSlots: slots,
		Status:        domain.PropositionPending,
		Type:          typ,
		Duration:      duration,
	}
	if err := repos.Propositions.Create(ctx, p); err != nil {
		return nil, err
	}

	var outbox domain.Outbox
	outbox.Add(domain.NotifyPropositionReceived, therapyPayload(therapy, map[string]any{
		"proposition_id": p.ID,
		"slots":          len(slots),
	}), therapy.ConsultantID)
	s.notifier.Publish(ctx, outbox...)

	metrics.SchedulingOutcomesTotal.WithLabelValues("proposition", "created").Inc()
	s.log.Info().Str("therapy_id", therapy.ID).Str("proposition_id", p.ID).Int("slots", len(slots)).Msg("proposition created")
	return p, nil
}

// List returns the propositions of a therapy the actor participates in.
func (s *PropositionService) List(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.ScheduleProposition, error) {
	repos := s.store.Repos()
	therapy, err := therapyForViewer(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	return repos.Propositions.ListByTherapy(ctx, therapy.ID)
}

// SelectSlot accepts one of the proposed datetimes and books the session in
// the same transaction. The proposition row is locked before its status is
// checked, so concurrent selections produce exactly one session.
func (s *PropositionService) SelectSlot(ctx context.Context, actor domain.Actor, therapyID, propositionID string, slot time.Time) (*ports.SelectionResult, error) {
	var (
		result ports.SelectionResult
		outbox domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		therapy, err := therapyForConsultant(ctx, tx, actor, therapyID)
		if err != nil {
			return err
		}

		p, err := tx.Propositions.FindByIDForUpdate(ctx, propositionID)
		if err != nil {
			return err
		}
		if p.TherapyID != therapy.ID {
			return domain.ErrPropositionNotFound
		}
		if err := p.Select(slot); err != nil {
			return err
		}
		if err := tx.Propositions.Update(ctx, p); err != nil {
			return err
		}

		session := domain.NewSession(therapy, *p.SelectedSlot, p.Duration, p.Type)
		session.PropositionID = &p.ID
		if err := tx.Sessions.Create(ctx, &session); err != nil {
			return err
		}

		payload := therapyPayload(therapy, map[string]any{
			"proposition_id": p.ID,
			"session_id":     session.ID,
			"scheduled_at":   session.ScheduledAt,
		})
		outbox.Add(domain.NotifyPropositionAccepted, payload, therapy.PsychologistID)
		outbox.Add(domain.NotifySessionScheduled, payload, therapy.PsychologistID, therapy.ConsultantID)

		result = ports.SelectionResult{Proposition: p, Session: &session}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)
	metrics.SchedulingOutcomesTotal.WithLabelValues("proposition", "accepted").Inc()
	s.log.Info().Str("proposition_id", propositionID).Str("session_id", result.Session.ID).Msg("proposition slot selected")
	return &result, nil
}
