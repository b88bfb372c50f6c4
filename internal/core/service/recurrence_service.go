package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

// RecurrenceService generates the recurring sessions of a therapy.
type RecurrenceService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewRecurrenceService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *RecurrenceService {
	return &RecurrenceService{store: store, notifier: notifier, log: log}
}

// Configure replaces the recurrence of a therapy. In one transaction it:
//  1. upserts the configuration,
//  2. deletes future SCHEDULED+RECURRENT sessions from start_date on,
//  3. inserts the new sessions,
//  4. replaces the therapy's BLOCKED availability slot.
//
// Any failure rolls everything back.
func (s *RecurrenceService) Configure(ctx context.Context, actor domain.Actor, therapyID string, in ports.RecurrenceInput) (*ports.RecurrenceResult, error) {
	cfg := &domain.RecurrenceConfiguration{
		TherapyID:     therapyID,
		DayOfWeek:     in.DayOfWeek,
		StartTime:     in.StartTime,
		Duration:      in.Duration,
		Frequency:     in.Frequency,
		SessionsCount: in.SessionsCount,
		StartDate:     in.StartDate.UTC(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		result ports.RecurrenceResult
		outbox domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		therapy, err := tx.Therapies.FindByIDForUpdate(ctx, therapyID)
		if err != nil {
			return err
		}
		if therapy.PsychologistID != actor.UserID {
			return domain.ErrTherapyNotFound
		}
		profile, err := tx.Psychologists.FindByUserID(ctx, therapy.PsychologistID)
		if err != nil {
			return err
		}

		// 1. One configuration per therapy.
		if err := tx.Therapies.UpsertRecurrence(ctx, cfg); err != nil {
			return err
		}

		// 2. Clear the future window; completed, cancelled and postponed
		// sessions are never touched.
		removed, err := tx.Sessions.DeleteScheduledRecurrentFrom(ctx, therapy.ID, cfg.StartDate)
		if err != nil {
			return err
		}

		// 3. Generate.
		schedule := cfg.Schedule()
		sessions := make([]domain.TherapySession, 0, len(schedule))
		for _, at := range schedule {
			sessions = append(sessions, domain.NewSession(therapy, at, cfg.Duration, domain.SessionRecurrent))
		}
		if err := tx.Sessions.CreateBatch(ctx, sessions); err != nil {
			return err
		}

		// 4. Block the recurring window for ad-hoc proposals.
		slot, err := cfg.BlockedSlot(profile.ID)
		if err != nil {
			return err
		}
		if err := tx.Availability.ReplaceTherapyBlock(ctx, &slot); err != nil {
			return err
		}

		outbox.Add(domain.NotifyRecurrenceConfigured, therapyPayload(therapy, map[string]any{
			"sessions":    len(sessions),
			"day_of_week": cfg.DayOfWeek,
			"start_time":  cfg.StartTime,
		}), therapy.ConsultantID)

		result = ports.RecurrenceResult{
			Configuration: cfg,
			Sessions:      sessions,
			Removed:       removed,
			BlockedSlot:   &slot,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)
	metrics.RecurrenceSessionsGenerated.Add(float64(len(result.Sessions)))
	s.log.Info().
		Str("therapy_id", therapyID).
		Int("generated", len(result.Sessions)).
		Int64("removed", result.Removed).
		Str("frequency", string(cfg.Frequency)).
		Msg("recurrence configured")
	return &result, nil
}

// Get returns the recurrence of a therapy the actor participates in.
func (s *RecurrenceService) Get(ctx context.Context, actor domain.Actor, therapyID string) (*domain.RecurrenceConfiguration, error) {
	repos := s.store.Repos()
	therapy, err := therapyForViewer(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	return repos.Therapies.FindRecurrence(ctx, therapy.ID)
}
