package service

import (
	"context"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// Ownership failures are reported as not-found so that callers cannot probe
// for therapies they do not belong to.

func therapyForPsychologist(ctx context.Context, repos ports.Repositories, actor domain.Actor, id string) (*domain.Therapy, error) {
	t, err := repos.Therapies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.PsychologistID != actor.UserID {
		return nil, domain.ErrTherapyNotFound
	}
	return t, nil
}

func therapyForConsultant(ctx context.Context, repos ports.Repositories, actor domain.Actor, id string) (*domain.Therapy, error) {
	t, err := repos.Therapies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.ConsultantID != actor.UserID {
		return nil, domain.ErrTherapyNotFound
	}
	return t, nil
}

func therapyForViewer(ctx context.Context, repos ports.Repositories, actor domain.Actor, id string) (*domain.Therapy, error) {
	t, err := repos.Therapies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.CanView(actor) {
		return nil, domain.ErrTherapyNotFound
	}
	return t, nil
}

// checkAvailability rejects the first candidate that falls outside the
// psychologist's AVAILABLE slots or inside a BLOCKED one.
func checkAvailability(ctx context.Context, repos ports.Repositories, psychologistID string, candidates []time.Time) error {
	profile, err := repos.Psychologists.FindByUserID(ctx, psychologistID)
	if err != nil {
		return err
	}
	slots, err := repos.Availability.ListByProfile(ctx, profile.ID)
	if err != nil {
		return err
	}
	if bad, found := domain.FirstUnavailable(slots, candidates); found {
		return domain.SlotNotAvailable(bad.UTC().Format(time.RFC3339))
	}
	return nil
}

func therapyPayload(t *domain.Therapy, extra map[string]any) map[string]any {
	p := map[string]any{"therapy_id": t.ID}
	for k, v := range extra {
		p[k] = v
	}
	return p
}
