package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// PsychologistService manages psychologist profiles and availability.
type PsychologistService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewPsychologistService(store ports.Store, log zerolog.Logger) *PsychologistService {
	return &PsychologistService{store: store, log: log}
}

func (s *PsychologistService) List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.PsychologistProfile], error) {
	items, total, err := s.store.Repos().Psychologists.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, page), nil
}

// Get returns the public profile of a psychologist, availability included.
func (s *PsychologistService) Get(ctx context.Context, userID string) (*domain.PsychologistProfile, error) {
	repos := s.store.Repos()
	p, err := repos.Psychologists.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Slots, err = repos.Availability.ListByProfile(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PsychologistService) MyProfile(ctx context.Context, userID string) (*domain.PsychologistProfile, error) {
	return s.Get(ctx, userID)
}

func (s *PsychologistService) UpdateMyProfile(ctx context.Context, userID string, in ports.PsychologistProfileInput) (*domain.PsychologistProfile, error) {
	if in.SessionFee != nil && *in.SessionFee < 0 {
		return nil, domain.ErrValidation.WithMessage("session_fee must not be negative")
	}
	repos := s.store.Repos()
	p, err := repos.Psychologists.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.LicenseNumber != nil {
		p.LicenseNumber = *in.LicenseNumber
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Specializations != nil {
		p.Specializations = in.Specializations
	}
	if in.Modalities != nil {
		p.Modalities = in.Modalities
	}
	if in.Languages != nil {
		p.Languages = in.Languages
	}
	if in.SessionFee != nil {
		p.SessionFee = in.SessionFee
	}
	if in.YearsExperience != nil {
		p.YearsExperience = *in.YearsExperience
	}
	if err := repos.Psychologists.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Msg("psychologist profile updated")
	return p, nil
}

func (s *PsychologistService) MyAvailability(ctx context.Context, userID string) ([]domain.AvailabilitySlot, error) {
	repos := s.store.Repos()
	p, err := repos.Psychologists.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return repos.Availability.ListByProfile(ctx, p.ID)
}

// SetMyAvailability replaces the manually managed slots. Slots owned by a
// recurrence configuration are kept.
func (s *PsychologistService) SetMyAvailability(ctx context.Context, userID string, in []ports.SlotInput) ([]domain.AvailabilitySlot, error) {
	slots := make([]domain.AvailabilitySlot, 0, len(in))
	for i, si := range in {
		slot := domain.AvailabilitySlot{
			DayOfWeek: si.DayOfWeek,
			StartTime: si.StartTime,
			EndTime:   si.EndTime,
			Type:      si.Type,
		}
		if err := slot.Validate(); err != nil {
			var de *domain.Error
			if errors.As(err, &de) {
				return nil, de.WithDetails(map[string]any{"index": i})
			}
			return nil, err
		}
		slots = append(slots, slot)
	}

	var out []domain.AvailabilitySlot
	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		p, err := tx.Psychologists.FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		for i := range slots {
			slots[i].ProfileID = p.ID
		}
		if err := tx.Availability.ReplaceManaged(ctx, p.ID, slots); err != nil {
			return err
		}
		out, err = tx.Availability.ListByProfile(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Int("slots", len(slots)).Msg("availability replaced")
	return out, nil
}

// ConsultantService manages consultant profiles and onboarding.
type ConsultantService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewConsultantService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *ConsultantService {
	return &ConsultantService{store: store, notifier: notifier, log: log}
}

func (s *ConsultantService) MyProfile(ctx context.Context, userID string) (*domain.ConsultantProfile, error) {
	return s.store.Repos().Consultants.FindByUserID(ctx, userID)
}

func (s *ConsultantService) UpdateMyProfile(ctx context.Context, userID string, in ports.ConsultantProfileInput) (*domain.ConsultantProfile, error) {
	repos := s.store.Repos()
	p, err := repos.Consultants.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = *in.EmergencyContact
	}
	if in.BirthDate != nil {
		bd := in.BirthDate.UTC()
		p.BirthDate = &bd
	}
	if err := repos.Consultants.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SubmitOnboardingStep stores one onboarding step. Completing the last step
// activates the consultant's oldest PENDING therapy. When the consultant
// already holds an ACTIVE therapy the onboarding still completes and the
// PENDING therapies stay PENDING.
func (s *ConsultantService) SubmitOnboardingStep(ctx context.Context, userID string, step int, data json.RawMessage) (*domain.ConsultantProfile, error) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	var (
		profile *domain.ConsultantProfile
		outbox  domain.Outbox
		held    int
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		var err error
		profile, err = tx.Consultants.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		completed, err := profile.SubmitStep(step, data)
		if err != nil {
			return err
		}
		if err := tx.Consultants.Update(ctx, profile); err != nil {
			return err
		}
		if !completed {
			return nil
		}

		pending, err := tx.Therapies.ListByConsultant(ctx, userID, domain.TherapyPending)
		if err != nil || len(pending) == 0 {
			return err
		}
		active, err := tx.Therapies.HasActive(ctx, userID)
		if err != nil {
			return err
		}
		if active {
			held = len(pending)
			return nil
		}

		therapy := pending[0]
		therapy.Status = domain.TherapyActive
		if err := tx.Therapies.Update(ctx, &therapy); err != nil {
			return err
		}
		outbox.Add(domain.NotifyTherapyActivated, therapyPayload(&therapy, nil), therapy.PsychologistID, therapy.ConsultantID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)
	if held > 0 {
		s.log.Warn().
			Str("user_id", userID).
			Int("pending_therapies", held).
			Msg("onboarding completed with an active therapy, pending therapies left pending")
	}
	s.log.Info().
		Str("user_id", userID).
		Int("step", step).
		Str("onboarding_status", string(profile.OnboardingStatus)).
		Msg("onboarding step submitted")
	return profile, nil
}
