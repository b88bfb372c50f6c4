package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

// TherapyService manages therapies and the direct-invite path.
type TherapyService struct {
	store    ports.Store
	notifier ports.Notifier
	mailer   ports.InviteMailer
	log      zerolog.Logger
}

func NewTherapyService(store ports.Store, notifier ports.Notifier, mailer ports.InviteMailer, log zerolog.Logger) *TherapyService {
	return &TherapyService{store: store, notifier: notifier, mailer: mailer, log: log}
}

// Invite creates a therapy for the consultant behind in.Email, creating the
// account with a temporary password when it does not exist yet. The therapy
// stays PENDING until the consultant finishes onboarding; a consultant who
// already finished it gets an ACTIVE therapy straight away.
func (s *TherapyService) Invite(ctx context.Context, actor domain.Actor, in ports.InviteConsultantInput) (*domain.Therapy, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.ErrValidation.WithMessage("email is required")
	}

	var (
		therapy      *domain.Therapy
		consultant   *domain.User
		tempPassword string
		outbox       domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		profile, err := tx.Psychologists.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}

		status := domain.TherapyPending
		consultant, err = tx.Users.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			tempPassword, err = temporaryPassword()
			if err != nil {
				return err
			}
			consultant, err = s.createInvitedConsultant(ctx, tx, email, in.Name, tempPassword)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if consultant.Role != domain.RoleConsultant {
				return domain.ErrInvalidConsultantEmail
			}
			active, err := tx.Therapies.HasActive(ctx, consultant.ID)
			if err != nil {
				return err
			}
			if active {
				return domain.ErrConsultantHasActiveTherapy
			}
			cp, err := tx.Consultants.FindByUserID(ctx, consultant.ID)
			if err != nil {
				return err
			}
			if cp.OnboardingStatus == domain.OnboardingCompleted {
				status = domain.TherapyActive
			}
		}

		billingType := in.BillingType
		if billingType == "" {
			billingType = domain.BillingPerSession
		}
		fee := profile.Fee()
		if in.DefaultFee != nil {
			fee = *in.DefaultFee
		}
		modality := in.Modality
		if modality == "" {
			modality = domain.DefaultModality
		}

		therapy = &domain.Therapy{
			PsychologistID: actor.UserID,
			ConsultantID:   consultant.ID,
			Origin:         domain.OriginPsychologistInitiated,
			Status:         status,
			Modality:       modality,
			Notes:          in.Notes,
			BillingPlan: &domain.BillingPlan{
				BillingType: billingType,
				DefaultFee:  fee,
				Recurrence:  in.Recurrence,
			},
		}
		if err := tx.Therapies.Create(ctx, therapy); err != nil {
			return err
		}

		outbox.Add(domain.NotifyTherapyInvitation, therapyPayload(therapy, map[string]any{
			"psychologist_id": actor.UserID,
		}), consultant.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tempPassword != "" && s.mailer != nil {
		if mailErr := s.mailer.SendInvite(ctx, consultant.Email, consultant.Name, tempPassword); mailErr != nil {
			s.log.Warn().Err(mailErr).Str("therapy_id", therapy.ID).Msg("failed to send invite email")
		}
	}
	s.notifier.Publish(ctx, outbox...)

	metrics.TherapiesCreatedTotal.WithLabelValues(string(therapy.Origin)).Inc()
	s.log.Info().
		Str("therapy_id", therapy.ID).
		Str("consultant_id", consultant.ID).
		Bool("new_account", tempPassword != "").
		Str("status", string(therapy.Status)).
		Msg("consultant invited")
	return therapy, nil
}

func (s *TherapyService) createInvitedConsultant(ctx context.Context, tx ports.Repositories, email, name, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u := &domain.User{
		Email:              email,
		Name:               name,
		PasswordHash:       string(hash),
		Role:               domain.RoleConsultant,
		MustChangePassword: true,
	}
	if err := tx.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := tx.Consultants.Create(ctx, domain.NewConsultantProfile(u.ID)); err != nil {
		return nil, err
	}
	return u, nil
}

// temporaryPassword returns a random URL-safe password.
func temporaryPassword() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// List returns therapies scoped to the actor.
func (s *TherapyService) List(ctx context.Context, actor domain.Actor, status domain.TherapyStatus, page domain.PageRequest) (*domain.Page[domain.Therapy], error) {
	f := ports.TherapyFilter{Status: status, Page: page}
	switch {
	case actor.Role.IsAdmin():
	case actor.Role.IsPsychologist():
		f.PsychologistID = actor.UserID
	default:
		f.ConsultantID = actor.UserID
	}
	items, total, err := s.store.Repos().Therapies.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsPsychologist() {
		for i := range items {
			items[i].Notes = ""
		}
	}
	return domain.NewPage(items, total, page), nil
}

// Get returns one therapy. Clinical notes are only attached for the
// therapy's psychologist.
func (s *TherapyService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Therapy, error) {
	repos := s.store.Repos()
	therapy, err := therapyForViewer(ctx, repos, actor, id)
	if err != nil {
		return nil, err
	}
	if therapy.PsychologistID != actor.UserID {
		therapy.Notes = ""
		return therapy, nil
	}
	notes, err := repos.TherapyNotes.ListByTherapy(ctx, therapy.ID)
	if err != nil {
		return nil, err
	}
	therapy.TherapyNotes = notes
	return therapy, nil
}

// Update changes modality, notes or status. Moving to ACTIVE re-checks the
// one-active-therapy rule under the therapy row lock.
func (s *TherapyService) Update(ctx context.Context, actor domain.Actor, id string, in ports.UpdateTherapyInput) (*domain.Therapy, error) {
	var (
		therapy *domain.Therapy
		outbox  domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		var err error
		therapy, err = tx.Therapies.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if therapy.PsychologistID != actor.UserID {
			return domain.ErrTherapyNotFound
		}

		if in.Modality != nil {
			therapy.Modality = *in.Modality
		}
		if in.Notes != nil {
			therapy.Notes = *in.Notes
		}
		if in.Status != nil && *in.Status != therapy.Status {
			next := *in.Status
			if !therapy.Status.CanTransitionTo(next) {
				return domain.ErrInvalidTherapyStatus.WithMessage("cannot move therapy from %s to %s", therapy.Status, next)
			}
			if next == domain.TherapyActive {
				active, err := tx.Therapies.HasActive(ctx, therapy.ConsultantID)
				if err != nil {
					return err
				}
				if active {
					return domain.ErrConsultantHasActiveTherapy
				}
			}
			therapy.Status = next
			outbox.Add(domain.NotifyTherapyStatusChanged, therapyPayload(therapy, map[string]any{
				"status": string(next),
			}), therapy.ConsultantID)
		}
		return tx.Therapies.Update(ctx, therapy)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)
	s.log.Info().Str("therapy_id", therapy.ID).Str("status", string(therapy.Status)).Msg("therapy updated")
	return therapy, nil
}

// Delete soft-deletes a therapy. Admin only.
func (s *TherapyService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Role.IsAdmin() {
		return domain.ErrInsufficientPermissions
	}
	repos := s.store.Repos()
	if _, err := repos.Therapies.FindByID(ctx, id); err != nil {
		return err
	}
	if err := repos.Therapies.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("therapy_id", id).Str("actor", actor.UserID).Msg("therapy deleted")
	return nil
}
