package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/metrics"
)

// TherapyRequestService handles consultant-initiated therapy requests.
type TherapyRequestService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewTherapyRequestService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *TherapyRequestService {
	return &TherapyRequestService{store: store, notifier: notifier, log: log}
}

func (s *TherapyRequestService) Create(ctx context.Context, actor domain.Actor, psychologistID, message string) (*domain.TherapyRequest, error) {
	repos := s.store.Repos()

	if _, err := repos.Psychologists.FindByUserID(ctx, psychologistID); err != nil {
		return nil, err
	}
	active, err := repos.Therapies.HasActive(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, domain.ErrConsultantHasActiveTherapy
	}
	dup, err := repos.TherapyRequests.ExistsPending(ctx, actor.UserID, psychologistID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, domain.ErrDuplicateTherapyRequest
	}

	req := &domain.TherapyRequest{
		ConsultantID:   actor.UserID,
		PsychologistID: psychologistID,
		Message:        message,
		Status:         domain.RequestPending,
	}
	if err := repos.TherapyRequests.Create(ctx, req); err != nil {
		return nil, err
	}

	var outbox domain.Outbox
	outbox.Add(domain.NotifyTherapyRequestReceived, map[string]any{
		"therapy_request_id": req.ID,
		"consultant_id":      actor.UserID,
	}, psychologistID)
	s.notifier.Publish(ctx, outbox...)

	s.log.Info().Str("therapy_request_id", req.ID).Str("psychologist_id", psychologistID).Msg("therapy request created")
	return req, nil
}

func (s *TherapyRequestService) List(ctx context.Context, actor domain.Actor, status domain.SessionRequestStatus, page domain.PageRequest) (*domain.Page[domain.TherapyRequest], error) {
	f := ports.TherapyRequestFilter{Status: status, Page: page}
	switch {
	case actor.Role.IsAdmin():
	case actor.Role.IsPsychologist():
		f.PsychologistID = actor.UserID
	default:
		f.ConsultantID = actor.UserID
	}
	items, total, err := s.store.Repos().TherapyRequests.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, page), nil
}

// Respond accepts or rejects a request addressed to the actor. Acceptance
// creates an ACTIVE therapy in the same transaction, after re-checking that
// the consultant has no other active therapy.
func (s *TherapyRequestService) Respond(ctx context.Context, actor domain.Actor, id string, accept bool) (*domain.TherapyRequest, error) {
	var (
		req    *domain.TherapyRequest
		outbox domain.Outbox
	)

	err := s.store.WithinTx(ctx, func(tx ports.Repositories) error {
		var err error
		req, err = tx.TherapyRequests.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.PsychologistID != actor.UserID {
			return domain.ErrTherapyRequestNotFound
		}
		if err := req.Respond(accept); err != nil {
			return err
		}

		payload := map[string]any{"therapy_request_id": req.ID, "psychologist_id": req.PsychologistID}
		if !accept {
			outbox.Add(domain.NotifyTherapyRequestRejected, payload, req.ConsultantID)
			return tx.TherapyRequests.Update(ctx, req)
		}

		active, err := tx.Therapies.HasActive(ctx, req.ConsultantID)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrConsultantHasActiveTherapy
		}
		profile, err := tx.Psychologists.FindByUserID(ctx, req.PsychologistID)
		if err != nil {
			return err
		}

		therapy := &domain.Therapy{
			PsychologistID: req.PsychologistID,
			ConsultantID:   req.ConsultantID,
			Origin:         domain.OriginConsultantInitiated,
			Status:         domain.TherapyActive,
			Modality:       domain.DefaultModality,
			BillingPlan: &domain.BillingPlan{
				BillingType: domain.BillingPerSession,
				DefaultFee:  profile.Fee(),
			},
		}
		if err := tx.Therapies.Create(ctx, therapy); err != nil {
			return err
		}
		req.TherapyID = &therapy.ID
		if err := tx.TherapyRequests.Update(ctx, req); err != nil {
			return err
		}

		payload["therapy_id"] = therapy.ID
		outbox.Add(domain.NotifyTherapyRequestAccepted, payload, req.ConsultantID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, outbox...)
	if accept {
		metrics.TherapiesCreatedTotal.WithLabelValues(string(domain.OriginConsultantInitiated)).Inc()
	}
	s.log.Info().Str("therapy_request_id", req.ID).Str("status", string(req.Status)).Msg("therapy request answered")
	return req, nil
}
