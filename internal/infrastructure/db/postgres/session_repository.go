package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type SessionRepository struct {
	db *gorm.DB
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.TherapySession) error {
	rec := sessionFromDomain(s)
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	s.ID = rec.ID
	s.CreatedAt, s.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *SessionRepository) CreateBatch(ctx context.Context, sessions []domain.TherapySession) error {
	if len(sessions) == 0 {
		return nil
	}
	recs := make([]sessionRecord, len(sessions))
	for i := range sessions {
		recs[i] = sessionFromDomain(&sessions[i])
		ensureID(&recs[i].ID)
	}
	if err := r.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return err
	}
	for i := range recs {
		sessions[i].ID = recs[i].ID
		sessions[i].CreatedAt, sessions[i].UpdatedAt = recs[i].CreatedAt, recs[i].UpdatedAt
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.TherapySession, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *SessionRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.TherapySession, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *SessionRepository) find(db *gorm.DB, id string) (*domain.TherapySession, error) {
	var rec sessionRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrSessionNotFound)
	}
	return rec.toDomain(), nil
}

func (r *SessionRepository) Update(ctx context.Context, s *domain.TherapySession) error {
	rec := sessionFromDomain(s)
	res := r.db.WithContext(ctx).Model(&sessionRecord{}).Where("id = ?", s.ID).Updates(map[string]any{
		"scheduled_at":  rec.ScheduledAt,
		"duration":      rec.Duration,
		"status":        rec.Status,
		"type":          rec.Type,
		"session_fee":   rec.SessionFee,
		"postponed_to":  rec.PostponedTo,
		"cancelled_by":  rec.CancelledBy,
		"cancelled_at":  rec.CancelledAt,
		"cancel_reason": rec.CancelReason,
		"media_url":     rec.MediaURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// List returns sessions of live therapies in chronological order, joined with
// participants and the billing plan.
func (r *SessionRepository) List(ctx context.Context, f ports.SessionFilter) ([]domain.SessionView, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&sessionRecord{}).
		Joins("JOIN therapies ON therapies.id = therapy_sessions.therapy_id AND therapies.deleted_at IS NULL")
	if f.TherapyID != "" {
		q = q.Where("therapy_sessions.therapy_id = ?", f.TherapyID)
	}
	if f.PsychologistID != "" {
		q = q.Where("therapies.psychologist_id = ?", f.PsychologistID)
	}
	if f.ConsultantID != "" {
		q = q.Where("therapies.consultant_id = ?", f.ConsultantID)
	}
	if f.Status != "" {
		q = q.Where("therapy_sessions.status = ?", string(f.Status))
	}
	if f.From != nil {
		q = q.Where("therapy_sessions.scheduled_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("therapy_sessions.scheduled_at <= ?", f.To.UTC())
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []sessionRecord
	if err := paginate(q, f.Page.Offset(), f.Page.PerPage).
		Preload("Therapy.Psychologist").
		Preload("Therapy.Consultant").
		Preload("Therapy.BillingPlan").
		Order("therapy_sessions.scheduled_at ASC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.SessionView, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toView())
	}
	return out, total, nil
}

func (r *SessionRepository) DeleteScheduledRecurrentFrom(ctx context.Context, therapyID string, from time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("therapy_id = ? AND status = ? AND type = ? AND scheduled_at >= ?",
			therapyID, string(domain.SessionScheduled), string(domain.SessionRecurrent), from.UTC()).
		Delete(&sessionRecord{})
	return res.RowsAffected, res.Error
}
