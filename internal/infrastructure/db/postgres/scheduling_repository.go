package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type PropositionRepository struct {
	db *gorm.DB
}

func (r *PropositionRepository) Create(ctx context.Context, p *domain.ScheduleProposition) error {
	rec := propositionFromDomain(p)
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	p.ID = rec.ID
	p.CreatedAt, p.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *PropositionRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.ScheduleProposition, error) {
	var rec propositionRecord
	if err := forUpdate(r.db.WithContext(ctx)).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrPropositionNotFound)
	}
	return rec.toDomain(), nil
}

func (r *PropositionRepository) Update(ctx context.Context, p *domain.ScheduleProposition) error {
	res := r.db.WithContext(ctx).Model(&propositionRecord{}).Where("id = ?", p.ID).Updates(map[string]any{
		"status":        string(p.Status),
		"selected_slot": utcPtr(p.SelectedSlot),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPropositionNotFound
	}
	return nil
}

func (r *PropositionRepository) ListByTherapy(ctx context.Context, therapyID string) ([]domain.ScheduleProposition, error) {
	var recs []propositionRecord
	if err := r.db.WithContext(ctx).
		Where("therapy_id = ?", therapyID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ScheduleProposition, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

type SessionRequestRepository struct {
	db *gorm.DB
}

func (r *SessionRequestRepository) Create(ctx context.Context, req *domain.SessionRequest) error {
	rec := sessionRequestFromDomain(req)
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	req.ID = rec.ID
	req.CreatedAt, req.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *SessionRequestRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.SessionRequest, error) {
	var rec sessionRequestRecord
	if err := forUpdate(r.db.WithContext(ctx)).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrSessionRequestNotFound)
	}
	return rec.toDomain(), nil
}

func (r *SessionRequestRepository) Update(ctx context.Context, req *domain.SessionRequest) error {
	res := r.db.WithContext(ctx).Model(&sessionRequestRecord{}).Where("id = ?", req.ID).
		Update("status", string(req.Status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSessionRequestNotFound
	}
	return nil
}

func (r *SessionRequestRepository) ListByTherapy(ctx context.Context, therapyID string) ([]domain.SessionRequest, error) {
	var recs []sessionRequestRecord
	if err := r.db.WithContext(ctx).
		Where("therapy_id = ?", therapyID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.SessionRequest, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

type TherapyRequestRepository struct {
	db *gorm.DB
}

func (r *TherapyRequestRepository) Create(ctx context.Context, req *domain.TherapyRequest) error {
	rec := therapyRequestFromDomain(req)
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	req.ID = rec.ID
	req.CreatedAt, req.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *TherapyRequestRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.TherapyRequest, error) {
	var rec therapyRequestRecord
	if err := forUpdate(r.db.WithContext(ctx)).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrTherapyRequestNotFound)
	}
	return rec.toDomain(), nil
}

func (r *TherapyRequestRepository) Update(ctx context.Context, req *domain.TherapyRequest) error {
	res := r.db.WithContext(ctx).Model(&therapyRequestRecord{}).Where("id = ?", req.ID).Updates(map[string]any{
		"status":     string(req.Status),
		"therapy_id": req.TherapyID,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTherapyRequestNotFound
	}
	return nil
}

func (r *TherapyRequestRepository) ExistsPending(ctx context.Context, consultantID, psychologistID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&therapyRequestRecord{}).
		Where("consultant_id = ? AND psychologist_id = ? AND status = ?",
			consultantID, psychologistID, string(domain.RequestPending)).
		Count(&n).Error
	return n > 0, err
}

func (r *TherapyRequestRepository) List(ctx context.Context, f ports.TherapyRequestFilter) ([]domain.TherapyRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&therapyRequestRecord{})
	if f.ConsultantID != "" {
		q = q.Where("consultant_id = ?", f.ConsultantID)
	}
	if f.PsychologistID != "" {
		q = q.Where("psychologist_id = ?", f.PsychologistID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []therapyRequestRecord
	if err := paginate(q, f.Page.Offset(), f.Page.PerPage).
		Preload("Consultant").
		Preload("Psychologist").
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.TherapyRequest, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, total, nil
}
