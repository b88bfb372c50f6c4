package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type TherapyRepository struct {
	db *gorm.DB
}

func (r *TherapyRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Psychologist").Preload("Consultant").Preload("BillingPlan").Preload("Recurrence")
}

func (r *TherapyRepository) Create(ctx context.Context, t *domain.Therapy) error {
	rec := therapyFromDomain(t)
	ensureID(&rec.ID)
	if rec.BillingPlan != nil {
		ensureID(&rec.BillingPlan.ID)
		rec.BillingPlan.TherapyID = rec.ID
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return translateTherapyWrite(err)
	}
	t.ID = rec.ID
	t.CreatedAt, t.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	if rec.BillingPlan != nil {
		t.BillingPlan = rec.BillingPlan.toDomain()
	}
	return nil
}

func (r *TherapyRepository) FindByID(ctx context.Context, id string) (*domain.Therapy, error) {
	return r.find(r.withRelations(r.db.WithContext(ctx)), id)
}

func (r *TherapyRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Therapy, error) {
	return r.find(r.withRelations(forUpdate(r.db.WithContext(ctx))), id)
}

func (r *TherapyRepository) find(db *gorm.DB, id string) (*domain.Therapy, error) {
	var rec therapyRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrTherapyNotFound)
	}
	return rec.toDomain(), nil
}

func (r *TherapyRepository) List(ctx context.Context, f ports.TherapyFilter) ([]domain.Therapy, int64, error) {
	q := r.db.WithContext(ctx).Model(&therapyRecord{})
	if f.PsychologistID != "" {
		q = q.Where("psychologist_id = ?", f.PsychologistID)
	}
	if f.ConsultantID != "" {
		q = q.Where("consultant_id = ?", f.ConsultantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []therapyRecord
	if err := r.withRelations(paginate(q, f.Page.Offset(), f.Page.PerPage)).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Therapy, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, total, nil
}

func (r *TherapyRepository) Update(ctx context.Context, t *domain.Therapy) error {
	res := r.db.WithContext(ctx).Model(&therapyRecord{}).Where("id = ?", t.ID).Updates(map[string]any{
		"status":   string(t.Status),
		"modality": t.Modality,
		"notes":    t.Notes,
	})
	if res.Error != nil {
		return translateTherapyWrite(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTherapyNotFound
	}
	return nil
}

func (r *TherapyRepository) HasActive(ctx context.Context, consultantID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&therapyRecord{}).
		Where("consultant_id = ? AND status = ?", consultantID, string(domain.TherapyActive)).
		Count(&n).Error
	return n > 0, err
}

// ListByConsultant returns the consultant's therapies in the given status,
// oldest first.
func (r *TherapyRepository) ListByConsultant(ctx context.Context, consultantID string, status domain.TherapyStatus) ([]domain.Therapy, error) {
	var recs []therapyRecord
	if err := r.db.WithContext(ctx).
		Preload("BillingPlan").
		Where("consultant_id = ? AND status = ?", consultantID, string(status)).
		Order("created_at ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Therapy, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

// Delete soft-deletes the therapy.
func (r *TherapyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&therapyRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTherapyNotFound
	}
	return nil
}

func (r *TherapyRepository) FindRecurrence(ctx context.Context, therapyID string) (*domain.RecurrenceConfiguration, error) {
	var rec recurrenceRecord
	if err := r.db.WithContext(ctx).First(&rec, "therapy_id = ?", therapyID).Error; err != nil {
		return nil, translate(err, domain.ErrRecurrenceNotFound)
	}
	return rec.toDomain(), nil
}

// UpsertRecurrence replaces the therapy's configuration, keeping its id when
// one already exists. Callers hold the therapy row lock.
func (r *TherapyRepository) UpsertRecurrence(ctx context.Context, c *domain.RecurrenceConfiguration) error {
	db := r.db.WithContext(ctx)
	rec := recurrenceFromDomain(c)

	var existing recurrenceRecord
	err := db.First(&existing, "therapy_id = ?", c.TherapyID).Error
	switch {
	case err == nil:
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		err = db.Save(&rec).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		ensureID(&rec.ID)
		err = db.Create(&rec).Error
	}
	if err != nil {
		return err
	}
	*c = *rec.toDomain()
	return nil
}

func translateTherapyWrite(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConsultantHasActiveTherapy
	}
	return err
}
