package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
)

type PsychologistRepository struct {
	db *gorm.DB
}

func (r *PsychologistRepository) Create(ctx context.Context, p *domain.PsychologistProfile) error {
	rec := psychologistFromDomain(p)
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	p.ID = rec.ID
	p.CreatedAt, p.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *PsychologistRepository) FindByUserID(ctx context.Context, userID string) (*domain.PsychologistProfile, error) {
	var rec psychologistRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = psychologist_profiles.user_id AND users.deleted_at IS NULL").
		Preload("User").
		First(&rec, "psychologist_profiles.user_id = ?", userID).Error
	if err != nil {
		return nil, translate(err, domain.ErrPsychologistProfileNotFound)
	}
	return rec.toDomain(), nil
}

// List returns the psychologist directory ordered by name.
func (r *PsychologistRepository) List(ctx context.Context, page domain.PageRequest) ([]domain.PsychologistProfile, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&psychologistRecord{}).
		Joins("JOIN users ON users.id = psychologist_profiles.user_id AND users.deleted_at IS NULL").
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []psychologistRecord
	if err := paginate(q, page.Offset(), page.PerPage).
		Preload("User").
		Order("users.name ASC").
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}

	out := make([]domain.PsychologistProfile, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, total, nil
}

func (r *PsychologistRepository) Update(ctx context.Context, p *domain.PsychologistProfile) error {
	rec := psychologistFromDomain(p)
	res := r.db.WithContext(ctx).Model(&psychologistRecord{}).Where("id = ?", p.ID).Updates(map[string]any{
		"license_number":   rec.LicenseNumber,
		"bio":              rec.Bio,
		"specializations":  rec.Specializations,
		"modalities":       rec.Modalities,
		"languages":        rec.Languages,
		"session_fee":      rec.SessionFee,
		"years_experience": rec.YearsExperience,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPsychologistProfileNotFound
	}
	return nil
}

type AvailabilityRepository struct {
	db *gorm.DB
}

func (r *AvailabilityRepository) ListByProfile(ctx context.Context, profileID string) ([]domain.AvailabilitySlot, error) {
	var recs []availabilityRecord
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("day_of_week ASC, start_time ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AvailabilitySlot, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, nil
}

func (r *AvailabilityRepository) ReplaceManaged(ctx context.Context, profileID string, slots []domain.AvailabilitySlot) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("profile_id = ? AND therapy_id IS NULL", profileID).Delete(&availabilityRecord{}).Error; err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}
	recs := make([]availabilityRecord, len(slots))
	for i := range slots {
		recs[i] = availabilityFromDomain(&slots[i])
		recs[i].ProfileID = profileID
		recs[i].TherapyID = nil
		ensureID(&recs[i].ID)
	}
	return db.Create(&recs).Error
}

func (r *AvailabilityRepository) ReplaceTherapyBlock(ctx context.Context, slot *domain.AvailabilitySlot) error {
	if slot.TherapyID == nil {
		return domain.ErrValidation.WithMessage("blocked slot must reference a therapy")
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("therapy_id = ?", *slot.TherapyID).Delete(&availabilityRecord{}).Error; err != nil {
		return err
	}
	rec := availabilityFromDomain(slot)
	rec.ID = ""
	ensureID(&rec.ID)
	if err := db.Create(&rec).Error; err != nil {
		return err
	}
	slot.ID = rec.ID
	return nil
}

type ConsultantRepository struct {
	db *gorm.DB
}

func (r *ConsultantRepository) Create(ctx context.Context, p *domain.ConsultantProfile) error {
	rec, err := consultantFromDomain(p)
	if err != nil {
		return err
	}
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	p.ID = rec.ID
	p.CreatedAt, p.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *ConsultantRepository) FindByUserID(ctx context.Context, userID string) (*domain.ConsultantProfile, error) {
	return r.find(ctx, r.db.WithContext(ctx), userID)
}

func (r *ConsultantRepository) FindByUserIDForUpdate(ctx context.Context, userID string) (*domain.ConsultantProfile, error) {
	return r.find(ctx, forUpdate(r.db.WithContext(ctx)), userID)
}

func (r *ConsultantRepository) find(_ context.Context, db *gorm.DB, userID string) (*domain.ConsultantProfile, error) {
	var rec consultantRecord
	if err := db.First(&rec, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, domain.ErrConsultantProfileNotFound)
	}
	return rec.toDomain()
}

func (r *ConsultantRepository) Update(ctx context.Context, p *domain.ConsultantProfile) error {
	rec, err := consultantFromDomain(p)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&consultantRecord{}).Where("id = ?", p.ID).Updates(map[string]any{
		"phone":             rec.Phone,
		"birth_date":        rec.BirthDate,
		"emergency_contact": rec.EmergencyContact,
		"onboarding_status": rec.OnboardingStatus,
		"onboarding_step":   rec.OnboardingStep,
		"onboarding_data":   rec.OnboardingData,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConsultantProfileNotFound
	}
	return nil
}
