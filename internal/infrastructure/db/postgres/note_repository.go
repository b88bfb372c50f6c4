package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
)

type SessionNoteRepository struct {
	db *gorm.DB
}

func (r *SessionNoteRepository) Create(ctx context.Context, n *domain.SessionNote) error {
	rec := sessionNoteRecord{
		ID:        n.ID,
		SessionID: n.SessionID,
		AuthorID:  n.AuthorID,
		Content:   n.Content,
		IsPrivate: n.IsPrivate,
	}
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	n.ID = rec.ID
	n.CreatedAt, n.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *SessionNoteRepository) FindByID(ctx context.Context, id string) (*domain.SessionNote, error) {
	var rec sessionNoteRecord
	if err := r.db.WithContext(ctx).Preload("Author").First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrNoteNotFound)
	}
	return rec.toDomain(), nil
}

func (r *SessionNoteRepository) Update(ctx context.Context, n *domain.SessionNote) error {
	res := r.db.WithContext(ctx).Model(&sessionNoteRecord{}).Where("id = ?", n.ID).Updates(map[string]any{
		"content":    n.Content,
		"is_private": n.IsPrivate,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *SessionNoteRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&sessionNoteRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

// ListVisible returns shared notes plus the viewer's own private notes.
func (r *SessionNoteRepository) ListVisible(ctx context.Context, sessionID, viewerID string) ([]domain.SessionNote, error) {
	var recs []sessionNoteRecord
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("session_id = ?", sessionID).
		Where("is_private = ? OR author_id = ?", false, viewerID).
		Order("created_at ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.SessionNote, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

type TherapyNoteRepository struct {
	db *gorm.DB
}

func (r *TherapyNoteRepository) Create(ctx context.Context, n *domain.TherapyNote) error {
	rec := therapyNoteRecord{
		ID:        n.ID,
		TherapyID: n.TherapyID,
		AuthorID:  n.AuthorID,
		Title:     n.Title,
		Content:   n.Content,
	}
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	n.ID = rec.ID
	n.CreatedAt, n.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *TherapyNoteRepository) FindByID(ctx context.Context, id string) (*domain.TherapyNote, error) {
	var rec therapyNoteRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrNoteNotFound)
	}
	return rec.toDomain(), nil
}

func (r *TherapyNoteRepository) Update(ctx context.Context, n *domain.TherapyNote) error {
	res := r.db.WithContext(ctx).Model(&therapyNoteRecord{}).Where("id = ?", n.ID).Updates(map[string]any{
		"title":   n.Title,
		"content": n.Content,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *TherapyNoteRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&therapyNoteRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *TherapyNoteRepository) ListByTherapy(ctx context.Context, therapyID string) ([]domain.TherapyNote, error) {
	var recs []therapyNoteRecord
	if err := r.db.WithContext(ctx).
		Where("therapy_id = ?", therapyID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]domain.TherapyNote, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].toDomain())
	}
	return out, nil
}

type PaymentRepository struct {
	db *gorm.DB
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	rec := paymentRecord{
		ID:           p.ID,
		TherapyID:    p.TherapyID,
		SessionID:    p.SessionID,
		Amount:       p.Amount,
		Method:       p.Method,
		Notes:        p.Notes,
		PaidAt:       p.PaidAt.UTC(),
		RegisteredBy: p.RegisteredBy,
	}
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}
	p.ID = rec.ID
	p.CreatedAt = rec.CreatedAt
	return nil
}

func (r *PaymentRepository) ListByTherapy(ctx context.Context, therapyID string, page domain.PageRequest) ([]domain.Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&paymentRecord{}).Where("therapy_id = ?", therapyID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []paymentRecord
	if err := paginate(q, page.Offset(), page.PerPage).Order("paid_at DESC").Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	out := make([]domain.Payment, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toDomain())
	}
	return out, total, nil
}
