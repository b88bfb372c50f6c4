package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	rec := userFromDomain(u)
	ensureID(&rec.ID)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailAlreadyRegistered
		}
		return err
	}
	*u = *rec.toDomain()
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, "email = ?", email).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string, mustChange bool) error {
	return r.update(ctx, id, map[string]any{
		"password_hash":        hash,
		"must_change_password": mustChange,
	})
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.update(ctx, id, map[string]any{"avatar_url": url})
}

// Delete soft-deletes the user.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&userRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
