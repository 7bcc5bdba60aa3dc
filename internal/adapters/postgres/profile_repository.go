package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) Create(ctx context.Context, params ports.CreateProfileParams) (domain.UserProfile, error) {
	rec := profileModel{
		UserID:    params.UserID,
		Username:  params.Username,
		FullName:  params.FullName,
		CreatedAt: params.CreatedAt,
		UpdatedAt: params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.UserProfile{}, domain.ErrConflict
		}
		return domain.UserProfile{}, err
	}
	return toDomainProfile(rec), nil
}

func (r *profileRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error) {
	var rec profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, err
	}
	return toDomainProfile(rec), nil
}

func (r *profileRepository) MarkFaceRegistered(ctx context.Context, userID uuid.UUID, embeddingCount int, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"face_registered":        true,
			"registration_completed": true,
			"embedding_count":        embeddingCount,
			"updated_at":             updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *profileRepository) RecordLoginSuccess(ctx context.Context, userID uuid.UUID, loginAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"last_login_at":         loginAt,
			"updated_at":            loginAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordLoginFailure uses a SQL-level increment so concurrent failed logins
// for the same user cannot under-count.
func (r *profileRepository) RecordLoginFailure(ctx context.Context, userID uuid.UUID, failedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
			"last_failed_login_at":  failedAt,
			"updated_at":            failedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
