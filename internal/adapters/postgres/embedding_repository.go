package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
	"gorm.io/gorm"
)

type embeddingRepository struct {
	db *gorm.DB
}

func (r *embeddingRepository) Insert(ctx context.Context, params ports.InsertEmbeddingParams) (domain.FaceEmbeddingRecord, error) {
	embeddingJSON, err := json.Marshal(params.Embedding)
	if err != nil {
		return domain.FaceEmbeddingRecord{}, fmt.Errorf("marshal embedding: %w", err)
	}
	modelCfgJSON, err := json.Marshal(params.ModelConfig)
	if err != nil {
		return domain.FaceEmbeddingRecord{}, fmt.Errorf("marshal model config: %w", err)
	}

	rec := faceEmbeddingModel{
		UserID:             params.UserID,
		EmbeddingData:      string(embeddingJSON),
		ImageNumber:        params.ImageNumber,
		ConfidenceScore:    params.ConfidenceScore,
		AntiSpoofingPassed: params.AntiSpoofingPassed,
		ModelConfig:        string(modelCfgJSON),
		EmbeddingVersion:   params.EmbeddingVersion,
		IsActive:           true,
		CreatedAt:          params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.FaceEmbeddingRecord{}, err
	}
	return toDomainEmbedding(rec), nil
}

func (r *embeddingRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.FaceEmbeddingRecord, error) {
	var rows []faceEmbeddingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.FaceEmbeddingRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainEmbedding(row))
	}
	return result, nil
}

// ResetEnrollment runs both updates in one transaction; a crash between
// them must not leave a registered profile with no active embeddings.
func (r *embeddingRepository) ResetEnrollment(ctx context.Context, userID uuid.UUID, at time.Time) (int, error) {
	var deactivated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&faceEmbeddingModel{}).
			Where("user_id = ?", userID).
			Where("is_active = ?", true).
			Updates(map[string]any{
				"is_active":      false,
				"deactivated_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		deactivated = res.RowsAffected

		return tx.Model(&profileModel{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"face_registered":        false,
				"registration_completed": false,
				"embedding_count":        0,
				"updated_at":             at,
			}).Error
	})
	if err != nil {
		return 0, err
	}
	return int(deactivated), nil
}
