package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

func (r *auditRepository) Insert(ctx context.Context, attempt domain.AuthenticationAttempt) error {
	details := "{}"
	if attempt.Details != nil {
		if raw, err := json.Marshal(attempt.Details); err == nil {
			details = string(raw)
		}
	}
	rec := recognitionLogModel{
		UserID:             attempt.UserID,
		SessionID:          nullableString(attempt.SessionID),
		ActivityType:       attempt.ActivityType,
		Success:            attempt.Success,
		ConfidenceScore:    attempt.ConfidenceScore,
		AntiSpoofingResult: attempt.AntiSpoofingResult,
		Details:            details,
		ErrorMessage:       nullableString(attempt.ErrorMessage),
		IPAddress:          nullableString(attempt.IPAddress),
		UserAgent:          attempt.UserAgent,
		CreatedAt:          attempt.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *auditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, since *time.Time, activityType string) ([]domain.AuthenticationAttempt, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	activityType = strings.TrimSpace(activityType)
	if activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}

	var rows []recognitionLogModel
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.AuthenticationAttempt, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainAttempt(row))
	}
	return result, nil
}
