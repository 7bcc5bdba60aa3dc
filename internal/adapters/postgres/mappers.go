package postgres

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/veribank/faceauth/internal/domain"
	"gorm.io/gorm"
)

func toDomainProfile(row profileModel) domain.UserProfile {
	return domain.UserProfile{
		UserID:                row.UserID,
		Username:              row.Username,
		FullName:              row.FullName,
		FaceRegistered:        row.FaceRegistered,
		RegistrationCompleted: row.RegistrationCompleted,
		EmbeddingCount:        row.EmbeddingCount,
		FailedLoginAttempts:   row.FailedLoginAttempts,
		LastLoginAt:           row.LastLoginAt,
		LastFailedLoginAt:     row.LastFailedLoginAt,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

func toDomainEmbedding(row faceEmbeddingModel) domain.FaceEmbeddingRecord {
	var embedding []float64
	_ = json.Unmarshal([]byte(row.EmbeddingData), &embedding)
	var modelCfg domain.ModelConfig
	_ = json.Unmarshal([]byte(row.ModelConfig), &modelCfg)
	return domain.FaceEmbeddingRecord{
		EmbeddingID:        row.EmbeddingID,
		UserID:             row.UserID,
		Embedding:          embedding,
		ImageNumber:        row.ImageNumber,
		ConfidenceScore:    row.ConfidenceScore,
		AntiSpoofingPassed: row.AntiSpoofingPassed,
		ModelConfig:        modelCfg,
		EmbeddingVersion:   row.EmbeddingVersion,
		IsActive:           row.IsActive,
		CreatedAt:          row.CreatedAt,
	}
}

func toDomainAttempt(row recognitionLogModel) domain.AuthenticationAttempt {
	var details map[string]any
	if row.Details != "" {
		_ = json.Unmarshal([]byte(row.Details), &details)
	}
	attempt := domain.AuthenticationAttempt{
		ID:                 row.ID,
		UserID:             row.UserID,
		ActivityType:       row.ActivityType,
		Success:            row.Success,
		ConfidenceScore:    row.ConfidenceScore,
		AntiSpoofingResult: row.AntiSpoofingResult,
		Details:            details,
		UserAgent:          row.UserAgent,
		CreatedAt:          row.CreatedAt,
	}
	if row.SessionID != nil {
		attempt.SessionID = *row.SessionID
	}
	if row.ErrorMessage != nil {
		attempt.ErrorMessage = *row.ErrorMessage
	}
	if row.IPAddress != nil {
		attempt.IPAddress = *row.IPAddress
	}
	return attempt
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
