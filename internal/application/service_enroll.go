package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

// RegisterFaces runs the enrollment pipeline over the submitted images.
// Each image passes detect, anti-spoof, embed and persist in order; the
// first failed stage tags the per-image result. Overall success requires
// MinRequiredImages successful images.
func (s *Service) RegisterFaces(ctx context.Context, req EnrollmentRequest) (RegistrationResult, error) {
	if len(req.Images) == 0 {
		return RegistrationResult{}, fmt.Errorf("%w: at least one image is required", domain.ErrInvalidInput)
	}
	if _, err := s.profiles.GetByID(ctx, req.UserID); err != nil {
		return RegistrationResult{}, err
	}

	detectionThreshold := s.cfg.EnrollDetectionThreshold
	if req.Overrides.DetectionThreshold != nil {
		detectionThreshold = *req.Overrides.DetectionThreshold
	}
	spoofingThreshold := s.cfg.SpoofingThreshold
	if req.Overrides.SpoofingThreshold != nil {
		spoofingThreshold = *req.Overrides.SpoofingThreshold
	}

	// Clears the registration flags along with the prior embeddings; the
	// profile stays unregistered unless this run reaches the minimum.
	now := s.nowFn()
	deactivated, err := s.embeddings.ResetEnrollment(ctx, req.UserID, now)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("reset enrollment: %w", err)
	}
	if deactivated > 0 {
		s.logger.InfoContext(ctx, "enrollment reset for re-registration",
			"module", "application",
			"layer", "application",
			"operation", "register_faces",
			"outcome", "success",
			"user_id", req.UserID,
			"deactivated_count", deactivated,
		)
	}

	modelCfg := domain.ModelConfig{
		ModelName:       s.cfg.ModelName,
		DetectorBackend: s.cfg.DetectorBackend,
	}

	results := make([]ImageResult, 0, len(req.Images))
	successCount := 0
	var lastConfidence float64
	spoofPassed := true
	for i, raw := range req.Images {
		if err := ctx.Err(); err != nil {
			return RegistrationResult{}, err
		}
		res := s.enrollOne(ctx, req.UserID, cleanBase64Image(raw), i+1, detectionThreshold, spoofingThreshold, modelCfg)
		if res.Success {
			successCount++
			lastConfidence = res.Confidence
		}
		if res.Step == StepAntiSpoofing {
			spoofPassed = false
		}
		results = append(results, res)
	}

	success := successCount >= s.cfg.MinRequiredImages
	message := fmt.Sprintf("registered %d of %d images", successCount, len(req.Images))
	if !success {
		message = fmt.Sprintf("registration requires at least %d valid images, got %d", s.cfg.MinRequiredImages, successCount)
	}

	if success {
		if err := s.profiles.MarkFaceRegistered(ctx, req.UserID, successCount, s.nowFn()); err != nil {
			return RegistrationResult{}, fmt.Errorf("mark face registered: %w", err)
		}
		s.enqueueEvent(ctx, "face.enrollment.completed", req.UserID, map[string]any{
			"user_id":         req.UserID,
			"embedding_count": successCount,
			"completed_at":    s.nowFn(),
		})
	}

	confidence := lastConfidence
	s.recordAttempt(ctx, domain.AuthenticationAttempt{
		UserID:             req.UserID,
		ActivityType:       domain.ActivityRegistration,
		Success:            success,
		ConfidenceScore:    &confidence,
		AntiSpoofingResult: &spoofPassed,
		Details: map[string]any{
			"total_images":  len(req.Images),
			"success_count": successCount,
		},
		IPAddress: req.Client.IPAddress,
		UserAgent: req.Client.UserAgent,
		CreatedAt: s.nowFn(),
	})

	return RegistrationResult{
		Success:      success,
		SuccessCount: successCount,
		TotalImages:  len(req.Images),
		Images:       results,
		Message:      message,
	}, nil
}

func (s *Service) enrollOne(ctx context.Context, userID uuid.UUID, image string, imageNumber int, detectionThreshold, spoofingThreshold float64, modelCfg domain.ModelConfig) ImageResult {
	fail := func(step, message string, confidence float64) ImageResult {
		return ImageResult{ImageNumber: imageNumber, Step: step, Message: message, Confidence: confidence}
	}

	detect, err := s.engine.DetectFace(ctx, image, ports.DetectOptions{
		MaxFaces:            1,
		ConfidenceThreshold: detectionThreshold,
	})
	if err != nil {
		return fail(StepDetection, err.Error(), 0)
	}
	if !detect.Success || !detect.FacesDetected || detect.FaceCount < 1 {
		return fail(StepDetection, nonEmpty(detect.Message, "no face detected"), detect.Confidence)
	}

	spoof, err := s.engine.CheckAntiSpoofing(ctx, image, ports.AntiSpoofOptions{
		SpoofingThreshold: spoofingThreshold,
	})
	if err != nil {
		return fail(StepAntiSpoofing, err.Error(), 0)
	}
	if !spoof.Success || !spoof.IsReal {
		return fail(StepAntiSpoofing, nonEmpty(spoof.Message, "anti-spoofing check failed"), spoof.Confidence)
	}

	embed, err := s.engine.GenerateEmbedding(ctx, image, ports.EmbeddingOptions{
		ModelName:       modelCfg.ModelName,
		DetectorBackend: modelCfg.DetectorBackend,
	})
	if err != nil {
		return fail(StepEmbedding, err.Error(), 0)
	}
	if !embed.Success || len(embed.Embedding) == 0 {
		return fail(StepEmbedding, nonEmpty(embed.Message, "embedding generation failed"), embed.Confidence)
	}

	recordCfg := modelCfg
	recordCfg.EmbeddingSize = len(embed.Embedding)
	if _, err := s.embeddings.Insert(ctx, ports.InsertEmbeddingParams{
		UserID:             userID,
		Embedding:          embed.Embedding,
		ImageNumber:        imageNumber,
		ConfidenceScore:    embed.Confidence,
		AntiSpoofingPassed: true,
		ModelConfig:        recordCfg,
		EmbeddingVersion:   s.cfg.EmbeddingVersion,
		CreatedAt:          s.nowFn(),
	}); err != nil {
		return fail(StepDatabase, err.Error(), embed.Confidence)
	}

	return ImageResult{ImageNumber: imageNumber, Success: true, Confidence: embed.Confidence}
}

// enqueueEvent writes an outbox event; failure is logged and swallowed
// since event delivery is best-effort relative to the auth flows.
func (s *Service) enqueueEvent(ctx context.Context, eventType string, userID uuid.UUID, body map[string]any) {
	payload, _ := json.Marshal(body)
	if err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: userID.String(),
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}); err != nil {
		s.logger.WarnContext(ctx, "outbox enqueue failed",
			"module", "application",
			"layer", "application",
			"operation", "enqueue_event",
			"outcome", "failure",
			"event_type", eventType,
			"user_id", userID,
			"error", err.Error(),
		)
	}
}

func nonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
