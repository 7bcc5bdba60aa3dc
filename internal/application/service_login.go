package application

import (
	"context"
	"fmt"

	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

// Authenticate runs the login pipeline against the user's stored
// embeddings. Business rejections come back as a LoginResult with a step
// tag and a nil error; every terminal failure counts toward the
// profile's failed-login counters and gets exactly one audit entry.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (LoginResult, error) {
	image := cleanBase64Image(req.Image)
	if image == "" {
		return LoginResult{}, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}

	records, err := s.embeddings.ListActiveByUser(ctx, req.UserID)
	if err != nil {
		return LoginResult{}, err
	}
	if len(records) == 0 {
		// The embedding fetch is the first pipeline step; its failure
		// counts toward failed_login_attempts like any other.
		return LoginResult{}, s.failLoginErr(ctx, req, StepDatabase, domain.ErrNotEnrolled)
	}

	detectionThreshold := s.cfg.LoginDetectionThreshold
	if req.Overrides.DetectionThreshold != nil {
		detectionThreshold = *req.Overrides.DetectionThreshold
	}
	spoofingThreshold := s.cfg.SpoofingThreshold
	if req.Overrides.SpoofingThreshold != nil {
		spoofingThreshold = *req.Overrides.SpoofingThreshold
	}
	similarityThreshold := s.cfg.SimilarityThreshold
	if req.Overrides.SimilarityThreshold != nil {
		similarityThreshold = *req.Overrides.SimilarityThreshold
	}

	detect, err := s.engine.DetectFace(ctx, image, ports.DetectOptions{
		MaxFaces:            1,
		ConfidenceThreshold: detectionThreshold,
	})
	if err != nil {
		return LoginResult{}, s.failLoginErr(ctx, req, StepDetection, err)
	}
	if !detect.Success || !detect.FacesDetected || detect.FaceCount < 1 {
		return s.failLogin(ctx, req, loginFailure{
			Step:       StepDetection,
			Confidence: detect.Confidence,
			Message:    nonEmpty(detect.Message, "no face detected"),
		}), nil
	}

	spoof, err := s.engine.CheckAntiSpoofing(ctx, image, ports.AntiSpoofOptions{
		SpoofingThreshold: spoofingThreshold,
	})
	if err != nil {
		return LoginResult{}, s.failLoginErr(ctx, req, StepAntiSpoofing, err)
	}
	if !spoof.Success || !spoof.IsReal {
		spoofFailed := false
		return s.failLogin(ctx, req, loginFailure{
			Step:         StepAntiSpoofing,
			Confidence:   spoof.Confidence,
			Message:      nonEmpty(spoof.Message, "anti-spoofing check failed"),
			antiSpoofing: &spoofFailed,
		}), nil
	}

	if req.Liveness.Required() {
		session, err := s.sessions.Get(ctx, req.Liveness.Token())
		if err != nil {
			return LoginResult{}, err
		}
		if session == nil || session.UserID != req.UserID || session.Status != domain.SessionCompleted {
			return s.failLogin(ctx, req, loginFailure{
				Step:    StepLiveness,
				Message: "liveness check not completed",
			}), nil
		}
	}

	embeddings := make([][]float64, 0, len(records))
	for _, rec := range records {
		embeddings = append(embeddings, rec.Embedding)
	}
	verify, err := s.engine.VerifyFace(ctx, image, embeddings, similarityThreshold, ports.VerifyOptions{
		ModelName:       s.cfg.ModelName,
		DetectorBackend: s.cfg.DetectorBackend,
	})
	if err != nil {
		return LoginResult{}, s.failLoginErr(ctx, req, StepVerification, err)
	}

	// Both the engine's own decision and the threshold comparison must agree.
	matched := verify.Success && verify.IsMatch && verify.Similarity >= similarityThreshold
	if !matched {
		return s.failLogin(ctx, req, loginFailure{
			Step:       StepVerification,
			Confidence: verify.Confidence,
			Similarity: verify.Similarity,
			Threshold:  similarityThreshold,
			Message:    "face verification failed",
		}), nil
	}

	now := s.nowFn()
	if err := s.profiles.RecordLoginSuccess(ctx, req.UserID, now); err != nil {
		// The match decision stands; the counter update is reported but
		// does not reverse an already-decided outcome.
		s.logger.WarnContext(ctx, "login success counter update failed",
			"module", "application",
			"layer", "application",
			"operation", "authenticate",
			"outcome", "failure",
			"user_id", req.UserID,
			"error", err.Error(),
		)
	}

	s.enqueueEvent(ctx, "face.login.succeeded", req.UserID, map[string]any{
		"user_id":    req.UserID,
		"similarity": verify.Similarity,
		"login_at":   now,
	})

	spoofOK := true
	s.recordAttempt(ctx, domain.AuthenticationAttempt{
		UserID:             req.UserID,
		ActivityType:       domain.ActivityLoginAttempt,
		Success:            true,
		ConfidenceScore:    &verify.Confidence,
		AntiSpoofingResult: &spoofOK,
		Details: map[string]any{
			"similarity": verify.Similarity,
			"threshold":  similarityThreshold,
		},
		IPAddress: req.Client.IPAddress,
		UserAgent: req.Client.UserAgent,
		CreatedAt: now,
	})

	return LoginResult{
		Success:    true,
		Confidence: verify.Confidence,
		Similarity: verify.Similarity,
		Threshold:  similarityThreshold,
		Message:    "authentication successful",
	}, nil
}

type loginFailure struct {
	Step         string
	Confidence   float64
	Similarity   float64
	Threshold    float64
	Message      string
	antiSpoofing *bool
}

// failLogin records a business rejection: counter increment, one audit
// entry, and a tagged result for the caller.
func (s *Service) failLogin(ctx context.Context, req LoginRequest, failure loginFailure) LoginResult {
	now := s.nowFn()
	if err := s.profiles.RecordLoginFailure(ctx, req.UserID, now); err != nil {
		s.logger.WarnContext(ctx, "login failure counter update failed",
			"module", "application",
			"layer", "application",
			"operation", "authenticate",
			"outcome", "failure",
			"user_id", req.UserID,
			"error", err.Error(),
		)
	}

	confidence := failure.Confidence
	s.recordAttempt(ctx, domain.AuthenticationAttempt{
		UserID:             req.UserID,
		ActivityType:       domain.ActivityLoginAttempt,
		Success:            false,
		ConfidenceScore:    &confidence,
		AntiSpoofingResult: failure.antiSpoofing,
		Details: map[string]any{
			"step":       failure.Step,
			"similarity": failure.Similarity,
			"threshold":  failure.Threshold,
		},
		ErrorMessage: failure.Message,
		IPAddress:    req.Client.IPAddress,
		UserAgent:    req.Client.UserAgent,
		CreatedAt:    now,
	})

	return LoginResult{
		Success:    false,
		Step:       failure.Step,
		Confidence: failure.Confidence,
		Similarity: failure.Similarity,
		Threshold:  failure.Threshold,
		Message:    failure.Message,
	}
}

// failLoginErr handles an engine transport failure inside the pipeline:
// it still counts as a failed attempt before the error is surfaced.
func (s *Service) failLoginErr(ctx context.Context, req LoginRequest, step string, err error) error {
	now := s.nowFn()
	if updateErr := s.profiles.RecordLoginFailure(ctx, req.UserID, now); updateErr != nil {
		s.logger.WarnContext(ctx, "login failure counter update failed",
			"module", "application",
			"layer", "application",
			"operation", "authenticate",
			"outcome", "failure",
			"user_id", req.UserID,
			"error", updateErr.Error(),
		)
	}
	s.recordAttempt(ctx, domain.AuthenticationAttempt{
		UserID:       req.UserID,
		ActivityType: domain.ActivityLoginAttempt,
		Success:      false,
		Details:      map[string]any{"step": step},
		ErrorMessage: err.Error(),
		IPAddress:    req.Client.IPAddress,
		UserAgent:    req.Client.UserAgent,
		CreatedAt:    now,
	})
	return err
}
