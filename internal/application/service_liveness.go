package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

// StartLivenessSession opens a challenge-response session. An empty
// challenge list falls back to the configured default sequence.
func (s *Service) StartLivenessSession(ctx context.Context, userID uuid.UUID, challenges []domain.Challenge) (LivenessSessionView, error) {
	if userID == uuid.Nil {
		return LivenessSessionView{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if len(challenges) == 0 {
		challenges = append([]domain.Challenge(nil), s.cfg.DefaultChallenges...)
	}
	for _, c := range challenges {
		if !domain.ValidChallenge(c) {
			return LivenessSessionView{}, fmt.Errorf("%w: unknown challenge %q", domain.ErrInvalidInput, c)
		}
	}

	now := s.nowFn()
	session := domain.LivenessSession{
		Token:       fmt.Sprintf("liveness_%d_%s", now.UnixMilli(), randomHex(8)),
		UserID:      userID,
		Challenges:  challenges,
		Status:      domain.SessionActive,
		MaxAttempts: s.cfg.SessionMaxAttempts,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Put(ctx, session, s.cfg.SessionTTL); err != nil {
		return LivenessSessionView{}, fmt.Errorf("store liveness session: %w", err)
	}
	return sessionView(session), nil
}

// SubmitLivenessImage appends a capture for the current challenge and
// advances the cursor. Reaching the end of the challenge set triggers
// final scoring via the recognition engine; a failed score rewinds the
// session for another round until MaxAttempts is spent. An expired session
// transitions to expired and the submitted image is discarded.
func (s *Service) SubmitLivenessImage(ctx context.Context, token, image string) (LivenessSessionView, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return LivenessSessionView{}, err
	}
	if session == nil {
		return LivenessSessionView{}, fmt.Errorf("%w: liveness session", domain.ErrNotFound)
	}
	if session.Status != domain.SessionActive {
		return sessionView(*session), domain.ErrInvalidSessionState
	}

	now := s.nowFn()
	if session.ExpiredAt(now) {
		session.Status = domain.SessionExpired
		// kept briefly so the caller can observe the terminal state
		_ = s.sessions.Put(ctx, *session, time.Minute)
		return sessionView(*session), domain.ErrSessionExpired
	}

	image = cleanBase64Image(image)
	if image == "" {
		return sessionView(*session), fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}

	session.CapturedImages = append(session.CapturedImages, image)
	session.Cursor++

	if session.Cursor >= len(session.Challenges) {
		session.Attempts++
		result, scoreErr := s.engine.CheckLiveness(ctx, session.CapturedImages, challengeSequence(session.Challenges), ports.LivenessOptions{
			LivenessThreshold: s.cfg.LivenessThreshold,
		})
		switch {
		case scoreErr != nil:
			s.logger.WarnContext(ctx, "liveness scoring failed",
				"module", "application",
				"layer", "application",
				"operation", "submit_liveness_image",
				"outcome", "failure",
				"session_token", session.Token,
				"error", scoreErr.Error(),
			)
			session.Status = domain.SessionFailed
		case result.Success && result.LivenessPassed:
			session.Status = domain.SessionCompleted
			session.Confidence = result.Confidence
		default:
			session.Status = domain.SessionFailed
			session.Confidence = result.Confidence
		}

		// A failed score consumes one attempt; the session rewinds for
		// another capture round until MaxAttempts is reached.
		if session.Status == domain.SessionFailed && session.Attempts < session.MaxAttempts {
			session.Status = domain.SessionActive
			session.Cursor = 0
			session.CapturedImages = nil
		}
	}

	if err := s.sessions.Put(ctx, *session, session.ExpiresAt.Sub(now)); err != nil {
		return LivenessSessionView{}, fmt.Errorf("store liveness session: %w", err)
	}
	return sessionView(*session), nil
}

// ResetLivenessSession discards the session entirely.
func (s *Service) ResetLivenessSession(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func sessionView(session domain.LivenessSession) LivenessSessionView {
	return LivenessSessionView{
		Token:            session.Token,
		Status:           string(session.Status),
		Challenges:       session.Challenges,
		CurrentChallenge: session.CurrentChallenge(),
		Cursor:           session.Cursor,
		Attempts:         session.Attempts,
		MaxAttempts:      session.MaxAttempts,
		Confidence:       session.Confidence,
		ExpiresAt:        session.ExpiresAt,
	}
}

func challengeSequence(challenges []domain.Challenge) string {
	parts := make([]string, 0, len(challenges))
	for _, c := range challenges {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}
