package domain

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is one instructed action during a liveness session.
type Challenge string

const (
	ChallengeBlink     Challenge = "blink"
	ChallengeSmile     Challenge = "smile"
	ChallengeTurnLeft  Challenge = "turn_left"
	ChallengeTurnRight Challenge = "turn_right"
)

// ValidChallenge reports whether c is part of the fixed challenge vocabulary.
func ValidChallenge(c Challenge) bool {
	switch c {
	case ChallengeBlink, ChallengeSmile, ChallengeTurnLeft, ChallengeTurnRight:
		return true
	}
	return false
}

// SessionStatus is the liveness session lifecycle state.
// completed, failed and expired are terminal.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionExpired   SessionStatus = "expired"
)

// LivenessSession is the ephemeral challenge-response state for one liveness
// check. It lives only for its fixed lifetime and is owned by the invocation
// that created it; the session token disambiguates concurrent attempts.
type LivenessSession struct {
	Token          string        `json:"token"`
	UserID         uuid.UUID     `json:"user_id"`
	Challenges     []Challenge   `json:"challenges"`
	Cursor         int           `json:"cursor"`
	CapturedImages []string      `json:"captured_images"`
	Status         SessionStatus `json:"status"`
	Attempts       int           `json:"attempts"`
	MaxAttempts    int           `json:"max_attempts"`
	Confidence     float64       `json:"confidence"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

// Terminal reports whether the session can no longer accept submissions.
func (s *LivenessSession) Terminal() bool {
	switch s.Status {
	case SessionCompleted, SessionFailed, SessionExpired:
		return true
	}
	return false
}

// ExpiredAt reports whether the session's fixed lifetime has elapsed at now.
func (s *LivenessSession) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// CurrentChallenge returns the challenge awaiting capture, or "" once all
// challenges have been captured.
func (s *LivenessSession) CurrentChallenge() Challenge {
	if s.Cursor < 0 || s.Cursor >= len(s.Challenges) {
		return ""
	}
	return s.Challenges[s.Cursor]
}
