package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrNotEnrolled signals a login attempt for a user with no active
	// embedding records. It is decided before any recognition-engine call.
	ErrNotEnrolled = errors.New("no face enrollment for user")
	// ErrInvalidSessionState signals protocol misuse of a liveness session,
	// e.g. submitting to a completed or expired session.
	ErrInvalidSessionState = errors.New("invalid liveness session state")
	// ErrSessionExpired is returned when a submission arrives after the
	// session's fixed lifetime; the submitted image is discarded.
	ErrSessionExpired = errors.New("liveness session expired")
	// ErrEngineUnavailable wraps a recognition-engine transport failure that
	// survived the retry budget.
	ErrEngineUnavailable = errors.New("recognition engine unavailable")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
)
