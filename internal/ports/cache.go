package ports

import (
	"context"
	"time"

	"github.com/veribank/faceauth/internal/domain"
)

// LivenessSessionStore keeps in-flight liveness sessions keyed by token.
// Sessions are cache-backed with a TTL aligned to their fixed lifetime so
// abandoned sessions vanish without a sweeper.
type LivenessSessionStore interface {
	Put(ctx context.Context, session domain.LivenessSession, ttl time.Duration) error
	// Get returns (nil, nil) when no session exists for the token.
	Get(ctx context.Context, token string) (*domain.LivenessSession, error)
	Delete(ctx context.Context, token string) error
}
