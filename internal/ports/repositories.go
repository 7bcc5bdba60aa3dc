package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
)

// CreateProfileParams captures profile-creation inputs.
type CreateProfileParams struct {
	UserID    uuid.UUID
	Username  string
	FullName  string
	CreatedAt time.Time
}

// ProfileRepository defines persistence operations for user profiles.
// Counter updates are expressed as explicit operations so the store can
// apply them atomically; two concurrent failed logins must both count.
type ProfileRepository interface {
	Create(ctx context.Context, params CreateProfileParams) (domain.UserProfile, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error)
	// MarkFaceRegistered flips the enrollment flags and records how many
	// active embeddings back them.
	MarkFaceRegistered(ctx context.Context, userID uuid.UUID, embeddingCount int, updatedAt time.Time) error
	// RecordLoginSuccess resets failed_login_attempts and stamps last_login_at.
	RecordLoginSuccess(ctx context.Context, userID uuid.UUID, loginAt time.Time) error
	// RecordLoginFailure atomically increments failed_login_attempts and
	// stamps last_failed_login_at.
	RecordLoginFailure(ctx context.Context, userID uuid.UUID, failedAt time.Time) error
}

// InsertEmbeddingParams captures one embedding record at enrollment time.
type InsertEmbeddingParams struct {
	UserID             uuid.UUID
	Embedding          []float64
	ImageNumber        int
	ConfidenceScore    float64
	AntiSpoofingPassed bool
	ModelConfig        domain.ModelConfig
	EmbeddingVersion   string
	CreatedAt          time.Time
}

// EmbeddingRepository manages face embedding records. Records are never
// updated in place; re-registration soft-deletes a user's active set.
type EmbeddingRepository interface {
	Insert(ctx context.Context, params InsertEmbeddingParams) (domain.FaceEmbeddingRecord, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.FaceEmbeddingRecord, error)
	// ResetEnrollment deactivates the user's active embeddings and clears
	// the profile's registration flags and embedding count in the same
	// transaction, so a profile is never marked registered while zero
	// active embeddings back it. Returns the number of records deactivated.
	ResetEnrollment(ctx context.Context, userID uuid.UUID, at time.Time) (int, error)
}

// AuditRepository stores authentication attempts. Insert-only; callers
// treat failures as best-effort (logged, never propagated).
type AuditRepository interface {
	Insert(ctx context.Context, attempt domain.AuthenticationAttempt) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int, since *time.Time, activityType string) ([]domain.AuthenticationAttempt, error)
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls publish-retry workflow for domain events.
// This explicit contract enables transactional outbox patterns without leaking DB details.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
