package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the biometric enrollment state for one account.
// It keeps only face-auth-relevant state; account credentials and session
// issuance stay with the external auth provider.
type UserProfile struct {
	UserID                uuid.UUID
	Username              string
	FullName              string
	FaceRegistered        bool
	RegistrationCompleted bool
	EmbeddingCount        int
	FailedLoginAttempts   int
	LastLoginAt           *time.Time
	LastFailedLoginAt     *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FaceEmbeddingRecord is one enrolled face template. Records are insert-only;
// re-registration deactivates prior records instead of mutating them so the
// audit trail of what was matched against stays reconstructible.
type FaceEmbeddingRecord struct {
	EmbeddingID        uuid.UUID
	UserID             uuid.UUID
	Embedding          []float64
	ImageNumber        int
	ConfidenceScore    float64
	AntiSpoofingPassed bool
	ModelConfig        ModelConfig
	EmbeddingVersion   string
	IsActive           bool
	CreatedAt          time.Time
}

// ModelConfig describes the engine configuration an embedding was produced
// with. Verification must not mix embeddings across incompatible models.
type ModelConfig struct {
	ModelName       string `json:"model_name"`
	DetectorBackend string `json:"detector_backend"`
	EmbeddingSize   int    `json:"embedding_size,omitempty"`
}

// Activity types recorded in the audit log.
const (
	ActivityRegistration = "registration"
	ActivityLoginAttempt = "login_attempt"
)

// AuthenticationAttempt records one orchestration outcome for audit.
// Append-only; the core never updates or deletes entries.
type AuthenticationAttempt struct {
	ID                 int64
	UserID             uuid.UUID
	SessionID          string
	ActivityType       string
	Success            bool
	ConfidenceScore    *float64
	AntiSpoofingResult *bool
	Details            map[string]any
	ErrorMessage       string
	IPAddress          string
	UserAgent          string
	CreatedAt          time.Time
}
