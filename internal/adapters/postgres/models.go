package postgres

import (
	"time"

	"github.com/google/uuid"
)

type profileModel struct {
	UserID                uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey"`
	Username              string     `gorm:"column:username"`
	FullName              string     `gorm:"column:full_name"`
	FaceRegistered        bool       `gorm:"column:face_registered"`
	RegistrationCompleted bool       `gorm:"column:registration_completed"`
	EmbeddingCount        int        `gorm:"column:embedding_count"`
	FailedLoginAttempts   int        `gorm:"column:failed_login_attempts"`
	LastLoginAt           *time.Time `gorm:"column:last_login_at"`
	LastFailedLoginAt     *time.Time `gorm:"column:last_failed_login_at"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (profileModel) TableName() string { return "profiles" }

type faceEmbeddingModel struct {
	EmbeddingID        uuid.UUID  `gorm:"column:embedding_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id"`
	EmbeddingData      string     `gorm:"column:embedding_data;type:jsonb"`
	ImageNumber        int        `gorm:"column:image_number"`
	ConfidenceScore    float64    `gorm:"column:confidence_score"`
	AntiSpoofingPassed bool       `gorm:"column:anti_spoofing_passed"`
	ModelConfig        string     `gorm:"column:model_config;type:jsonb"`
	EmbeddingVersion   string     `gorm:"column:embedding_version"`
	IsActive           bool       `gorm:"column:is_active"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	DeactivatedAt      *time.Time `gorm:"column:deactivated_at"`
}

func (faceEmbeddingModel) TableName() string { return "face_embeddings" }

type recognitionLogModel struct {
	ID                 int64     `gorm:"column:id;primaryKey"`
	UserID             uuid.UUID `gorm:"column:user_id"`
	SessionID          *string   `gorm:"column:session_id"`
	ActivityType       string    `gorm:"column:activity_type"`
	Success            bool      `gorm:"column:success"`
	ConfidenceScore    *float64  `gorm:"column:confidence_score"`
	AntiSpoofingResult *bool     `gorm:"column:anti_spoofing_result"`
	Details            string    `gorm:"column:details;type:jsonb"`
	ErrorMessage       *string   `gorm:"column:error_message"`
	IPAddress          *string   `gorm:"column:ip_address"`
	UserAgent          string    `gorm:"column:user_agent"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (recognitionLogModel) TableName() string { return "face_recognition_logs" }

type faceOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (faceOutboxModel) TableName() string { return "face_outbox" }
