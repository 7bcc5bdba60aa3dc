package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
)

type Config struct {
	MinRequiredImages        int
	EnrollDetectionThreshold float64
	LoginDetectionThreshold  float64
	SpoofingThreshold        float64
	SimilarityThreshold      float64
	LivenessThreshold        float64
	ModelName                string
	DetectorBackend          string
	EmbeddingVersion         string
	SessionTTL               time.Duration
	SessionMaxAttempts       int
	DefaultChallenges        []domain.Challenge
}

// Pipeline step tags reported on business failures.
const (
	StepDetection    = "detection"
	StepAntiSpoofing = "anti-spoofing"
	StepLiveness     = "liveness"
	StepEmbedding    = "embedding"
	StepDatabase     = "database"
	StepVerification = "verification"
)

// PipelineOverrides carries optional per-request threshold overrides.
// Nil fields fall back to configured defaults.
type PipelineOverrides struct {
	DetectionThreshold  *float64 `json:"detection_threshold"`
	SpoofingThreshold   *float64 `json:"spoofing_threshold"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

// ClientInfo is caller metadata recorded in the audit log.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type EnrollmentRequest struct {
	UserID    uuid.UUID
	Images    []string
	Overrides PipelineOverrides
	Client    ClientInfo
}

// ImageResult is the per-image outcome of one enrollment pipeline run.
// Step names the first failed stage; empty on success.
type ImageResult struct {
	ImageNumber int     `json:"image_number"`
	Success     bool    `json:"success"`
	Step        string  `json:"step,omitempty"`
	Message     string  `json:"message,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

type RegistrationResult struct {
	Success      bool          `json:"success"`
	SuccessCount int           `json:"success_count"`
	TotalImages  int           `json:"total_images"`
	Images       []ImageResult `json:"images"`
	Message      string        `json:"message"`
}

// LivenessRequirement states whether a login must reference a completed
// liveness session. Construct via LivenessNotRequired or LivenessSessionRef.
type LivenessRequirement struct {
	required bool
	token    string
}

func LivenessNotRequired() LivenessRequirement {
	return LivenessRequirement{}
}

func LivenessSessionRef(token string) LivenessRequirement {
	return LivenessRequirement{required: true, token: token}
}

func (r LivenessRequirement) Required() bool { return r.required }
func (r LivenessRequirement) Token() string  { return r.token }

type LoginRequest struct {
	UserID    uuid.UUID
	Image     string
	Liveness  LivenessRequirement
	Overrides PipelineOverrides
	Client    ClientInfo
}

// LoginResult is the terminal outcome of one authentication attempt.
// Success=false with a Step tag is a business rejection, not an error.
type LoginResult struct {
	Success    bool    `json:"success"`
	Step       string  `json:"step,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
	Threshold  float64 `json:"threshold,omitempty"`
	Message    string  `json:"message"`
}

type CreateProfileRequest struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// LivenessSessionView is the caller-facing session snapshot.
type LivenessSessionView struct {
	Token            string             `json:"token"`
	Status           string             `json:"status"`
	Challenges       []domain.Challenge `json:"challenges"`
	CurrentChallenge domain.Challenge   `json:"current_challenge,omitempty"`
	Cursor           int                `json:"cursor"`
	Attempts         int                `json:"attempts"`
	MaxAttempts      int                `json:"max_attempts"`
	Confidence       float64            `json:"confidence,omitempty"`
	ExpiresAt        time.Time          `json:"expires_at"`
}

type AttemptHistoryQuery struct {
	Page         int
	Limit        int
	Days         int
	ActivityType string
}

type AttemptHistoryItem struct {
	ID                 int64     `json:"id"`
	Timestamp          time.Time `json:"timestamp"`
	ActivityType       string    `json:"activity_type"`
	Success            bool      `json:"success"`
	ConfidenceScore    *float64  `json:"confidence_score,omitempty"`
	AntiSpoofingResult *bool     `json:"anti_spoofing_result,omitempty"`
	ErrorMessage       string    `json:"error_message,omitempty"`
	IPAddress          string    `json:"ip_address,omitempty"`
}
