package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veribank/faceauth/internal/domain"
)

// Config is the resolved runtime configuration for the face-auth service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	EngineBaseURL      string
	EngineTimeout      time.Duration
	LivenessTimeout    time.Duration
	EngineRetryMax     int
	EngineRetryBackoff time.Duration

	MinRequiredImages        int
	EnrollDetectionThreshold float64
	LoginDetectionThreshold  float64
	SpoofingThreshold        float64
	SimilarityThreshold      float64
	LivenessThreshold        float64
	ModelName                string
	DetectorBackend          string
	EmbeddingVersion         string

	LivenessSessionTTL  time.Duration
	LivenessMaxAttempts int
	DefaultChallenges   []string

	KafkaBrokers []string

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
	Engine struct {
		BaseURL             string  `yaml:"base_url"`
		TimeoutSeconds      int     `yaml:"timeout_seconds"`
		LivenessTimeoutSecs int     `yaml:"liveness_timeout_seconds"`
		RetryMaxAttempts    int     `yaml:"retry_max_attempts"`
		ModelName           string  `yaml:"model_name"`
		DetectorBackend     string  `yaml:"detector_backend"`
		EnrollThreshold     float64 `yaml:"enroll_detection_threshold"`
		LoginThreshold      float64 `yaml:"login_detection_threshold"`
		SpoofingThreshold   float64 `yaml:"spoofing_threshold"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		LivenessThreshold   float64 `yaml:"liveness_threshold"`
	} `yaml:"engine"`
	Liveness struct {
		SessionTTLMinutes int      `yaml:"session_ttl_minutes"`
		MaxAttempts       int      `yaml:"max_attempts"`
		Challenges        []string `yaml:"challenges"`
	} `yaml:"liveness"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                "FaceAuth-Service",
		HTTPPort:                 8080,
		EngineBaseURL:            "http://localhost:8001",
		EngineTimeout:            30 * time.Second,
		LivenessTimeout:          45 * time.Second,
		EngineRetryMax:           3,
		EngineRetryBackoff:       time.Second,
		MinRequiredImages:        2,
		EnrollDetectionThreshold: 0.8,
		LoginDetectionThreshold:  0.7,
		SpoofingThreshold:        0.5,
		SimilarityThreshold:      0.6,
		LivenessThreshold:        0.7,
		ModelName:                "ArcFace",
		DetectorBackend:          "retinaface",
		EmbeddingVersion:         "v1",
		LivenessSessionTTL:       10 * time.Minute,
		LivenessMaxAttempts:      3,
		DefaultChallenges:        []string{string(domain.ChallengeBlink), string(domain.ChallengeSmile)},
		MaxDBConns:               20,
		OutboxPollInterval:       2 * time.Second,
		OutboxBatchSize:          100,
		OutboxClaimTTL:           30 * time.Second,
		OutboxMaxRetries:         5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
		if f.Engine.BaseURL != "" {
			cfg.EngineBaseURL = f.Engine.BaseURL
		}
		if f.Engine.TimeoutSeconds > 0 {
			cfg.EngineTimeout = time.Duration(f.Engine.TimeoutSeconds) * time.Second
		}
		if f.Engine.LivenessTimeoutSecs > 0 {
			cfg.LivenessTimeout = time.Duration(f.Engine.LivenessTimeoutSecs) * time.Second
		}
		if f.Engine.RetryMaxAttempts > 0 {
			cfg.EngineRetryMax = f.Engine.RetryMaxAttempts
		}
		if f.Engine.ModelName != "" {
			cfg.ModelName = f.Engine.ModelName
		}
		if f.Engine.DetectorBackend != "" {
			cfg.DetectorBackend = f.Engine.DetectorBackend
		}
		if f.Engine.EnrollThreshold > 0 {
			cfg.EnrollDetectionThreshold = f.Engine.EnrollThreshold
		}
		if f.Engine.LoginThreshold > 0 {
			cfg.LoginDetectionThreshold = f.Engine.LoginThreshold
		}
		if f.Engine.SpoofingThreshold > 0 {
			cfg.SpoofingThreshold = f.Engine.SpoofingThreshold
		}
		if f.Engine.SimilarityThreshold > 0 {
			cfg.SimilarityThreshold = f.Engine.SimilarityThreshold
		}
		if f.Engine.LivenessThreshold > 0 {
			cfg.LivenessThreshold = f.Engine.LivenessThreshold
		}
		if f.Liveness.SessionTTLMinutes > 0 {
			cfg.LivenessSessionTTL = time.Duration(f.Liveness.SessionTTLMinutes) * time.Minute
		}
		if f.Liveness.MaxAttempts > 0 {
			cfg.LivenessMaxAttempts = f.Liveness.MaxAttempts
		}
		if len(f.Liveness.Challenges) > 0 {
			cfg.DefaultChallenges = f.Liveness.Challenges
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.EngineBaseURL = envOrDefault("FACE_ENGINE_URL", cfg.EngineBaseURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.DefaultChallenges = envCSV("LIVENESS_CHALLENGES", cfg.DefaultChallenges)
	cfg.ModelName = envOrDefault("FACE_MODEL_NAME", cfg.ModelName)
	cfg.DetectorBackend = envOrDefault("FACE_DETECTOR_BACKEND", cfg.DetectorBackend)
	cfg.EmbeddingVersion = envOrDefault("FACE_EMBEDDING_VERSION", cfg.EmbeddingVersion)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.MinRequiredImages = envInt("FACE_MIN_REQUIRED_IMAGES", cfg.MinRequiredImages)
	cfg.EngineRetryMax = envInt("FACE_ENGINE_RETRY_MAX", cfg.EngineRetryMax)
	cfg.LivenessMaxAttempts = envInt("LIVENESS_MAX_ATTEMPTS", cfg.LivenessMaxAttempts)

	cfg.EngineTimeout = time.Duration(envInt("FACE_ENGINE_TIMEOUT_SECONDS", int(cfg.EngineTimeout.Seconds()))) * time.Second
	cfg.LivenessTimeout = time.Duration(envInt("FACE_LIVENESS_TIMEOUT_SECONDS", int(cfg.LivenessTimeout.Seconds()))) * time.Second
	cfg.EngineRetryBackoff = time.Duration(envInt("FACE_ENGINE_RETRY_BACKOFF_MS", int(cfg.EngineRetryBackoff.Milliseconds()))) * time.Millisecond
	cfg.LivenessSessionTTL = time.Duration(envInt("LIVENESS_SESSION_TTL_MINUTES", int(cfg.LivenessSessionTTL.Minutes()))) * time.Minute
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	cfg.EnrollDetectionThreshold = envFloat("FACE_ENROLL_DETECTION_THRESHOLD", cfg.EnrollDetectionThreshold)
	cfg.LoginDetectionThreshold = envFloat("FACE_LOGIN_DETECTION_THRESHOLD", cfg.LoginDetectionThreshold)
	cfg.SpoofingThreshold = envFloat("FACE_SPOOFING_THRESHOLD", cfg.SpoofingThreshold)
	cfg.SimilarityThreshold = envFloat("FACE_SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.LivenessThreshold = envFloat("FACE_LIVENESS_THRESHOLD", cfg.LivenessThreshold)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	for _, c := range cfg.DefaultChallenges {
		if !domain.ValidChallenge(domain.Challenge(c)) {
			return Config{}, fmt.Errorf("unknown liveness challenge %q", c)
		}
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envFloat parses float env vars with safe fallback on empty/invalid values.
func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
