package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

type Service struct {
	cfg        Config
	logger     *slog.Logger
	profiles   ports.ProfileRepository
	embeddings ports.EmbeddingRepository
	audit      ports.AuditRepository
	outbox     ports.OutboxRepository
	sessions   ports.LivenessSessionStore
	engine     ports.RecognitionEngine
	nowFn      func() time.Time
}

type Dependencies struct {
	Config     Config
	Logger     *slog.Logger
	Profiles   ports.ProfileRepository
	Embeddings ports.EmbeddingRepository
	Audit      ports.AuditRepository
	Outbox     ports.OutboxRepository
	Sessions   ports.LivenessSessionStore
	Engine     ports.RecognitionEngine
}

func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		cfg:        deps.Config,
		logger:     deps.Logger,
		profiles:   deps.Profiles,
		embeddings: deps.Embeddings,
		audit:      deps.Audit,
		outbox:     deps.Outbox,
		sessions:   deps.Sessions,
		engine:     deps.Engine,
		nowFn:      time.Now().UTC,
	}
}

func (s *Service) CreateProfile(ctx context.Context, req CreateProfileRequest) (domain.UserProfile, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.UserProfile{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	userID := req.UserID
	if userID == uuid.Nil {
		userID = uuid.New()
	}

	return s.profiles.Create(ctx, ports.CreateProfileParams{
		UserID:    userID,
		Username:  username,
		FullName:  strings.TrimSpace(req.FullName),
		CreatedAt: s.nowFn(),
	})
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (domain.UserProfile, error) {
	return s.profiles.GetByID(ctx, userID)
}

func (s *Service) ListAttempts(ctx context.Context, userID uuid.UUID, q AttemptHistoryQuery) ([]AttemptHistoryItem, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	offset := (q.Page - 1) * q.Limit

	var since *time.Time
	if q.Days > 0 {
		t := s.nowFn().Add(-time.Duration(q.Days) * 24 * time.Hour)
		since = &t
	}

	attempts, err := s.audit.ListByUser(ctx, userID, q.Limit, offset, since, strings.ToLower(strings.TrimSpace(q.ActivityType)))
	if err != nil {
		return nil, err
	}

	result := make([]AttemptHistoryItem, 0, len(attempts))
	for _, attempt := range attempts {
		result = append(result, AttemptHistoryItem{
			ID:                 attempt.ID,
			Timestamp:          attempt.CreatedAt,
			ActivityType:       attempt.ActivityType,
			Success:            attempt.Success,
			ConfidenceScore:    attempt.ConfidenceScore,
			AntiSpoofingResult: attempt.AntiSpoofingResult,
			ErrorMessage:       attempt.ErrorMessage,
			IPAddress:          attempt.IPAddress,
		})
	}
	return result, nil
}

func (s *Service) EngineHealth(ctx context.Context) (ports.EngineHealth, error) {
	return s.engine.Health(ctx)
}

// cleanBase64Image strips a data-URL media-type prefix so the engine
// always receives bare base64.
func cleanBase64Image(image string) string {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "data:") {
		if idx := strings.Index(image, ","); idx >= 0 {
			return image[idx+1:]
		}
	}
	return image
}

func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}
