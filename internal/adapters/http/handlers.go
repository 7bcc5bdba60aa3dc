package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veribank/faceauth/internal/application"
	"github.com/veribank/faceauth/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var req application.CreateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_profile", err)
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_profile", err)
		return
	}
	writeSuccess(w, http.StatusCreated, profileBody(profile))
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "get_profile", fmt.Errorf("invalid user_id"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, profileBody(profile))
}

type enrollRequest struct {
	UserID    uuid.UUID                     `json:"user_id"`
	Images    []string                      `json:"images"`
	Overrides application.PipelineOverrides `json:"overrides"`
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "enroll", err)
		return
	}

	result, err := h.service.RegisterFaces(r.Context(), application.EnrollmentRequest{
		UserID:    req.UserID,
		Images:    req.Images,
		Overrides: req.Overrides,
		Client: application.ClientInfo{
			IPAddress: readIP(r),
			UserAgent: r.UserAgent(),
		},
	})
	if err != nil {
		writeMappedError(r.Context(), w, "enroll", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

type loginRequest struct {
	UserID        uuid.UUID                     `json:"user_id"`
	Image         string                        `json:"image"`
	LivenessToken string                        `json:"liveness_token"`
	Overrides     application.PipelineOverrides `json:"overrides"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	liveness := application.LivenessNotRequired()
	if req.LivenessToken != "" {
		liveness = application.LivenessSessionRef(req.LivenessToken)
	}

	result, err := h.service.Authenticate(r.Context(), application.LoginRequest{
		UserID:    req.UserID,
		Image:     req.Image,
		Liveness:  liveness,
		Overrides: req.Overrides,
		Client: application.ClientInfo{
			IPAddress: readIP(r),
			UserAgent: r.UserAgent(),
		},
	})
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	if !result.Success {
		writeSuccess(w, http.StatusUnauthorized, result)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

type livenessStartRequest struct {
	UserID     uuid.UUID          `json:"user_id"`
	Challenges []domain.Challenge `json:"challenges"`
}

func (h *Handler) livenessStart(w http.ResponseWriter, r *http.Request) {
	var req livenessStartRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "liveness_start", err)
		return
	}

	view, err := h.service.StartLivenessSession(r.Context(), req.UserID, req.Challenges)
	if err != nil {
		writeMappedError(r.Context(), w, "liveness_start", err)
		return
	}
	writeSuccess(w, http.StatusCreated, view)
}

type livenessSubmitRequest struct {
	Image string `json:"image"`
}

func (h *Handler) livenessSubmit(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req livenessSubmitRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "liveness_submit", err)
		return
	}

	view, err := h.service.SubmitLivenessImage(r.Context(), token, req.Image)
	if err != nil {
		writeMappedError(r.Context(), w, "liveness_submit", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) livenessReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetLivenessSession(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeMappedError(r.Context(), w, "liveness_reset", err)
		return
	}
	writeMessage(w, http.StatusOK, "liveness session discarded")
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeValidationError(r.Context(), w, "list_attempts", fmt.Errorf("invalid user_id"))
		return
	}

	attempts, err := h.service.ListAttempts(r.Context(), userID, application.AttemptHistoryQuery{
		Page:         parseIntDefault(r.URL.Query().Get("page"), 1),
		Limit:        parseIntDefault(r.URL.Query().Get("limit"), 20),
		Days:         parseIntDefault(r.URL.Query().Get("days"), 0),
		ActivityType: r.URL.Query().Get("activity_type"),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_attempts", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"attempts": attempts})
}

func (h *Handler) engineHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.service.EngineHealth(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "engine_health", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":   health.Status,
		"services": health.Services,
		"version":  health.Version,
	})
}

func profileBody(profile domain.UserProfile) map[string]any {
	return map[string]any{
		"user_id":                profile.UserID,
		"username":               profile.Username,
		"full_name":              profile.FullName,
		"face_registered":        profile.FaceRegistered,
		"registration_completed": profile.RegistrationCompleted,
		"embedding_count":        profile.EmbeddingCount,
		"failed_login_attempts":  profile.FailedLoginAttempts,
		"last_login_at":          profile.LastLoginAt,
		"created_at":             profile.CreatedAt,
	}
}
