package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veribank/faceauth/internal/application"
)

// Handler is the HTTP adapter entrypoint for face-auth use-cases.
// Keeping only application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers face-auth HTTP routes and middleware stack.
// Centralizing routes here ensures consistent error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/face/v1", func(r chi.Router) {
		r.Post("/profiles", handler.createProfile)
		r.Get("/profiles/{user_id}", handler.getProfile)
		r.Post("/enroll", handler.enroll)
		r.Post("/login", handler.login)
		r.Post("/liveness/start", handler.livenessStart)
		r.Post("/liveness/{token}/submit", handler.livenessSubmit)
		r.Delete("/liveness/{token}", handler.livenessReset)
		r.Get("/attempts", handler.listAttempts)
		r.Get("/engine/health", handler.engineHealth)
	})

	return r
}
