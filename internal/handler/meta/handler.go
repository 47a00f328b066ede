// Package meta serves the health and rate-limit info endpoints.
package meta

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinewise/movie-assistant/internal/config"
	"github.com/cinewise/movie-assistant/internal/middleware"
	"github.com/cinewise/movie-assistant/internal/ratelimit"
	chatservice "github.com/cinewise/movie-assistant/internal/service/chat"
	"github.com/cinewise/movie-assistant/pkg/utils"
)

// Version reported by the health endpoint.
const Version = "1.0.0"

// Handler exposes operational metadata.
type Handler struct {
	sessions *chatservice.Service
	cfg      *config.Config
}

// New creates the meta handler.
func New(sessions *chatservice.Service, cfg *config.Config) *Handler {
	return &Handler{sessions: sessions, cfg: cfg}
}

// RegisterRoutes mounts the health and info endpoints.
func (h *Handler) RegisterRoutes(r chi.Router, guard middleware.Guard) {
	r.With(guard(ratelimit.RuleHealth)).Get("/", h.handleHealth)
	r.With(guard(ratelimit.RuleHealth)).Get("/health", h.handleHealth)
	r.With(guard(ratelimit.RuleInfo)).Get("/rate-limits", h.handleRateLimits)
}

type healthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Version     string         `json:"version"`
	Environment map[string]any `json:"environment"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	summaries := h.sessions.ListSummaries(r.Context())
	totalMessages := 0
	for _, s := range summaries {
		totalMessages += s.MessageCount
	}

	utils.RespondJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Environment: map[string]any{
			"addr":            h.cfg.Server.Addr,
			"log_level":       h.cfg.Log.Level,
			"rate_limiting":   h.cfg.HTTP.RateLimitEnabled,
			"assistant":       h.cfg.AI.Enabled(),
			"active_sessions": len(summaries),
			"total_messages":  totalMessages,
		},
	})
}

func (h *Handler) handleRateLimits(w http.ResponseWriter, r *http.Request) {
	limits := make(map[string]string)
	for _, rule := range ratelimit.Defaults() {
		limits[rule.Name] = rule.String() + " - " + rule.Description
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"rate_limits": limits,
		"note":        "Rate limits are per IP address per minute",
	})
}
