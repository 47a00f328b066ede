// Package handler wires HTTP routes to the core services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cinewise/movie-assistant/internal/config"
	chathandler "github.com/cinewise/movie-assistant/internal/handler/chat"
	"github.com/cinewise/movie-assistant/internal/handler/meta"
	movieshandler "github.com/cinewise/movie-assistant/internal/handler/movies"
	"github.com/cinewise/movie-assistant/internal/metrics"
	"github.com/cinewise/movie-assistant/internal/middleware"
	"github.com/cinewise/movie-assistant/internal/ratelimit"
	"github.com/cinewise/movie-assistant/internal/service/ai"
	chatservice "github.com/cinewise/movie-assistant/internal/service/chat"
	catalog "github.com/cinewise/movie-assistant/internal/service/movies"
)

// Deps gathers everything the router mounts. Limiter may be nil to disable
// admission; AI may be nil when model credentials are absent.
type Deps struct {
	Config   *config.Config
	Sessions *chatservice.Service
	Catalog  *catalog.Client
	AI       *ai.Service
	Limiter  *ratelimit.Limiter
	Log      *zerolog.Logger
}

// NewRouter builds the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Instrument(deps.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(deps.Config.HTTP.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)

	guard := middleware.NewGuard(deps.Limiter)

	// A typed-nil *ai.Service must not become a non-nil Assistant.
	var assistant chathandler.Assistant
	if deps.AI != nil {
		assistant = deps.AI
	}

	chathandler.New(deps.Sessions, assistant, deps.Log).RegisterRoutes(r, guard)
	movieshandler.New(deps.Catalog, deps.Log).RegisterRoutes(r, guard)
	meta.New(deps.Sessions, deps.Config).RegisterRoutes(r, guard)

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
