// Package movies serves the direct catalog proxy endpoints.
package movies

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cinewise/movie-assistant/internal/middleware"
	"github.com/cinewise/movie-assistant/internal/ratelimit"
	catalog "github.com/cinewise/movie-assistant/internal/service/movies"
	"github.com/cinewise/movie-assistant/pkg/utils"
)

// Handler proxies catalog lookups straight through to TMDB.
type Handler struct {
	catalog *catalog.Client
	log     *zerolog.Logger
}

// New creates the movie proxy handler.
func New(client *catalog.Client, logger *zerolog.Logger) *Handler {
	return &Handler{catalog: client, log: logger}
}

// RegisterRoutes mounts the movie surface with its per-endpoint quotas.
func (h *Handler) RegisterRoutes(r chi.Router, guard middleware.Guard) {
	r.With(guard(ratelimit.RuleSearch)).Get("/movies/search/{query}", h.handleSearch)
	r.With(guard(ratelimit.RuleLists)).Get("/movies/popular", h.listHandler("popular"))
	r.With(guard(ratelimit.RuleLists)).Get("/movies/top-rated", h.listHandler("top_rated"))
	r.With(guard(ratelimit.RuleLists)).Get("/movies/now-playing", h.listHandler("now_playing"))
	r.With(guard(ratelimit.RuleLists)).Get("/movies/upcoming", h.listHandler("upcoming"))
	r.With(guard(ratelimit.RuleDiscover)).Get("/movies/discover", h.handleDiscover)
	r.With(guard(ratelimit.RuleTrending)).Get("/movies/trending/{window}", h.handleTrending)
	r.With(guard(ratelimit.RuleDetails)).Get("/movies/{movieID}/details", h.handleDetails)
	r.With(guard(ratelimit.RuleProviders)).Get("/movies/{movieID}/watch-providers", h.handleWatchProviders)
	r.With(guard(ratelimit.RuleRecommend)).Get("/movies/{movieID}/recommendations", h.handleRecommendations)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	page := queryPage(r)

	result, err := h.catalog.Search(r.Context(), query, page)
	h.respond(w, result, err)
}

func (h *Handler) listHandler(listType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.catalog.List(r.Context(), listType, queryPage(r))
		h.respond(w, result, err)
	}
}

func (h *Handler) handleDiscover(w http.ResponseWriter, r *http.Request) {
	genreID, _ := strconv.Atoi(r.URL.Query().Get("genre_id"))
	if genreID == 0 {
		if name := r.URL.Query().Get("genre"); name != "" {
			id, ok := catalog.GenreID(name)
			if !ok {
				utils.RespondError(w, http.StatusBadRequest, "unknown genre")
				return
			}
			genreID = id
		}
	}

	result, err := h.catalog.Discover(r.Context(), genreID, r.URL.Query().Get("sort_by"), queryPage(r))
	h.respond(w, result, err)
}

func (h *Handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.Trending(r.Context(), chi.URLParam(r, "window"), queryPage(r))
	h.respond(w, result, err)
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathMovieID(w, r)
	if !ok {
		return
	}

	result, err := h.catalog.Details(r.Context(), movieID, true)
	h.respond(w, result, err)
}

func (h *Handler) handleWatchProviders(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathMovieID(w, r)
	if !ok {
		return
	}

	result, err := h.catalog.WatchProviders(r.Context(), movieID, r.URL.Query().Get("region"))
	h.respond(w, result, err)
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathMovieID(w, r)
	if !ok {
		return
	}

	result, err := h.catalog.Recommendations(r.Context(), movieID, queryPage(r))
	h.respond(w, result, err)
}

// respond maps catalog outcomes onto the HTTP surface. Upstream failures
// become 502 with a generic message; they never degrade into an empty 200.
func (h *Handler) respond(w http.ResponseWriter, result any, err error) {
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, result)
	case errors.Is(err, catalog.ErrInvalidArgument):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrUpstream):
		h.log.Warn().Err(err).Msg("catalog request failed")
		utils.RespondError(w, http.StatusBadGateway, "movie catalog unavailable")
	default:
		h.log.Error().Err(err).Msg("movie handler failure")
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathMovieID(w http.ResponseWriter, r *http.Request) (int, bool) {
	movieID, err := strconv.Atoi(chi.URLParam(r, "movieID"))
	if err != nil || movieID <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "movie id must be a positive integer")
		return 0, false
	}
	return movieID, true
}

func queryPage(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return page
}
