package movies

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cinewise/movie-assistant/internal/middleware"
	"github.com/cinewise/movie-assistant/internal/model/movie"
	catalog "github.com/cinewise/movie-assistant/internal/service/movies"
)

func setupRouter(t *testing.T, upstream http.HandlerFunc) *chi.Mux {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	logger := zerolog.Nop()
	client := catalog.NewClient(server.URL, "test-key", &logger)
	h := New(client, &logger)

	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.NewGuard(nil))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSearchProxiesResults(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("query") != "alien" {
			t.Errorf("query = %q, want alien", req.URL.Query().Get("query"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 348, "title": "Alien", "vote_average": 8.1},
			},
			"total_results": 1,
		})
	})

	resp := get(r, "/movies/search/alien")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var page movie.Page
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Results) != 1 || page.Results[0].Title != "Alien" {
		t.Fatalf("unexpected results: %+v", page.Results)
	}
}

func TestUpstreamFailureIsBadGateway(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	resp := get(r, "/movies/popular")
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error != "movie catalog unavailable" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestInvalidMovieID(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called for an invalid id")
	})

	for _, path := range []string{
		"/movies/abc/details",
		"/movies/-5/watch-providers",
		"/movies/0/recommendations",
	} {
		if resp := get(r, path); resp.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", path, resp.Code)
		}
	}
}

func TestInvalidTrendingWindow(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called for an invalid window")
	})

	if resp := get(r, "/movies/trending/month"); resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestDiscoverGenreByName(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("with_genres") != "878" {
			t.Errorf("with_genres = %q, want 878", req.URL.Query().Get("with_genres"))
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []any{}, "total_results": 0})
	})

	if resp := get(r, "/movies/discover?genre=sci-fi"); resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}

	if resp := get(r, "/movies/discover?genre=polka"); resp.Code != http.StatusBadRequest {
		t.Fatalf("unknown genre status = %d, want 400", resp.Code)
	}
}
