package meta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cinewise/movie-assistant/internal/config"
	"github.com/cinewise/movie-assistant/internal/middleware"
	chatmodel "github.com/cinewise/movie-assistant/internal/model/chat"
	chatservice "github.com/cinewise/movie-assistant/internal/service/chat"
)

func setupRouter(sessions *chatservice.Service) *chi.Mux {
	cfg := &config.Config{}
	cfg.Server.Addr = ":8000"
	cfg.Log.Level = "info"
	cfg.HTTP.RateLimitEnabled = true

	h := New(sessions, cfg)
	r := chi.NewRouter()
	h.RegisterRoutes(r, middleware.NewGuard(nil))
	return r
}

func TestHealthReportsSessionCounts(t *testing.T) {
	sessions := chatservice.NewService()
	ctx := context.Background()
	session, _ := sessions.GetOrCreate(ctx, "")
	sessions.AppendTurn(ctx, session.ID, chatmodel.RoleUser, "hi")
	sessions.AppendTurn(ctx, session.ID, chatmodel.RoleAssistant, "hello")

	r := setupRouter(sessions)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var body struct {
		Status      string         `json:"status"`
		Version     string         `json:"version"`
		Environment map[string]any `json:"environment"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body.Status != "healthy" || body.Version != Version {
		t.Fatalf("status=%q version=%q", body.Status, body.Version)
	}
	if got := body.Environment["active_sessions"]; got != float64(1) {
		t.Fatalf("active_sessions = %v, want 1", got)
	}
	if got := body.Environment["total_messages"]; got != float64(2) {
		t.Fatalf("total_messages = %v, want 2", got)
	}
}

func TestRateLimitsListing(t *testing.T) {
	r := setupRouter(chatservice.NewService())
	req := httptest.NewRequest(http.MethodGet, "/rate-limits", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	var body struct {
		RateLimits map[string]string `json:"rate_limits"`
		Note       string            `json:"note"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode rate limits: %v", err)
	}
	if got := body.RateLimits["chat"]; got == "" {
		t.Fatal("chat limit missing")
	}
	if body.Note == "" {
		t.Fatal("note missing")
	}
}
