// Package chat serves the conversational endpoints and session management.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cinewise/movie-assistant/internal/middleware"
	chatmodel "github.com/cinewise/movie-assistant/internal/model/chat"
	"github.com/cinewise/movie-assistant/internal/ratelimit"
	chatservice "github.com/cinewise/movie-assistant/internal/service/chat"
	"github.com/cinewise/movie-assistant/pkg/utils"
)

const maxMessageLength = 1000

// Assistant produces answers for a conversation. The react agent satisfies
// it in production; tests substitute a stub.
type Assistant interface {
	Respond(ctx context.Context, history []chatmodel.Turn, message string) (string, error)
	StreamRespond(ctx context.Context, history []chatmodel.Turn, message string) (*schema.StreamReader[*schema.Message], error)
}

// Handler binds the session store and the assistant to HTTP.
type Handler struct {
	sessions  *chatservice.Service
	assistant Assistant
	log       *zerolog.Logger
}

// New creates the chat handler. A nil assistant keeps the session endpoints
// working while /chat reports the assistant as unavailable.
func New(sessions *chatservice.Service, assistant Assistant, logger *zerolog.Logger) *Handler {
	return &Handler{sessions: sessions, assistant: assistant, log: logger}
}

// RegisterRoutes mounts the chat surface with its per-endpoint quotas.
func (h *Handler) RegisterRoutes(r chi.Router, guard middleware.Guard) {
	r.With(guard(ratelimit.RuleChat)).Post("/chat", h.handleChat)
	r.With(guard(ratelimit.RuleChat)).Get("/chat/stream", h.handleChatStream)
	r.With(guard(ratelimit.RuleSessionsList)).Get("/sessions", h.handleListSessions)
	r.With(guard(ratelimit.RuleSessionMsgs)).Get("/sessions/{sessionID}/messages", h.handleSessionMessages)
	r.With(guard(ratelimit.RuleSessionReset)).Post("/sessions/{sessionID}/reset", h.handleResetSession)
	r.With(guard(ratelimit.RuleSessionDelete)).Delete("/sessions/{sessionID}", h.handleDeleteSession)
	r.With(guard(ratelimit.RuleSessionsClear)).Delete("/sessions", h.handleClearSessions)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("message exceeds %d characters", maxMessageLength))
		return
	}

	if h.assistant == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	ctx := r.Context()
	session, _ := h.sessions.GetOrCreate(ctx, payload.SessionID)

	history, err := h.sessions.History(ctx, session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if _, err := h.sessions.AppendTurn(ctx, session.ID, chatmodel.RoleUser, message); err != nil {
		// Session vanished between create and append (concurrent delete-all).
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	answer, err := h.assistant.Respond(ctx, history, message)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", session.ID).Msg("assistant failed")
		utils.RespondError(w, http.StatusInternalServerError, "assistant unavailable")
		return
	}

	turn, err := h.sessions.AppendTurn(ctx, session.ID, chatmodel.RoleAssistant, answer)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Response:  answer,
		SessionID: session.ID,
		MessageID: turn.ID,
		Timestamp: turn.CreatedAt,
	})
}

type streamChunk struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("message exceeds %d characters", maxMessageLength))
		return
	}

	if h.assistant == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	ctx := r.Context()
	session, _ := h.sessions.GetOrCreate(ctx, r.URL.Query().Get("session_id"))
	history, err := h.sessions.History(ctx, session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if _, err := h.sessions.AppendTurn(ctx, session.ID, chatmodel.RoleUser, message); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	stream, err := h.assistant.StreamRespond(ctx, history, message)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", session.ID).Msg("assistant stream failed")
		utils.RespondError(w, http.StatusInternalServerError, "assistant unavailable")
		return
	}
	defer stream.Close()

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", streamChunk{Event: "start", SessionID: session.ID})

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.log.Error().Err(err).Str("session_id", session.ID).Msg("assistant stream interrupted")
			utils.SendSSEEvent(w, flusher, "error", streamChunk{Event: "error", Error: "assistant unavailable"})
			return
		}
		if chunk.Content == "" {
			continue
		}
		full.WriteString(chunk.Content)
		utils.SendSSEEvent(w, flusher, "chunk", streamChunk{Event: "chunk", Content: chunk.Content})
	}

	turn, err := h.sessions.AppendTurn(ctx, session.ID, chatmodel.RoleAssistant, full.String())
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", streamChunk{Event: "error", Error: "session not found"})
		return
	}

	utils.SendSSEEvent(w, flusher, "done", streamChunk{
		Event:     "done",
		SessionID: session.ID,
		MessageID: turn.ID,
	})
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sessions.ListSummaries(r.Context()))
}

func (h *Handler) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.sessions.History(r.Context(), sessionID)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, history)
}

func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Reset(r.Context(), sessionID); err != nil {
		h.respondSessionError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s reset successfully", sessionID),
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		h.respondSessionError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted successfully", sessionID),
	})
}

func (h *Handler) handleClearSessions(w http.ResponseWriter, r *http.Request) {
	removed := h.sessions.DeleteAll(r.Context())
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "All sessions cleared",
		"deleted": removed,
	})
}

func (h *Handler) respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	h.log.Error().Err(err).Msg("session operation failed")
	utils.RespondError(w, http.StatusInternalServerError, "internal server error")
}
