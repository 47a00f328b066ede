// Package chat keeps conversation state for the assistant. Sessions live in
// process memory only; a restart drops them all.
package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cinewise/movie-assistant/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

type session struct {
	mu    sync.Mutex
	meta  chat.Session
	turns []chat.Turn
}

// Service owns every session and turn. The session map has its own lock;
// history mutation takes the per-session lock, so appends to one session
// never interleave while unrelated sessions proceed in parallel.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
}

// NewService bootstraps the in-memory session store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]*session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the session for id, touching its last-active time.
// An unknown or empty id creates a new session; an empty id gets a generated
// one. The second return reports whether the session already existed.
func (s *Service) GetOrCreate(_ context.Context, id string) (chat.Session, bool) {
	if id != "" {
		s.mu.RLock()
		entry, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			entry.mu.Lock()
			entry.meta.LastActiveAt = s.now()
			meta := entry.meta
			entry.mu.Unlock()
			return meta, true
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	now := s.now()
	entry := &session{
		meta: chat.Session{ID: id, CreatedAt: now, LastActiveAt: now},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Lost a race with another creator for the same id: reuse theirs.
	if existing, ok := s.sessions[id]; ok {
		existing.mu.Lock()
		existing.meta.LastActiveAt = now
		meta := existing.meta
		existing.mu.Unlock()
		return meta, true
	}
	s.sessions[id] = entry
	return entry.meta, false
}

// AppendTurn records one utterance at the end of the session history and
// returns it with a fresh message id and timestamp.
func (s *Service) AppendTurn(_ context.Context, id, role, content string) (chat.Turn, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return chat.Turn{}, err
	}

	turn := chat.Turn{
		ID:        uuid.NewString(),
		SessionID: id,
		Role:      role,
		Content:   content,
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	turn.CreatedAt = s.now()
	entry.turns = append(entry.turns, turn)
	entry.meta.LastActiveAt = turn.CreatedAt
	return turn, nil
}

// History returns the session transcript in append order.
func (s *Service) History(_ context.Context, id string) ([]chat.Turn, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	copied := make([]chat.Turn, len(entry.turns))
	copy(copied, entry.turns)
	return copied, nil
}

// Reset empties the history while keeping the session identity. CreatedAt is
// untouched; LastActiveAt moves to now.
func (s *Service) Reset(_ context.Context, id string) error {
	entry, err := s.lookup(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.turns = nil
	entry.meta.LastActiveAt = s.now()
	return nil
}

// Delete removes the session entirely.
func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// DeleteAll removes every session and returns how many were dropped.
func (s *Service) DeleteAll(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.sessions)
	s.sessions = make(map[string]*session)
	return removed
}

// ListSummaries reports every live session, oldest first.
func (s *Service) ListSummaries(_ context.Context) []chat.Summary {
	s.mu.RLock()
	entries := make([]*session, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	summaries := make([]chat.Summary, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		summaries = append(summaries, chat.Summary{
			SessionID:    entry.meta.ID,
			MessageCount: len(entry.turns),
			CreatedAt:    entry.meta.CreatedAt,
			LastActiveAt: entry.meta.LastActiveAt,
		})
		entry.mu.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}
