// Package ai binds the chat model, the movie tool set and the system prompt
// into the assistant. The tool-calling loop itself belongs to the eino react
// agent; this package only supplies its ingredients.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/cinewise/movie-assistant/internal/config"
	"github.com/cinewise/movie-assistant/internal/metrics"
	"github.com/cinewise/movie-assistant/internal/model/chat"
	"github.com/cinewise/movie-assistant/internal/service/movies"
)

const systemPrompt = `You are a Movie Assistant AI with access to TMDB movie database tools.

Available Tools:
- search_movies: Find movies by title
- get_movie_details: Get full movie info (cast, crew, ratings)
- discover_movies: Find movies by genre/popularity
- get_movie_lists: Get popular/top-rated/trending lists
- get_movie_recommendations: Get similar movies
- get_trending_movies: Get current trending films
- get_watch_providers: Find where to watch/stream movies

Genres: Action(28), Comedy(35), Drama(18), Horror(27), Romance(10749), Sci-Fi(878), etc.

Guidelines:
- Use multiple tools for complete answers
- Be conversational and engaging
- Provide cast, ratings, and plot when relevant
- Offer recommendations when appropriate
- Format responses clearly with key details
- For "where to watch" queries: search_movies then get_watch_providers

Example: For "Where can I watch Inception?" use search_movies then get_watch_providers`

// historyLimit caps how many prior turns reach the model.
const historyLimit = 10

// Service is the assistant runtime.
type Service struct {
	agent *react.Agent
	log   *zerolog.Logger
}

// NewService compiles the react agent from the configured chat model and the
// movie tool set.
func NewService(ctx context.Context, cfg config.AIConfig, catalog *movies.Client, logger *zerolog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	tools, err := movieTools(catalog)
	if err != nil {
		return nil, err
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		Model:       chatModel,
		ToolsConfig: compose.ToolsNodeConfig{Tools: tools},
		MaxStep:     cfg.MaxSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("build react agent: %w", err)
	}

	return &Service{agent: agent, log: logger}, nil
}

// Respond runs the agent over the session history plus the new user message
// and returns the final synthesized text.
func (s *Service) Respond(ctx context.Context, history []chat.Turn, userMessage string) (string, error) {
	input := buildMessages(history, userMessage)

	start := time.Now()
	out, err := s.agent.Generate(ctx, input)
	metrics.AgentDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("run movie agent: %w", err)
	}

	s.log.Debug().Int("history", len(history)).Int("length", len(out.Content)).Msg("assistant response generated")
	return out.Content, nil
}

// StreamRespond streams the agent output for the SSE surface. Tool-call
// rounds happen before the first chunk arrives.
func (s *Service) StreamRespond(ctx context.Context, history []chat.Turn, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	input := buildMessages(history, userMessage)

	stream, err := s.agent.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("stream movie agent: %w", err)
	}
	return stream, nil
}

func buildMessages(history []chat.Turn, userMessage string) []*schema.Message {
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	input := make([]*schema.Message, 0, len(history)+2)
	input = append(input, schema.SystemMessage(systemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case chat.RoleUser:
			input = append(input, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			input = append(input, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return append(input, schema.UserMessage(userMessage))
}
