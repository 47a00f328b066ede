package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cinewise/movie-assistant/internal/config"
	"github.com/cinewise/movie-assistant/internal/handler"
	"github.com/cinewise/movie-assistant/internal/logging"
	"github.com/cinewise/movie-assistant/internal/ratelimit"
	"github.com/cinewise/movie-assistant/internal/service/ai"
	chatservice "github.com/cinewise/movie-assistant/internal/service/chat"
	"github.com/cinewise/movie-assistant/internal/service/movies"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	sessions := chatservice.NewService()
	catalog := movies.NewClient(cfg.TMDB.BaseURL, cfg.TMDB.APIKey, logger)

	var limiter *ratelimit.Limiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = ratelimit.New()
		go runJanitor(ctx, limiter)
	} else {
		logger.Warn().Msg("rate limiting disabled")
	}

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, cfg.AI, catalog, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize assistant, chat endpoints will report unavailable")
			aiService = nil
		} else {
			logger.Info().Str("model", cfg.AI.Model).Msg("assistant initialized")
		}
	} else {
		logger.Warn().Msg("Ark credentials not configured, skipping assistant initialization")
	}

	router := handler.NewRouter(handler.Deps{
		Config:   cfg,
		Sessions: sessions,
		Catalog:  catalog,
		AI:       aiService,
		Limiter:  limiter,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", cfg.Server.Addr).Msg("movie assistant API listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// runJanitor evicts idle rate-limit buckets until shutdown.
func runJanitor(ctx context.Context, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.PruneExpired(10 * time.Minute)
		}
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
