package main

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/learnloop/learnloop-api/internal/config"
	"github.com/learnloop/learnloop-api/internal/generation"
	"github.com/learnloop/learnloop-api/internal/platform/gemini"
	"github.com/learnloop/learnloop-api/internal/platform/openai"
	"github.com/learnloop/learnloop-api/internal/platform/postgres"
	"github.com/learnloop/learnloop-api/internal/service/auth"
	"github.com/learnloop/learnloop-api/internal/store"
)

// application holds the initialized dependencies shared by the HTTP layer.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	roadmapStore  store.RoadmapStore
	progressStore store.ProgressStore
	jwtService    auth.JWTService
	generation    *generation.Service
}

// newApplication wires stores, the JWT service, and the generation pipeline
// from the loaded configuration.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, err
	}

	generationService, err := buildGenerationService(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		roadmapStore:  postgres.NewPostgresRoadmapStore(db, logger),
		progressStore: postgres.NewPostgresProgressStore(db, logger),
		jwtService:    jwtService,
		generation:    generationService,
	}, nil
}

// buildGenerationService assembles the provider chain, rate gate, and cache.
// Providers without an API key stay unconfigured; the orchestrator treats a
// nil provider as absent and the service degrades to fallback content when
// no provider is available at all.
func buildGenerationService(cfg *config.Config, logger *slog.Logger) (*generation.Service, error) {
	var primary, secondary generation.Provider

	if cfg.LLM.OpenAIAPIKey != "" {
		client, err := openai.NewClient(logger, openai.Config{
			APIKey:  cfg.LLM.OpenAIAPIKey,
			BaseURL: cfg.LLM.OpenAIBaseURL,
		})
		if err != nil {
			return nil, err
		}
		primary = client
	} else {
		logger.Warn("openai provider unconfigured, relying on fallback chain")
	}

	if cfg.LLM.GeminiAPIKey != "" {
		client, err := gemini.NewClient(logger, gemini.Config{
			APIKey:  cfg.LLM.GeminiAPIKey,
			BaseURL: cfg.LLM.GeminiBaseURL,
			Model:   cfg.LLM.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		secondary = client
	} else {
		logger.Warn("gemini provider unconfigured, relying on fallback chain")
	}

	rateMax := cfg.LLM.RateLimitMax
	if rateMax <= 0 {
		rateMax = generation.DefaultRateLimitMax
	}
	rateWindow := generation.DefaultRateLimitWindow
	if cfg.LLM.RateLimitWindowSeconds > 0 {
		rateWindow = time.Duration(cfg.LLM.RateLimitWindowSeconds) * time.Second
	}

	cacheTTL := generation.DefaultCacheTTL
	if cfg.LLM.CacheTTLHours > 0 {
		cacheTTL = time.Duration(cfg.LLM.CacheTTLHours) * time.Hour
	}

	orchestrator := generation.NewOrchestrator(
		logger,
		primary,
		secondary,
		generation.NewRateGate(rateMax, rateWindow),
	)

	return generation.NewService(logger, orchestrator, generation.NewArtifactCache(cacheTTL)), nil
}
