package main

import (
	"log/slog"

	"github.com/Mbelalia/facture-engine/internal/domain/engine"
	"github.com/Mbelalia/facture-engine/internal/domain/fallback"
	"github.com/Mbelalia/facture-engine/pkg/config"
	"github.com/Mbelalia/facture-engine/pkg/cron"
	"github.com/Mbelalia/facture-engine/pkg/jobs"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	JobStore  *jobs.Store
	Scheduler *cron.Scheduler

	ExtractionService *engine.Service
	Handler           *engine.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.JobStore = jobs.NewStore(cfg.Jobs.TTL)
	deps.Scheduler = cron.NewScheduler(deps.JobStore, cfg.Jobs.ReapSchedule, logger)

	deps.ExtractionService = engine.NewService(logger)
	if cfg.Observability.OTelEnabled {
		deps.ExtractionService = deps.ExtractionService.WithTracing()
	}
	if cfg.LLM.BaseURL != "" {
		client := fallback.NewHTTPClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
		deps.ExtractionService = deps.ExtractionService.WithFallbackClient(client, cfg.LLM.Timeout)
		logger.Info("fallback completion enabled", slog.String("model", cfg.LLM.Model))
	} else {
		logger.Info("fallback completion disabled, LLM_BASE_URL not set")
	}

	deps.Handler = engine.NewHandler(deps.ExtractionService, deps.JobStore, cfg.Server.MaxUploadBytes, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}
