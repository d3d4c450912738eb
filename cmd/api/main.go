package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"qa-history/internal/config"
	"qa-history/internal/http"
	"qa-history/internal/llm"
	"qa-history/internal/observability"
	"qa-history/internal/ratelimit"
	"qa-history/internal/service"
	"qa-history/internal/storage"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers natural-language questions with a hosted text-generation model and keeps a browsable history of every exchange.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: QA History API
//   description: |
//     Submit a question, get a generated answer, and page through past questions and answers.
//     Question submission and history listing are rate limited per client.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	qaRepo := storage.NewQARepo(db)
	metrics := observability.NewMetrics("qa_history")

	// Create inference client (external service layer)
	inferenceClient := llm.NewClient(cfg.InferenceURL, cfg.APIKey, llm.WithMetrics(metrics))

	qaService := service.NewQAService(inferenceClient, qaRepo, metrics)

	limiter := ratelimit.New(ratelimit.Policy{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	})
	slog.Info("Rate limiter configured", "policy", limiter.Policy().String())

	// Create router with dependencies
	deps := &http.Deps{
		QAService:  qaService,
		Limiter:    limiter,
		Metrics:    metrics,
		CORSOrigin: cfg.CORSOrigin,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr, "cors_origin", cfg.CORSOrigin)
	slog.Debug("Inference configuration", "url", cfg.InferenceURL)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
