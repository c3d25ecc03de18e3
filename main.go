package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/app"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Level: "info"}).Fatal().Err(err).Msg("Failed to load configuration")
	}

	application, cleanup, err := app.InitializeApp(cfg)
	if err != nil {
		logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}).
			Fatal().Err(err).Msg("Failed to initialize chatbot")
	}
	defer cleanup()

	log := application.Logger()
	log.Info().
		Int("http_port", cfg.HTTPPort).
		Int("internal_port", cfg.InternalHTTPPort).
		Str("llm_provider", cfg.LLMProvider).
		Str("llm_model", cfg.LLMModel).
		Msg("Starting chatbot orchestrator...")

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Chatbot stopped with error")
		return
	}
	log.Info().Msg("Chatbot stopped")
}
