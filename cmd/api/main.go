package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pawreel/internal/campaign"
	"pawreel/internal/http/handlers"
	httpapi "pawreel/internal/http/httpapi"
	"pawreel/internal/infra"
	"pawreel/internal/providers/gemini"
	"pawreel/internal/providers/openai"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg := infra.LoadConfig()
	logger := infra.NewLogger(cfg.AppEnv)

	openaiClient := openai.NewClient(openai.Options{
		APIKey:       cfg.OpenAIAPIKey,
		BaseURL:      cfg.OpenAIBaseURL,
		VideoModel:   cfg.OpenAIVideoModel,
		VideoSeconds: cfg.OpenAIVideoSeconds,
		VideoSize:    cfg.OpenAIVideoSize,
		TextModel:    cfg.OpenAITextModel,
		PollInterval: cfg.OpenAIPollInterval,
		PollTimeout:  cfg.OpenAIPollTimeout,
	})
	geminiClient := gemini.NewClient(gemini.Options{
		APIKey:        cfg.GeminiAPIKey,
		BaseURL:       cfg.GeminiBaseURL,
		VideoModel:    cfg.GeminiVideoModel,
		VideoDuration: cfg.GeminiVideoDuration,
		VideoAspect:   cfg.GeminiVideoAspect,
		VideoRes:      cfg.GeminiVideoRes,
		TextModel:     cfg.GeminiTextModel,
		PollInterval:  cfg.GeminiPollInterval,
		PollTimeout:   cfg.GeminiPollTimeout,
	})

	orchestrator := campaign.NewOrchestrator(logger, openaiClient, geminiClient)

	app := handlers.NewApp(orchestrator, openaiClient, geminiClient, cfg, logger)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
