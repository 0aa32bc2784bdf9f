// Package handlers implements the HTTP endpoints of the campaign service.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"pawreel/internal/domain"
	"pawreel/internal/infra"
)

// Generator is the orchestrator surface the HTTP layer depends on.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.CampaignResult, error)
	SupportedProviders() []domain.ProviderKey
}

// VideoStreamer opens an upstream download for the content proxy. The
// reference is a job id for OpenAI and a decoded, host-checked URI for Gemini.
type VideoStreamer interface {
	Ready() error
	StreamVideo(ctx context.Context, ref string) (*domain.VideoStream, error)
}

// App carries the handler dependencies. It is built once at startup.
type App struct {
	Generator    Generator
	OpenAIVideos VideoStreamer
	GeminiVideos VideoStreamer
	Config       *infra.Config
	Logger       infra.Logger
}

// NewApp wires the handler container.
func NewApp(gen Generator, openaiVideos, geminiVideos VideoStreamer, cfg *infra.Config, logger infra.Logger) *App {
	return &App{
		Generator:    gen,
		OpenAIVideos: openaiVideos,
		GeminiVideos: geminiVideos,
		Config:       cfg,
		Logger:       logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string, details any) {
	body := map[string]any{"error": message}
	if details != nil {
		body["details"] = details
	}
	a.json(w, code, body)
}
