// Package httpapi assembles the chi router and middleware chain.
package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pawreel/internal/http/handlers"
	"pawreel/internal/infra"
	"pawreel/internal/middleware"
)

// NewRouter wires the middleware chain and the campaign routes.
func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).
			Post("/generate-video", app.GenerateVideo)

		r.Get("/video/{videoId}/content", app.OpenAIVideoContent)
		r.Get("/providers/gemini/video", app.GeminiVideoContent)
	})

	return r
}
