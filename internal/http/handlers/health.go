package handlers

import "net/http"

// Health reports liveness plus the configured model identifiers and the
// supported provider keys.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"model":       a.Config.OpenAIVideoModel,
		"geminiModel": a.Config.GeminiVideoModel,
		"providers":   a.Generator.SupportedProviders(),
	})
}
