package handlers

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"pawreel/internal/domain"
)

type generateRequest struct {
	PetName  string `json:"petName"`
	PetBio   string `json:"petBio"`
	PetImage string `json:"petImage"`
	MimeType string `json:"mimeType"`
	Provider string `json:"provider"`
}

const minBioLength = 5

// GenerateVideo validates the payload, runs the campaign orchestration, and
// returns the normalized result. Validation failures never reach the
// orchestrator.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid payload.", map[string]any{
			"fieldErrors": map[string][]string{},
			"formErrors":  []string{"Request body must be valid JSON."},
		})
		return
	}

	fieldErrors := map[string][]string{}
	if req.PetName == "" {
		fieldErrors["petName"] = []string{"Please enter the Animal name."}
	}
	if utf8.RuneCountInString(req.PetBio) < minBioLength {
		fieldErrors["petBio"] = []string{"Share at least a couple of details about the Animal personality and story."}
	}
	provider := domain.ProviderOpenAI
	switch req.Provider {
	case "", string(domain.ProviderOpenAI):
	case string(domain.ProviderGemini):
		provider = domain.ProviderGemini
	default:
		fieldErrors["provider"] = []string{"Provider must be one of: openai, gemini."}
	}
	if len(fieldErrors) > 0 {
		a.error(w, http.StatusBadRequest, "Invalid payload.", map[string]any{
			"fieldErrors": fieldErrors,
			"formErrors":  []string{},
		})
		return
	}

	result, err := a.Generator.Generate(r.Context(), domain.GenerationRequest{
		PetName:  req.PetName,
		PetBio:   req.PetBio,
		PetImage: req.PetImage,
		MimeType: req.MimeType,
		Provider: provider,
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("provider", string(provider)).Msg("campaign generation failed")
		a.error(w, http.StatusInternalServerError, "Failed to generate the video.", err.Error())
		return
	}

	a.json(w, http.StatusOK, result)
}
