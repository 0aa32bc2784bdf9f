package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pawreel/internal/captions"
)

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateCaptions asks the text model for the caption pack. A disabled text
// model short-circuits to the fallback; an HTTP-level failure is returned to
// the orchestrator; a malformed-but-successful payload degrades through
// captions.Decode.
func (c *Client) GenerateCaptions(ctx context.Context, petName, petBio string) (*captions.Pack, error) {
	if c.textModel == "" {
		return captions.Fallback(petName, petBio), nil
	}

	payload := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: captionPrompt(petName, petBio)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:      0.6,
			MaxOutputTokens:  600,
			ResponseMimeType: "application/json",
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.textModel))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Gemini captions: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errors.New(upstreamMessage(body, "Failed to generate Gemini captions."))
	}

	var decoded generateContentResponse
	_ = json.Unmarshal(body, &decoded)
	return captions.Decode(extractCandidateText(decoded), petName, petBio), nil
}

func captionPrompt(petName, petBio string) string {
	return fmt.Sprintf(`You are an expert social strategist for animal adoption stories.
Return JSON with keys: instagram, tiktok, facebook (short heartfelt captions) and hashtags (array of 3-8 tags).
Write from %s's POV and keep hashtags short.
Bio: %s`, petName, petBio)
}

func extractCandidateText(resp generateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text
			}
		}
	}
	return ""
}
