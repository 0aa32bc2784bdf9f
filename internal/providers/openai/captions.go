package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pawreel/internal/captions"
)

// socialSchema constrains the responses endpoint to the caption pack shape.
var socialSchema = map[string]any{
	"name":   "social_pack",
	"strict": true,
	"schema": map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"instagram": map[string]any{"type": "string"},
			"tiktok":    map[string]any{"type": "string"},
			"facebook":  map[string]any{"type": "string"},
			"hashtags": map[string]any{
				"type":     "array",
				"minItems": 3,
				"maxItems": 8,
				"items":    map[string]any{"type": "string"},
			},
		},
		"required": []string{"instagram", "tiktok", "facebook", "hashtags"},
	},
}

type responsesRequest struct {
	Model          string          `json:"model"`
	ResponseFormat responsesFormat `json:"response_format"`
	Input          string          `json:"input"`
}

type responsesFormat struct {
	Type       string         `json:"type"`
	JSONSchema map[string]any `json:"json_schema"`
}

type responsesPayload struct {
	Output []struct {
		Content []responsePart `json:"content"`
	} `json:"output"`
	OutputText []string `json:"output_text"`
	Text       string   `json:"text"`
}

// responsePart covers the part shapes the responses API has been observed to
// emit; only one field is populated at a time.
type responsePart struct {
	Text       string          `json:"text"`
	Content    string          `json:"content"`
	Value      string          `json:"value"`
	OutputText string          `json:"output_text"`
	JSON       json.RawMessage `json:"json"`
}

// GenerateCaptions asks the text model for the caption pack. A disabled text
// model short-circuits to the fallback; an HTTP-level failure is returned to
// the orchestrator, which logs it and continues without captions; any
// malformed-but-successful payload degrades through captions.Decode.
func (c *Client) GenerateCaptions(ctx context.Context, petName, petBio string) (*captions.Pack, error) {
	if c.textModel == "" {
		return captions.Fallback(petName, petBio), nil
	}

	payload := responsesRequest{
		Model: c.textModel,
		ResponseFormat: responsesFormat{
			Type:       "json_schema",
			JSONSchema: socialSchema,
		},
		Input: captionPrompt(petName, petBio),
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate captions: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errors.New(upstreamMessage(body, "Failed to generate captions."))
	}

	var decoded responsesPayload
	_ = json.Unmarshal(body, &decoded)
	return captions.Decode(extractResponseText(decoded), petName, petBio), nil
}

func captionPrompt(petName, petBio string) string {
	return fmt.Sprintf(`You are an expert social media copywriter for pet adoption campaigns.
Provide heartfelt, platform-optimized captions and trending adoption hashtags.
Keep each caption under 150 words, first-person POV as the animal.
Animal Name: %s
Bio: %s`, petName, petBio)
}

// extractResponseText locates the text content of a responses payload,
// tolerating the several part shapes the API can produce.
func extractResponseText(data responsesPayload) string {
	for _, output := range data.Output {
		var sb strings.Builder
		for _, part := range output.Content {
			switch {
			case len(part.JSON) > 0:
				sb.Write(part.JSON)
			case part.Text != "":
				sb.WriteString(part.Text)
			case part.Content != "":
				sb.WriteString(part.Content)
			case part.Value != "":
				sb.WriteString(part.Value)
			case part.OutputText != "":
				sb.WriteString(part.OutputText)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text
		}
	}
	if len(data.OutputText) > 0 {
		return strings.TrimSpace(strings.Join(data.OutputText, ""))
	}
	return strings.TrimSpace(data.Text)
}
