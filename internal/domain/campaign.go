// Package domain holds the provider-agnostic campaign types shared by the
// orchestrator, the provider adapters, and the HTTP layer.
package domain

import "io"

// ProviderKey identifies one of the supported generation providers.
type ProviderKey string

const (
	ProviderOpenAI ProviderKey = "openai"
	ProviderGemini ProviderKey = "gemini"
)

// ProviderLabels maps provider keys to their human-facing names.
var ProviderLabels = map[ProviderKey]string{
	ProviderOpenAI: "OpenAI Video",
	ProviderGemini: "Gemini Veo",
}

// ProviderKeys lists the supported providers in a stable order.
func ProviderKeys() []ProviderKey {
	return []ProviderKey{ProviderOpenAI, ProviderGemini}
}

// JobStatus enumerates the provider job lifecycle states the poller
// understands. Provider-specific synonyms (starting, in_progress, processing)
// normalize onto Queued/Running.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// GenerationRequest is the validated, immutable inbound request.
// PetImage carries an optional base64 payload; the current providers accept
// it on the wire but do not forward it upstream.
type GenerationRequest struct {
	PetName  string
	PetBio   string
	PetImage string
	MimeType string
	Provider ProviderKey
}

// Completion is a provider adapter's normalized view of a finished job.
// VideoPath is always a same-origin proxy path, never the upstream URL.
type Completion struct {
	JobID     string
	Status    string
	Model     string
	Seconds   string
	Size      string
	VideoPath string
}

// VideoStream is an open upstream download relayed through the content proxy.
// Body must be closed by the caller; bytes are never buffered whole.
type VideoStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength string
}

// CampaignResult is the provider-agnostic response returned to the caller.
type CampaignResult struct {
	Provider      ProviderKey       `json:"provider"`
	ProviderLabel string            `json:"providerLabel"`
	Status        string            `json:"status"`
	Message       string            `json:"message"`
	JobID         string            `json:"jobId"`
	Model         string            `json:"model"`
	Prompt        string            `json:"prompt"`
	Seconds       string            `json:"seconds"`
	Size          string            `json:"size"`
	VideoURL      string            `json:"videoUrl"`
	Captions      map[string]string `json:"captions,omitempty"`
	Hashtags      []string          `json:"hashtags,omitempty"`
}

// VideoSuccessMessage is attached to every successful campaign result.
const VideoSuccessMessage = "Video generated successfully."
