// Package openai adapts the OpenAI asynchronous video API (and its text
// responses endpoint for captions) to the campaign provider contract.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"pawreel/internal/domain"
	"pawreel/internal/poller"
)

// Options configures the OpenAI client. HTTPClient is injectable for tests;
// the default client carries no overall timeout because video downloads and
// polling are governed by the request context instead.
type Options struct {
	APIKey       string
	BaseURL      string
	VideoModel   string
	VideoSeconds string
	VideoSize    string
	TextModel    string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTPClient   *http.Client
}

// Client is a stateless adapter over the OpenAI video and responses APIs.
type Client struct {
	apiKey       string
	baseURL      string
	videoModel   string
	videoSeconds string
	videoSize    string
	textModel    string
	pollInterval time.Duration
	pollTimeout  time.Duration
	client       *http.Client
}

// NewClient builds an OpenAI adapter from fixed configuration.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		apiKey:       opts.APIKey,
		baseURL:      baseURL,
		videoModel:   opts.VideoModel,
		videoSeconds: opts.VideoSeconds,
		videoSize:    opts.VideoSize,
		textModel:    opts.TextModel,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		client:       client,
	}
}

func (c *Client) Key() domain.ProviderKey { return domain.ProviderOpenAI }

func (c *Client) Label() string { return domain.ProviderLabels[domain.ProviderOpenAI] }

// Ready reports whether the provider credential is present.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is missing, add it to your .env file and restart the server", domain.ErrProviderNotConfigured)
	}
	return nil
}

type videoJob struct {
	ID      string     `json:"id"`
	Status  string     `json:"status"`
	Model   string     `json:"model"`
	Seconds flexString `json:"seconds"`
	Size    string     `json:"size"`
	Error   *apiError  `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// CreateJob submits a video generation job and returns its id.
func (c *Client) CreateJob(ctx context.Context, prompt string) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"model":   c.videoModel,
		"prompt":  prompt,
		"seconds": c.videoSeconds,
		"size":    c.videoSize,
	} {
		if err := form.WriteField(field, value); err != nil {
			return "", fmt.Errorf("failed to encode video job form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to encode video job form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/videos", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create OpenAI video job: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	var job videoJob
	_ = json.Unmarshal(body, &job)
	if resp.StatusCode >= 300 || job.ID == "" {
		return "", errors.New(upstreamMessage(body, "Failed to create OpenAI video job."))
	}
	return job.ID, nil
}

// WaitForJob polls the job until it completes, fails, or times out, and
// normalizes the completed payload.
func (c *Client) WaitForJob(ctx context.Context, jobID string) (*domain.Completion, error) {
	job, err := poller.Wait(ctx, c.pollInterval, c.pollTimeout, func(ctx context.Context) (*videoJob, bool, error) {
		job, err := c.fetchJob(ctx, jobID)
		if err != nil {
			return nil, false, err
		}
		switch job.Status {
		case "queued", "processing", "starting", "in_progress":
			return job, false, nil
		case "completed":
			return job, true, nil
		case "failed":
			msg := "OpenAI reported a failure."
			if job.Error != nil && job.Error.Message != "" {
				msg = job.Error.Message
			}
			return nil, false, errors.New(msg)
		default:
			// An unknown status means the API contract moved; failing fast
			// beats polling forever.
			return nil, false, fmt.Errorf("unexpected status returned from OpenAI: %s", job.Status)
		}
	})
	if err != nil {
		if errors.Is(err, poller.ErrTimeout) {
			return nil, fmt.Errorf("video generation timed out on OpenAI: %w", err)
		}
		return nil, err
	}

	return &domain.Completion{
		JobID:     job.ID,
		Status:    string(domain.JobStatusCompleted),
		Model:     job.Model,
		Seconds:   string(job.Seconds),
		Size:      job.Size,
		VideoPath: "/api/video/" + job.ID + "/content",
	}, nil
}

func (c *Client) fetchJob(ctx context.Context, jobID string) (*videoJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video job: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errors.New(upstreamMessage(body, "Failed to fetch video job."))
	}
	var job videoJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, errors.New("Failed to fetch video job.")
	}
	return &job, nil
}

// StreamVideo opens the finished video for download. The caller owns the
// returned body and relays it without buffering.
func (c *Client) StreamVideo(ctx context.Context, jobID string) (*domain.VideoStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/"+jobID+"/content", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video content: %w", err)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, errors.New(upstreamMessage(body, fmt.Sprintf("Failed to download video content (%d).", resp.StatusCode)))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return &domain.VideoStream{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.Header.Get("Content-Length"),
	}, nil
}

// upstreamMessage pulls the provider's error message out of a response body,
// falling back to a step-specific generic message. Absent or malformed JSON
// must never itself become a failure.
func upstreamMessage(body []byte, fallback string) string {
	var payload struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fallback
}

// flexString decodes JSON values that providers emit as either a string or a
// number. Anything else decodes to empty rather than failing the payload.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	*s = ""
	return nil
}
