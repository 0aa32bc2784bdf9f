// Package gemini adapts the Gemini Veo long-running video API (and its
// generateContent endpoint for captions) to the campaign provider contract.
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
	"strconv"
	"strings"
	"time"

	"pawreel/internal/domain"
	"pawreel/internal/poller"
	"pawreel/internal/videotoken"
)

// Options configures the Gemini client.
type Options struct {
	APIKey        string
	BaseURL       string
	VideoModel    string
	VideoDuration int
	VideoAspect   string
	VideoRes      string
	TextModel     string
	PollInterval  time.Duration
	PollTimeout   time.Duration
	HTTPClient    *http.Client
}

// Client is a stateless adapter over the Gemini video and text APIs.
type Client struct {
	apiKey        string
	baseURL       string
	videoModel    string
	videoDuration int
	videoAspect   string
	videoRes      string
	textModel     string
	pollInterval  time.Duration
	pollTimeout   time.Duration
	client        *http.Client
}

// NewClient builds a Gemini adapter from fixed configuration.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		apiKey:        opts.APIKey,
		baseURL:       baseURL,
		videoModel:    opts.VideoModel,
		videoDuration: opts.VideoDuration,
		videoAspect:   opts.VideoAspect,
		videoRes:      opts.VideoRes,
		textModel:     opts.TextModel,
		pollInterval:  opts.PollInterval,
		pollTimeout:   opts.PollTimeout,
		client:        client,
	}
}

func (c *Client) Key() domain.ProviderKey { return domain.ProviderGemini }

func (c *Client) Label() string { return domain.ProviderLabels[domain.ProviderGemini] }

// Ready reports whether the provider credential is present.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is missing, add it to your .env file and restart the server", domain.ErrProviderNotConfigured)
	}
	return nil
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	AspectRatio     string `json:"aspectRatio"`
	DurationSeconds int    `json:"durationSeconds"`
	Resolution      string `json:"resolution"`
}

type operation struct {
	Name     string    `json:"name"`
	Done     bool      `json:"done"`
	Error    *apiError `json:"error"`
	Response struct {
		GenerateVideoResponse struct {
			GeneratedSamples []generatedSample `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

type generatedSample struct {
	Video struct {
		URI string `json:"uri"`
	} `json:"video"`
	VideoURI string `json:"videoUri"`
	Metadata struct {
		DurationSeconds json.Number `json:"durationSeconds"`
	} `json:"metadata"`
}

type apiError struct {
	Message string `json:"message"`
}

func (s generatedSample) uri() string {
	if s.Video.URI != "" {
		return s.Video.URI
	}
	return s.VideoURI
}

// CreateJob starts a long-running Veo operation and returns its name.
func (c *Client) CreateJob(ctx context.Context, prompt string) (string, error) {
	payload := predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			AspectRatio:     c.videoAspect,
			DurationSeconds: c.videoDuration,
			Resolution:      c.videoRes,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:predictLongRunning", c.baseURL, url.PathEscape(c.videoModel))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini video job: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	var op operation
	_ = json.Unmarshal(body, &op)
	if resp.StatusCode >= 300 || op.Name == "" {
		return "", errors.New(upstreamMessage(body, "Failed to create Gemini video job."))
	}
	return op.Name, nil
}

// WaitForJob polls the operation until done, then validates the generated
// sample and normalizes the completion, wrapping the video URI in a proxy
// token so the signed upstream link never reaches the caller.
func (c *Client) WaitForJob(ctx context.Context, operationName string) (*domain.Completion, error) {
	op, err := poller.Wait(ctx, c.pollInterval, c.pollTimeout, func(ctx context.Context) (*operation, bool, error) {
		op, err := c.fetchOperation(ctx, operationName)
		if err != nil {
			return nil, false, err
		}
		return op, op.Done, nil
	})
	if err != nil {
		if errors.Is(err, poller.ErrTimeout) {
			return nil, fmt.Errorf("video generation timed out on Gemini: %w", err)
		}
		return nil, err
	}

	if op.Error != nil {
		msg := "Gemini reported a failure."
		if op.Error.Message != "" {
			msg = op.Error.Message
		}
		return nil, errors.New(msg)
	}

	samples := op.Response.GenerateVideoResponse.GeneratedSamples
	if len(samples) == 0 {
		return nil, errors.New("Gemini did not return a generated video.")
	}
	sample := samples[0]
	videoURI := sample.uri()
	if videoURI == "" {
		return nil, errors.New("Gemini response missing video URI.")
	}

	seconds := sample.Metadata.DurationSeconds.String()
	if seconds == "" || seconds == "0" {
		seconds = strconv.Itoa(c.videoDuration)
	}

	jobID := op.Name
	if jobID == "" {
		jobID = operationName
	}
	return &domain.Completion{
		JobID:     jobID,
		Status:    string(domain.JobStatusCompleted),
		Model:     c.videoModel,
		Seconds:   seconds,
		Size:      c.videoRes + " " + c.videoAspect,
		VideoPath: "/api/providers/gemini/video?token=" + videotoken.Encode(videoURI),
	}, nil
}

func (c *Client) fetchOperation(ctx context.Context, operationName string) (*operation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+operationName, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Gemini job: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, errors.New(upstreamMessage(body, "Failed to fetch Gemini job."))
	}
	var op operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, errors.New("Failed to fetch Gemini job.")
	}
	return &op, nil
}

// StreamVideo downloads a finished video from its signed URI, attaching the
// provider credential server-side. The URI must already have passed the
// token host check.
func (c *Client) StreamVideo(ctx context.Context, videoURI string) (*domain.VideoStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURI, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download Gemini video: %w", err)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, errors.New(upstreamMessage(body, fmt.Sprintf("Failed to download Gemini video (%d).", resp.StatusCode)))
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
