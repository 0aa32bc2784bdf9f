package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pawreel/internal/poller"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(rt roundTripFunc) *Client {
	return NewClient(Options{
		APIKey:       "sk-test",
		VideoModel:   "sora-2",
		VideoSeconds: "8",
		VideoSize:    "720x1280",
		TextModel:    "gpt-4o-mini",
		PollInterval: time.Millisecond,
		PollTimeout:  100 * time.Millisecond,
		HTTPClient:   &http.Client{Transport: rt},
	})
}

func TestReadyRequiresAPIKey(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{})
	if err := c.Ready(); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if err := newTestClient(nil).Ready(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateJobSubmitsForm(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	var capturedBody string
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		body, _ := io.ReadAll(r.Body)
		capturedBody = string(body)
		return jsonResponse(http.StatusOK, `{"id":"video_123","status":"queued"}`), nil
	})

	jobID, err := c.CreateJob(context.Background(), "a cinematic video")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobID != "video_123" {
		t.Fatalf("expected video_123, got %q", jobID)
	}
	if captured.Method != http.MethodPost || captured.URL.Path != "/v1/videos" {
		t.Fatalf("unexpected request %s %s", captured.Method, captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", got)
	}
	for _, field := range []string{"sora-2", "a cinematic video", "720x1280"} {
		if !strings.Contains(capturedBody, field) {
			t.Fatalf("form body missing %q", field)
		}
	}
}

func TestCreateJobSurfacesUpstreamMessage(t *testing.T) {
	t.Parallel()

	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"message":"model not available"}}`), nil
	})

	_, err := c.CreateJob(context.Background(), "prompt")
	if err == nil || err.Error() != "model not available" {
		t.Fatalf("expected upstream message, got %v", err)
	}
}

func TestCreateJobFallbackMessage(t *testing.T) {
	t.Parallel()

	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `not json`), nil
	})

	_, err := c.CreateJob(context.Background(), "prompt")
	if err == nil || err.Error() != "Failed to create OpenAI video job." {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestWaitForJobPollsUntilCompleted(t *testing.T) {
	t.Parallel()

	statuses := []string{"queued", "processing", "completed"}
	var calls atomic.Int32
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		n := calls.Add(1)
		status := statuses[int(n)-1]
		body := fmt.Sprintf(`{"id":"video_123","status":%q,"model":"sora-2","seconds":8,"size":"720x1280"}`, status)
		return jsonResponse(http.StatusOK, body), nil
	})

	completion, err := c.WaitForJob(context.Background(), "video_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 polls, got %d", got)
	}
	if completion.Status != "completed" {
		t.Fatalf("unexpected status %q", completion.Status)
	}
	if completion.Seconds != "8" {
		t.Fatalf("expected numeric seconds normalized to string, got %q", completion.Seconds)
	}
	if completion.VideoPath != "/api/video/video_123/content" {
		t.Fatalf("unexpected video path %q", completion.VideoPath)
	}
}

func TestWaitForJobFailureMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "upstream message",
			body: `{"id":"v1","status":"failed","error":{"message":"content policy violation"}}`,
			want: "content policy violation",
		},
		{
			name: "failed without message",
			body: `{"id":"v1","status":"failed"}`,
			want: "OpenAI reported a failure.",
		},
		{
			name: "unexpected status",
			body: `{"id":"v1","status":"archived"}`,
			want: "unexpected status returned from OpenAI: archived",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, tc.body), nil
			})
			_, err := c.WaitForJob(context.Background(), "v1")
			if err == nil || err.Error() != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWaitForJobTimesOut(t *testing.T) {
	t.Parallel()

	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"id":"v1","status":"in_progress"}`), nil
	})

	_, err := c.WaitForJob(context.Background(), "v1")
	if !errors.Is(err, poller.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out on OpenAI") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestStreamVideo(t *testing.T) {
	t.Parallel()

	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1/videos/video_123/content" {
			return nil, fmt.Errorf("unexpected path %s", r.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header: http.Header{
				"Content-Type":   []string{"video/mp4"},
				"Content-Length": []string{"42"},
			},
			Body: io.NopCloser(strings.NewReader("mp4 bytes")),
		}, nil
	})

	stream, err := c.StreamVideo(context.Background(), "video_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Body.Close()

	if stream.ContentType != "video/mp4" || stream.ContentLength != "42" {
		t.Fatalf("unexpected headers %q %q", stream.ContentType, stream.ContentLength)
	}
	body, _ := io.ReadAll(stream.Body)
	if string(body) != "mp4 bytes" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestStreamVideoDefaultsContentType(t *testing.T) {
	t.Parallel()

	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("bytes")),
		}, nil
	})

	stream, err := c.StreamVideo(context.Background(), "video_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Body.Close()
	if stream.ContentType != "video/mp4" {
		t.Fatalf("expected default content type, got %q", stream.ContentType)
	}
}

func TestGenerateCaptions(t *testing.T) {
	t.Parallel()

	t.Run("parses structured output", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/v1/responses" {
				return nil, fmt.Errorf("unexpected path %s", r.URL.Path)
			}
			body := `{"output":[{"content":[{"text":"{\"instagram\":\"Meet Luna!\",\"tiktok\":\"Luna here!\",\"facebook\":\"Luna needs a home.\",\"hashtags\":[\"#AdoptMe\",\"#Luna\",\"#Rescue\"]}"}]}]}`
			return jsonResponse(http.StatusOK, body), nil
		})

		pack, err := c.GenerateCaptions(context.Background(), "Luna", "Loves naps")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pack.Captions["instagram"] != "Meet Luna!" {
			t.Fatalf("unexpected caption %q", pack.Captions["instagram"])
		}
		if len(pack.Hashtags) != 3 {
			t.Fatalf("expected 3 hashtags, got %v", pack.Hashtags)
		}
	})

	t.Run("disabled text model uses fallback", func(t *testing.T) {
		t.Parallel()
		c := NewClient(Options{APIKey: "sk-test"})

		pack, err := c.GenerateCaptions(context.Background(), "Luna", "Loves naps")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pack.Hashtags) != 5 {
			t.Fatalf("expected fallback hashtags, got %v", pack.Hashtags)
		}
	})

	t.Run("http failure is an error", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`), nil
		})

		_, err := c.GenerateCaptions(context.Background(), "Luna", "Loves naps")
		if err == nil || err.Error() != "rate limited" {
			t.Fatalf("expected upstream message, got %v", err)
		}
	})

	t.Run("garbled payload degrades to fallback", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"output":[{"content":[{"text":"no json here"}]}]}`), nil
		})

		pack, err := c.GenerateCaptions(context.Background(), "Luna", "Loves naps")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pack.Hashtags) != 5 {
			t.Fatalf("expected fallback hashtags, got %v", pack.Hashtags)
		}
		if !strings.Contains(pack.Captions["instagram"], "Luna") {
			t.Fatalf("fallback caption missing name: %q", pack.Captions["instagram"])
		}
	})
}

func TestExtractResponseText(t *testing.T) {
	t.Parallel()

	payload := responsesPayload{OutputText: []string{"{\"a\":", "1}"}}
	if got := extractResponseText(payload); got != `{"a":1}` {
		t.Fatalf("unexpected output_text join %q", got)
	}

	payload = responsesPayload{Text: "  plain  "}
	if got := extractResponseText(payload); got != "plain" {
		t.Fatalf("unexpected text fallback %q", got)
	}
}
