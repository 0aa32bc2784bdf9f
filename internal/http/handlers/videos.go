package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pawreel/internal/videotoken"
)

// OpenAIVideoContent streams a finished OpenAI video to the caller, attaching
// the provider credential server-side so it never reaches the browser.
func (a *App) OpenAIVideoContent(w http.ResponseWriter, r *http.Request) {
	if err := a.OpenAIVideos.Ready(); err != nil {
		a.error(w, http.StatusInternalServerError, "Unable to stream the requested video asset.", err.Error())
		return
	}

	stream, err := a.OpenAIVideos.StreamVideo(r.Context(), chi.URLParam(r, "videoId"))
	if err != nil {
		a.Logger.Error().Err(err).Msg("openai video download failed")
		a.error(w, http.StatusInternalServerError, "Unable to stream the requested video asset.", nil)
		return
	}
	a.relay(w, stream.Body, stream.ContentType, stream.ContentLength, "openai")
}

// GeminiVideoContent validates the opaque token against the allow-listed
// upstream host, then streams the video. Every token failure is rejected
// with a 400 before any outbound call is made.
func (a *App) GeminiVideoContent(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		a.error(w, http.StatusBadRequest, "Missing video token.", nil)
		return
	}

	videoURI, err := videotoken.Resolve(token, a.Config.GeminiVideoHost)
	switch {
	case errors.Is(err, videotoken.ErrInvalidToken):
		a.error(w, http.StatusBadRequest, "Invalid video token.", nil)
		return
	case errors.Is(err, videotoken.ErrMalformedURL):
		a.error(w, http.StatusBadRequest, "Malformed Gemini video URL.", nil)
		return
	case errors.Is(err, videotoken.ErrUnapprovedHost):
		a.error(w, http.StatusBadRequest, "Unapproved Gemini video host.", nil)
		return
	case err != nil:
		a.error(w, http.StatusBadRequest, "Invalid video token.", nil)
		return
	}

	if err := a.GeminiVideos.Ready(); err != nil {
		a.error(w, http.StatusInternalServerError, "Unable to stream the requested Gemini video asset.", err.Error())
		return
	}

	stream, err := a.GeminiVideos.StreamVideo(r.Context(), videoURI)
	if err != nil {
		a.Logger.Error().Err(err).Msg("gemini video download failed")
		a.error(w, http.StatusInternalServerError, "Unable to stream the requested Gemini video asset.", nil)
		return
	}
	a.relay(w, stream.Body, stream.ContentType, stream.ContentLength, "gemini")
}

// relay pipes upstream video bytes to the caller incrementally. Once headers
// are out a mid-transfer error cannot be reported as a status, so the
// connection is aborted and the failure logged.
func (a *App) relay(w http.ResponseWriter, body io.ReadCloser, contentType, contentLength, provider string) {
	defer func() {
		_ = body.Close()
	}()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	if contentLength != "" {
		w.Header().Set("Content-Length", contentLength)
	}

	if _, err := io.Copy(w, body); err != nil {
		a.Logger.Error().Err(err).Str("provider", provider).Msg("video stream aborted mid-transfer")
		panic(http.ErrAbortHandler)
	}
}
