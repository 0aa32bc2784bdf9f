package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
// It is built once at startup and passed explicitly into each provider client.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIVideoModel   string
	OpenAIVideoSeconds string
	OpenAIVideoSize    string
	OpenAIPollInterval time.Duration
	OpenAIPollTimeout  time.Duration
	OpenAITextModel    string

	GeminiAPIKey        string
	GeminiBaseURL       string
	GeminiVideoModel    string
	GeminiVideoDuration int
	GeminiVideoAspect   string
	GeminiVideoRes      string
	GeminiPollInterval  time.Duration
	GeminiPollTimeout   time.Duration
	GeminiTextModel     string
	GeminiVideoHost     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Every value is optional; a provider without a
// credential rejects requests at generation time rather than at startup.
func LoadConfig() *Config {
	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitOrigins(os.Getenv("CLIENT_ORIGIN")),

		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIVideoModel:   getEnv("OPENAI_VIDEO_MODEL", "sora-2"),
		OpenAIVideoSeconds: getEnv("OPENAI_VIDEO_SECONDS", "8"),
		OpenAIVideoSize:    getEnv("OPENAI_VIDEO_SIZE", "720x1280"),
		OpenAIPollInterval: msEnv("OPENAI_VIDEO_POLL_INTERVAL_MS", 5000),
		OpenAIPollTimeout:  msEnv("OPENAI_VIDEO_TIMEOUT_MS", 240000),
		OpenAITextModel:    getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:       getEnv("GEMINI_API_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiVideoModel:    getEnv("GEMINI_VIDEO_MODEL", "veo-3.1-generate-preview"),
		GeminiVideoDuration: getEnvInt("GEMINI_VIDEO_DURATION_SECONDS", 6),
		GeminiVideoAspect:   getEnv("GEMINI_VIDEO_ASPECT_RATIO", "9:16"),
		GeminiVideoRes:      getEnv("GEMINI_VIDEO_RESOLUTION", "720p"),
		GeminiPollInterval:  msEnv("GEMINI_VIDEO_POLL_INTERVAL_MS", 5000),
		GeminiPollTimeout:   msEnv("GEMINI_VIDEO_TIMEOUT_MS", 240000),
		GeminiTextModel:     getEnv("GEMINI_TEXT_MODEL", "gemini-1.5-flash"),
		GeminiVideoHost:     getEnv("GEMINI_VIDEO_HOST", "generativelanguage.googleapis.com"),

		HTTPReadTimeout: time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// Write timeout must outlast the poll timeout or long generations get
		// cut off mid-response.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func msEnv(key string, fallback int) time.Duration {
	return time.Millisecond * time.Duration(getEnvInt(key, fallback))
}
