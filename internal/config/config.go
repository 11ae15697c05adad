package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	// Empty DSN selects the in-memory audit store.
	PostgresDSN    string
	AuditRetention time.Duration

	GumroadURL       string
	GumroadProductID string
	LicenseTimeout   time.Duration
	RateWindow       time.Duration
	RateMaxRequests  int

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	AnalysisTimeout    time.Duration
	AnalysisMaxRetries int

	SearchURL     string
	SearchAPIKey  string
	SearchTimeout time.Duration
	SearchResults int

	MaxUploadBytes int64
	MaxTextChars   int
	ExtractTimeout time.Duration

	EntityLookupCap     int
	EntityLookupWorkers int

	APIRateLimitRPS   int
	APIRateLimitBurst int
	MaxInFlight       int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN:    mustEnv("POSTGRES_DSN", ""),
		AuditRetention: mustEnvDuration("AUDIT_RETENTION", 90*24*time.Hour),

		GumroadURL:       mustEnv("GUMROAD_URL", "https://api.gumroad.com/v2/licenses/verify"),
		GumroadProductID: mustEnv("GUMROAD_PRODUCT_ID", "contract-engine"),
		LicenseTimeout:   mustEnvDuration("LICENSE_TIMEOUT", 5*time.Second),
		RateWindow:       mustEnvDuration("RATE_WINDOW", time.Hour),
		RateMaxRequests:  mustEnvInt("RATE_MAX_REQUESTS", 30),

		OpenAIAPIKey:       mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      mustEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        mustEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		AnalysisTimeout:    mustEnvDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		AnalysisMaxRetries: mustEnvInt("ANALYSIS_MAX_RETRIES", 2),

		SearchURL:     mustEnv("SEARCH_URL", "https://api.search.example.com/v1/search"),
		SearchAPIKey:  mustEnv("SEARCH_API_KEY", ""),
		SearchTimeout: mustEnvDuration("SEARCH_TIMEOUT", 8*time.Second),
		SearchResults: mustEnvInt("SEARCH_RESULTS", 10),

		MaxUploadBytes: int64(mustEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		MaxTextChars:   mustEnvInt("MAX_TEXT_CHARS", 400_000),
		ExtractTimeout: mustEnvDuration("EXTRACT_TIMEOUT", 10*time.Second),

		EntityLookupCap:     mustEnvInt("ENTITY_LOOKUP_CAP", 8),
		EntityLookupWorkers: mustEnvInt("ENTITY_LOOKUP_WORKERS", 4),

		APIRateLimitRPS:   mustEnvInt("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 20),
		MaxInFlight:       mustEnvInt("API_MAX_IN_FLIGHT", 32),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
