// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Generation providers accepted in GENERATION_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var defaultModels = map[string]string{
	ProviderGemini: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
}

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// JWTSecret signs identity tokens. Required.
	JWTSecret string

	// TokenTTL is how long an issued token stays valid. Defaults to 24h.
	TokenTTL time.Duration

	// PasswordAuthEnabled gates email/password sign-in and sign-up.
	PasswordAuthEnabled bool

	Generation GenerationConfig

	// WeatherBaseURL is the Open-Meteo endpoint root.
	WeatherBaseURL string

	// HTTPClientTimeout bounds every outbound provider call.
	HTTPClientTimeout time.Duration

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64
}

// GenerationConfig selects and configures the itinerary model provider.
// An empty APIKey is not a load error; the generation client reports it
// when a generation is attempted.
type GenerationConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		WeatherBaseURL: getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.HTTPClientTimeout, err = getDuration("HTTP_CLIENT_TIMEOUT", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PasswordAuthEnabled, err = getBool("AUTH_PASSWORD_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.MaxBodyBytes, err = getInt64("MAX_BODY_BYTES", 64<<10); err != nil {
		return Config{}, err
	}

	gen := GenerationConfig{
		Provider: strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderGemini)),
		BaseURL:  os.Getenv("GENERATION_BASE_URL"),
	}
	defaultModel, ok := defaultModels[gen.Provider]
	if !ok {
		return Config{}, fmt.Errorf("GENERATION_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, gen.Provider)
	}
	gen.Model = getEnv("GENERATION_MODEL", defaultModel)
	switch gen.Provider {
	case ProviderGemini:
		gen.APIKey = os.Getenv("GEMINI_API_KEY")
	case ProviderOpenAI:
		gen.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Generation = gen

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
