package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ent0n29/talentscout/internal/generation"
)

// Config contains all runtime settings for the intake service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	SessionJanitorInterval   time.Duration
	MetricsNamespace         string
	AllowAnyOrigin           bool
	Environment              string

	LogLevel    string
	LogFilePath string
	SentryDSN   string

	LLMProvider   string
	GeminiAPIKey  string
	GeminiBaseURL string
	LLMAPIKey     string
	LLMBaseURL    string

	Models             []string
	DefaultModel       string
	DefaultTemperature float64
	DefaultMaxTokens   int
	GenerationTimeout  time.Duration
	AutoConclude       bool

	DatabaseURL string
}

// LoadDotEnv populates the environment from .env files when present.
// Variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	limits := generation.DefaultLimits()
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "talentscout"),
		Environment:      envOrDefault("APP_ENVIRONMENT", "development"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFilePath:      stringsTrimSpace("LOG_FILE_PATH"),
		SentryDSN:        stringsTrimSpace("SENTRY_DSN"),
		LLMProvider:      strings.ToLower(envOrDefault("LLM_PROVIDER", "auto")),
		// GOOGLE_API_KEY is the name the Google SDKs read by default.
		GeminiAPIKey:             firstNonEmpty(stringsTrimSpace("GEMINI_API_KEY"), stringsTrimSpace("GOOGLE_API_KEY")),
		GeminiBaseURL:            stringsTrimSpace("GEMINI_BASE_URL"),
		LLMAPIKey:                stringsTrimSpace("LLM_API_KEY"),
		LLMBaseURL:               envOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		Models:                   listFromEnv("LLM_MODELS", limits.Models),
		DefaultModel:             stringsTrimSpace("LLM_DEFAULT_MODEL"),
		DefaultTemperature:       limits.Defaults.Temperature,
		DefaultMaxTokens:         limits.Defaults.MaxTokens,
		DatabaseURL:              stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
		SessionJanitorInterval:   time.Minute,
		GenerationTimeout:        30 * time.Second,
	}
	if cfg.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.DefaultModel = cfg.Models[0]
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionJanitorInterval, err = durationFromEnv("APP_SESSION_JANITOR_INTERVAL", cfg.SessionJanitorInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerationTimeout, err = durationFromEnv("GENERATION_TIMEOUT", cfg.GenerationTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.AutoConclude, err = boolFromEnv("FLOW_AUTO_CONCLUDE", cfg.AutoConclude)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultTemperature, err = floatFromEnv("LLM_DEFAULT_TEMPERATURE", cfg.DefaultTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultMaxTokens, err = intFromEnv("LLM_DEFAULT_MAX_TOKENS", cfg.DefaultMaxTokens)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < time.Minute {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 1m")
	}
	if cfg.SessionJanitorInterval <= 0 {
		return Config{}, fmt.Errorf("APP_SESSION_JANITOR_INTERVAL must be positive")
	}
	if cfg.GenerationTimeout <= 0 {
		return Config{}, fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	switch cfg.LLMProvider {
	case "auto", "gemini", "openai", "mock":
	default:
		return Config{}, fmt.Errorf("LLM_PROVIDER must be one of auto|gemini|openai|mock")
	}
	if len(cfg.Models) == 0 {
		return Config{}, fmt.Errorf("LLM_MODELS must list at least one model")
	}
	if !slices.Contains(cfg.Models, cfg.DefaultModel) {
		return Config{}, fmt.Errorf("LLM_DEFAULT_MODEL %q is not in LLM_MODELS", cfg.DefaultModel)
	}
	if err := cfg.Limits().Validate(cfg.Limits().Defaults); err != nil {
		return Config{}, fmt.Errorf("default generation settings: %w", err)
	}

	return cfg, nil
}

// Limits returns the sidebar bounds with the configured defaults.
func (c Config) Limits() generation.Limits {
	l := generation.DefaultLimits()
	l.Models = slices.Clone(c.Models)
	l.Defaults = generation.Settings{
		Model:       c.DefaultModel,
		Temperature: c.DefaultTemperature,
		MaxTokens:   c.DefaultMaxTokens,
	}
	return l
}

func (c Config) Generation() generation.Config {
	return generation.Config{
		Mode:          c.LLMProvider,
		GeminiAPIKey:  c.GeminiAPIKey,
		GeminiBaseURL: c.GeminiBaseURL,
		OpenAIAPIKey:  c.LLMAPIKey,
		OpenAIBaseURL: c.LLMBaseURL,
		HTTPTimeout:   c.GenerationTimeout,
	}
}

func (c Config) Production() bool {
	return c.Environment == "production"
}

func envOrDefault(key, fallback string) string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func listFromEnv(key string, fallback []string) []string {
	v := stringsTrimSpace(key)
	if v == "" {
		return slices.Clone(fallback)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
