package generation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config controls provider construction.
type Config struct {
	Mode          string
	GeminiAPIKey  string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	HTTPTimeout   time.Duration
}

// NewGenerator resolves the configured provider. A missing credential is
// reported as ErrNotConfigured so callers can keep serving with the
// generate action blocked; auto mode never falls back to the mock.
func NewGenerator(ctx context.Context, cfg Config) (Generator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
			return newGemini(ctx, cfg)
		}
		if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
			return newOpenAI(cfg)
		}
		return nil, ErrNotConfigured
	case "gemini":
		return newGemini(ctx, cfg)
	case "openai":
		return newOpenAI(cfg)
	case "mock":
		return NewMockGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q (expected auto|gemini|openai|mock)", cfg.Mode)
	}
}

// Convert to the interface only on success; a typed nil would pass != nil.
func newGemini(ctx context.Context, cfg Config) (Generator, error) {
	g, err := NewGeminiGenerator(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, BaseURL: cfg.GeminiBaseURL})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newOpenAI(cfg Config) (Generator, error) {
	g, err := NewOpenAIGenerator(OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
