package generation

import (
	"context"
	"errors"
	"strings"
)

// SystemPrompt is the fixed instruction sent with every question request.
const SystemPrompt = "You are a helpful hiring assistant. Ask 3 to 5 technical questions based on the tech stack provided."

// UserPrompt embeds the candidate's tech stack verbatim.
func UserPrompt(techStack string) string {
	return "Tech Stack: " + techStack
}

// Request is the provider-agnostic generation call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Generator turns a prompt pair into model text. Implementations perform
// exactly one upstream call per Generate.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

var errEmptyResponse = errors.New("provider returned no text")

// Questions asks gen for interview questions about techStack. Every failure
// is returned as a *Error.
func Questions(ctx context.Context, gen Generator, techStack string, settings Settings) (string, error) {
	if gen == nil {
		return "", ErrNotConfigured
	}
	text, err := gen.Generate(ctx, Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   UserPrompt(techStack),
		Model:        settings.Model,
		Temperature:  settings.Temperature,
		MaxTokens:    settings.MaxTokens,
	})
	if err != nil {
		return "", Classify(gen.Name(), err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Provider: gen.Name(), Code: CodeEmptyResponse, Err: errEmptyResponse}
	}
	return text, nil
}
