package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewGeneratorModes(t *testing.T) {
	ctx := context.Background()

	gen, err := NewGenerator(ctx, Config{Mode: "mock"})
	if err != nil {
		t.Fatalf("mock mode error = %v", err)
	}
	if gen.Name() != "mock" {
		t.Fatalf("mock mode provider = %q", gen.Name())
	}

	gen, err = NewGenerator(ctx, Config{Mode: "auto", OpenAIAPIKey: "k"})
	if err != nil {
		t.Fatalf("auto mode error = %v", err)
	}
	if gen.Name() != "openai" {
		t.Fatalf("auto with LLM_API_KEY provider = %q, want openai", gen.Name())
	}
}

func TestNewGeneratorWithoutCredential(t *testing.T) {
	for _, mode := range []string{"", "auto", "gemini", "openai"} {
		gen, err := NewGenerator(context.Background(), Config{Mode: mode})
		if !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("mode %q error = %v, want ErrNotConfigured", mode, err)
		}
		if gen != nil {
			t.Fatalf("mode %q returned non-nil generator %#v", mode, gen)
		}
	}
}

func TestNewGeneratorRejectsUnknownMode(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{Mode: "palm"})
	if err == nil || !strings.Contains(err.Error(), "unsupported llm provider") {
		t.Fatalf("error = %v, want unsupported provider", err)
	}
}

func TestMockGeneratorProducesThreeToFiveQuestions(t *testing.T) {
	gen := NewMockGenerator()
	tests := []struct {
		stack string
		want  int
	}{
		{"Go", 3},
		{"Python, Docker, PostgreSQL", 3},
		{"Go; Rust; Kafka; Redis", 4},
		{"a,b,c,d,e,f,g", 5},
	}
	for _, tt := range tests {
		out, err := gen.Generate(context.Background(), Request{UserPrompt: UserPrompt(tt.stack)})
		if err != nil {
			t.Fatalf("Generate(%q) error = %v", tt.stack, err)
		}
		if got := len(strings.Split(out, "\n")); got != tt.want {
			t.Fatalf("Generate(%q) produced %d questions, want %d:\n%s", tt.stack, got, tt.want, out)
		}
		if !strings.HasPrefix(out, "1. ") {
			t.Fatalf("Generate(%q) output not numbered: %q", tt.stack, out)
		}
	}
}
