package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func newGeminiTestServer(t *testing.T, status int, body string, got *geminiRequest, path *string) *GeminiGenerator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			*path = r.URL.Path
		}
		if key := r.Header.Get("x-goog-api-key"); key != "test-key" {
			t.Errorf("x-goog-api-key = %q, want test-key", key)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	gen, err := NewGeminiGenerator(context.Background(), GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGeminiGenerator() error = %v", err)
	}
	return gen
}

func TestGeminiGeneratorSendsGenerateContent(t *testing.T) {
	var (
		got  geminiRequest
		path string
	)
	gen := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"1. What is a Python generator?"}]},"finishReason":"STOP"}]}`,
		&got, &path)

	text, err := gen.Generate(context.Background(), Request{
		SystemPrompt: SystemPrompt,
		UserPrompt:   UserPrompt("Python, Docker"),
		Model:        "gemini-1.5-flash-8b-latest",
		Temperature:  0.5,
		MaxTokens:    200,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "1. What is a Python generator?" {
		t.Fatalf("Generate() = %q", text)
	}
	if !strings.HasSuffix(path, "/models/gemini-1.5-flash-8b-latest:generateContent") {
		t.Fatalf("path = %q, want generateContent for the selected model", path)
	}
	if got.SystemInstruction == nil || len(got.SystemInstruction.Parts) != 1 || got.SystemInstruction.Parts[0].Text != SystemPrompt {
		t.Fatalf("systemInstruction = %+v", got.SystemInstruction)
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 1 || got.Contents[0].Parts[0].Text != "Tech Stack: Python, Docker" {
		t.Fatalf("contents = %+v", got.Contents)
	}
	if got.GenerationConfig.Temperature != 0.5 || got.GenerationConfig.MaxOutputTokens != 200 {
		t.Fatalf("generationConfig = %+v", got.GenerationConfig)
	}
}

func TestGeminiGeneratorFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Code
	}{
		{
			name:   "response blocked by safety",
			status: http.StatusOK,
			body:   `{"candidates":[{"finishReason":"SAFETY"}]}`,
			want:   CodeContentBlocked,
		},
		{
			name:   "prompt blocked",
			status: http.StatusOK,
			body:   `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			want:   CodeContentBlocked,
		},
		{
			name:   "bad api key",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			want:   CodeCredentialInvalid,
		},
		{
			name:   "unknown model",
			status: http.StatusNotFound,
			body:   `{"error":{"code":404,"message":"models/gemma-7b is not found","status":"NOT_FOUND"}}`,
			want:   CodeModelUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGeminiTestServer(t, tt.status, tt.body, nil, nil)
			_, err := Questions(context.Background(), gen, "Go", DefaultLimits().Defaults)
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if gerr.Code != tt.want || gerr.Provider != "gemini" {
				t.Fatalf("error = %s/%q, want gemini/%q", gerr.Provider, gerr.Code, tt.want)
			}
			if gerr.Retryable {
				t.Fatalf("Retryable = true for %q", gerr.Code)
			}
		})
	}
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGeminiGenerator(context.Background(), GeminiConfig{APIKey: "  "}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}
