package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      Code
		retryable bool
	}{
		{"deadline", fmt.Errorf("send request: %w", context.DeadlineExceeded), CodeTimeout, true},
		{"canceled", context.Canceled, CodeCanceled, false},
		{"unauthorized", &StatusError{StatusCode: 401, Body: "bad key"}, CodeCredentialInvalid, false},
		{"gemini bad key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, CodeCredentialInvalid, false},
		{"unknown model", genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "models/flan-t5-xl is not found"}, CodeModelUnknown, false},
		{"rate limited", &StatusError{StatusCode: 429}, CodeRateLimited, true},
		{"unavailable", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, CodeProviderUnavailable, true},
		{"gateway timeout", &StatusError{StatusCode: 504}, CodeTimeout, true},
		{"bad request", &StatusError{StatusCode: 400, Body: "max_tokens too large"}, CodeProviderError, false},
		{"opaque", errors.New("boom"), CodeProviderError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("test", tt.err)
			if got.Code != tt.code {
				t.Fatalf("Code = %q, want %q", got.Code, tt.code)
			}
			if got.Retryable != tt.retryable {
				t.Fatalf("Retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if got.Err == nil {
				t.Fatalf("classified error lost its cause: %v", got)
			}
		})
	}
}

func TestClassifyKeepsExistingError(t *testing.T) {
	orig := &Error{Provider: "gemini", Code: CodeContentBlocked}
	if got := Classify("other", fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Fatalf("Classify() = %v, want original *Error", got)
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify("test", nil); got != nil {
		t.Fatalf("Classify(nil) = %v, want nil", got)
	}
}
