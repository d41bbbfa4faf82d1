package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Code is the failure taxonomy surfaced to the flow.
type Code string

const (
	CodeCredentialInvalid   Code = "credential_invalid"
	CodeModelUnknown        Code = "model_unknown"
	CodeRateLimited         Code = "rate_limited"
	CodeTimeout             Code = "timeout"
	CodeCanceled            Code = "canceled"
	CodeContentBlocked      Code = "content_blocked"
	CodeProviderUnavailable Code = "provider_unavailable"
	CodeEmptyResponse       Code = "empty_response"
	CodeProviderError       Code = "provider_error"
)

// ErrNotConfigured means no provider credential was supplied at startup.
var ErrNotConfigured = errors.New("question generation is not configured")

// Error is the single reportable failure of one generation call.
type Error struct {
	Provider  string
	Code      Code
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s generation failed (%s): %v", e.Provider, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusError is returned by HTTP providers on a non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider http status %d: %s", e.StatusCode, e.Body)
}

// Classify maps any provider error onto the taxonomy.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	out := &Error{Provider: provider, Code: CodeProviderError, Err: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		out.Code = CodeTimeout
		out.Retryable = true
		return out
	case errors.Is(err, context.Canceled):
		out.Code = CodeCanceled
		return out
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		out.Code, out.Retryable = classifyStatus(apiErr.Code, apiErr.Status+" "+apiErr.Message)
		return out
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		out.Code, out.Retryable = classifyStatus(statusErr.StatusCode, statusErr.Body)
		return out
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		out.Code = CodeProviderUnavailable
		out.Retryable = true
		if netErr.Timeout() {
			out.Code = CodeTimeout
		}
	}
	return out
}

func classifyStatus(code int, detail string) (Code, bool) {
	lower := strings.ToLower(detail)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return CodeCredentialInvalid, false
	case code == http.StatusBadRequest && (strings.Contains(lower, "api key") || strings.Contains(lower, "api_key")):
		return CodeCredentialInvalid, false
	case code == http.StatusNotFound:
		return CodeModelUnknown, false
	case code == http.StatusTooManyRequests:
		return CodeRateLimited, true
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return CodeTimeout, true
	case isRetryableHTTPStatus(code):
		return CodeProviderUnavailable, true
	default:
		return CodeProviderError, false
	}
}

func isRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
