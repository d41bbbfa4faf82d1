package audit

import (
	"context"
	"time"
)

// GenerationRecord describes one question generation attempt. It never
// carries candidate contact data or the generated text.
type GenerationRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Outcome        string    `json:"outcome"`
	Retryable      bool      `json:"retryable"`
	DurationMS     int64     `json:"duration_ms"`
	TechStackChars int       `json:"tech_stack_chars"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists generation records.
type Store interface {
	Record(ctx context.Context, record GenerationRecord) error
	// Recent returns the newest records first.
	Recent(ctx context.Context, limit int) ([]GenerationRecord, error)
	Mode() string
	Close() error
}

const defaultRecentLimit = 50
