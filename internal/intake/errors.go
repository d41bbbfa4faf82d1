package intake

import (
	"fmt"
	"strings"

	"github.com/ent0n29/talentscout/internal/generation"
)

// ErrNotConfigured blocks the generate action when no credential is set.
var ErrNotConfigured = generation.ErrNotConfigured

// ValidationError lists required fields that were left empty.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (missing: %s)", e.Message, strings.Join(e.Fields, ", "))
}

// StageError rejects an action the current stage does not offer.
type StageError struct {
	Action Action
	Stage  Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("action %q is not available at stage %q", e.Action, e.Stage)
}

// GenerationError reports a failed question generation call.
type GenerationError struct {
	Err *generation.Error
}

func (e *GenerationError) Error() string {
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Code() generation.Code { return e.Err.Code }

func (e *GenerationError) Retryable() bool { return e.Err.Retryable }
