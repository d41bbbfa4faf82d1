package generation

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator produces deterministic questions without any network call.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (m *MockGenerator) Name() string { return "mock" }

var mockTemplates = []string{
	"What trade-offs do you weigh when choosing %s for a new service?",
	"Describe a production issue you debugged that involved %s.",
	"How do you test code that depends on %s?",
	"Which %s features would you avoid in a large codebase, and why?",
	"How would you explain the internals of %s to a junior engineer?",
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	techs := splitTechStack(strings.TrimPrefix(req.UserPrompt, UserPrompt("")))
	if len(techs) == 0 {
		techs = []string{"your primary stack"}
	}
	if len(techs) > len(mockTemplates) {
		techs = techs[:len(mockTemplates)]
	}
	for i := 0; len(techs) < 3; i++ {
		techs = append(techs, techs[i])
	}

	var b strings.Builder
	for i, tech := range techs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. "+mockTemplates[i], i+1, tech)
	}
	return b.String(), nil
}

func splitTechStack(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
