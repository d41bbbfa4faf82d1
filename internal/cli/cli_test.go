package cli

import (
	"bytes"
	"strings"
	"testing"
)

func setQuietEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "LLM_API_KEY", "LLM_MODELS",
		"LLM_DEFAULT_MODEL", "LLM_DEFAULT_TEMPERATURE", "LLM_DEFAULT_MAX_TOKENS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LLM_PROVIDER", "mock")
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file=" + t.TempDir() + "/missing.env"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAskPrintsQuestions(t *testing.T) {
	setQuietEnv(t)
	out, err := runRoot(t, "ask", "Python, Docker, PostgreSQL", "--max-tokens", "300", "--model", "gemma-7b")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want one question per technology:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "1. ") || !strings.Contains(lines[2], "PostgreSQL") {
		t.Fatalf("first line = %q, want numbered question", lines[0])
	}
}

func TestAskRejectsOutOfRangeSettings(t *testing.T) {
	setQuietEnv(t)
	if _, err := runRoot(t, "ask", "Go", "--temperature", "1.5"); err == nil {
		t.Fatalf("ask error = nil, want temperature rejection")
	}
	if _, err := runRoot(t, "ask", "Go", "--model", "gpt-2"); err == nil {
		t.Fatalf("ask error = nil, want model rejection")
	}
}

func TestAskWithoutCredential(t *testing.T) {
	setQuietEnv(t)
	t.Setenv("LLM_PROVIDER", "auto")
	if _, err := runRoot(t, "ask", "Go"); err == nil {
		t.Fatalf("ask error = nil, want not configured")
	}
}

func TestAskRequiresTechStack(t *testing.T) {
	setQuietEnv(t)
	if _, err := runRoot(t, "ask"); err == nil {
		t.Fatalf("ask error = nil, want argument error")
	}
	if _, err := runRoot(t, "ask", "   "); err == nil {
		t.Fatalf("ask error = nil, want empty tech stack error")
	}
}
