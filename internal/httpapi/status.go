package httpapi

import (
	"fmt"
	"net/http"
	"strings"
)

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	LLMProvider     string        `json:"llm_provider"`
	GenerationReady bool          `json:"generation_ready"`
	AuditStoreMode  string        `json:"audit_store_mode"`
	AutoConclude    bool          `json:"auto_conclude"`
	ActiveSessions  int           `json:"active_sessions"`
	Checks          []statusCheck `json:"checks"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	checks := make([]statusCheck, 0, 6)
	checks = append(checks, s.generationChecks()...)

	switch mode := s.auditMode(); mode {
	case "postgres":
		checks = append(checks, statusCheck{
			ID:     "audit_store",
			Status: "ok",
			Label:  "Generation audit log",
			Detail: "postgres",
		})
	default:
		checks = append(checks, statusCheck{
			ID:     "audit_store",
			Status: "warn",
			Label:  "Generation audit log",
			Detail: mode,
			Fix:    "Set DATABASE_URL to keep the generation audit log across restarts.",
		})
	}

	limits := s.flow.Limits()
	checks = append(checks, statusCheck{
		ID:     "models",
		Status: "ok",
		Label:  "Model allow-list",
		Detail: strings.Join(limits.Models, ", "),
	})

	flowDetail := "explicit acknowledgement after questions"
	if s.cfg.AutoConclude {
		flowDetail = "questions conclude automatically after display"
	}
	checks = append(checks, statusCheck{
		ID:     "flow_mode",
		Status: "ok",
		Label:  "Questions screen",
		Detail: flowDetail,
	})

	respondJSON(w, http.StatusOK, statusResponse{
		LLMProvider:     s.flow.Provider(),
		GenerationReady: s.flow.Ready(),
		AuditStoreMode:  s.auditMode(),
		AutoConclude:    s.cfg.AutoConclude,
		ActiveSessions:  s.sessions.ActiveCount(),
		Checks:          checks,
	})
}

func (s *Server) generationChecks() []statusCheck {
	mode := strings.ToLower(strings.TrimSpace(s.cfg.LLMProvider))
	if mode == "" {
		mode = "auto"
	}

	if !s.flow.Ready() {
		fix := "Set GEMINI_API_KEY (or GOOGLE_API_KEY)."
		switch mode {
		case "openai":
			fix = "Set LLM_API_KEY for the OpenAI-compatible endpoint."
		case "auto":
			fix = "Set GEMINI_API_KEY, or LLM_API_KEY with LLM_PROVIDER=openai."
		}
		return []statusCheck{{
			ID:     "llm_credential",
			Status: "error",
			Label:  "LLM credential",
			Detail: fmt.Sprintf("no credential configured for provider %q; question generation is blocked", mode),
			Fix:    fix,
		}}
	}

	provider := s.flow.Provider()
	checks := []statusCheck{{
		ID:     "llm_provider",
		Status: "ok",
		Label:  "LLM provider",
		Detail: provider,
	}}
	switch provider {
	case "mock":
		checks = append(checks, statusCheck{
			ID:     "llm_credential",
			Status: "warn",
			Label:  "LLM provider is mock",
			Detail: "Questions are generated locally without a model.",
			Fix:    "Set LLM_PROVIDER=auto and GEMINI_API_KEY for real questions.",
		})
	case "openai":
		checks = append(checks, statusCheck{
			ID:     "llm_credential",
			Status: "ok",
			Label:  "LLM credential",
			Detail: "present (" + s.cfg.LLMBaseURL + ")",
		})
	default:
		checks = append(checks, statusCheck{
			ID:     "llm_credential",
			Status: "ok",
			Label:  "LLM credential",
			Detail: "present",
		})
	}
	return checks
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.flow.Limits())
}
