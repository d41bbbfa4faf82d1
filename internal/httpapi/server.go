package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ent0n29/talentscout/internal/audit"
	"github.com/ent0n29/talentscout/internal/config"
	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/intake"
	"github.com/ent0n29/talentscout/internal/observability"
	"github.com/ent0n29/talentscout/internal/session"
)

type Server struct {
	cfg      config.Config
	sessions *session.Manager
	flow     *intake.Controller
	metrics  *observability.Metrics
	audit    audit.Store
	logger   *zap.Logger
	upgrader websocket.Upgrader
	static   http.Handler
}

func New(cfg config.Config, sessions *session.Manager, flow *intake.Controller, metrics *observability.Metrics, auditStore audit.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		flow:     flow,
		metrics:  metrics,
		audit:    auditStore,
		logger:   logger,
		static:   newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may drive a candidate's session.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(withSentryRecovery)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/models", s.handleModels)
	r.Get("/v1/perf/latency", s.handlePerfLatency)
	r.Get("/v1/audit/generations", s.handleListGenerations)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/ws", s.handleSessionWS)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleEndSession)
			r.Post("/intake", s.handleSubmitIntake)
			r.Post("/tech-stack", s.handleSubmitTechStack)
			r.Post("/acknowledge", s.handleAcknowledge)
			r.Post("/reset", s.handleReset)
			r.Put("/settings", s.handleUpdateSettings)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"audit_store_mode": s.auditMode(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ready",
		"generation_ready": s.flow.Ready(),
		"llm_provider":     s.flow.Provider(),
	})
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, req)
	})
}

type errorResponse struct {
	Error     string       `json:"error"`
	Code      string       `json:"code"`
	Reason    string       `json:"reason,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
	Fields    []string     `json:"fields,omitempty"`
	View      *intake.View `json:"view,omitempty"`
}

// describeError maps flow and session errors onto a status and body.
func describeError(err error) (int, errorResponse) {
	var (
		verr *intake.ValidationError
		serr *intake.StageError
		gerr *intake.GenerationError
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "session_not_found"}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Code: "validation_failed", Fields: verr.Fields}
	case errors.As(err, &serr):
		return http.StatusConflict, errorResponse{Error: serr.Error(), Code: "invalid_stage"}
	case errors.As(err, &gerr):
		status := http.StatusBadGateway
		if gerr.Code() == generation.CodeTimeout {
			status = http.StatusGatewayTimeout
		}
		return status, errorResponse{
			Error:     gerr.Error(),
			Code:      "generation_failed",
			Reason:    string(gerr.Code()),
			Retryable: gerr.Retryable(),
		}
	case errors.Is(err, intake.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error(), Code: "not_configured"}
	default:
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request"}
	}
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func (s *Server) auditMode() string {
	if s.audit == nil {
		return "disabled"
	}
	return s.audit.Mode()
}
