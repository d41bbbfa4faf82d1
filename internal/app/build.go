package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/ent0n29/talentscout/internal/audit"
	"github.com/ent0n29/talentscout/internal/config"
	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/httpapi"
	"github.com/ent0n29/talentscout/internal/intake"
	"github.com/ent0n29/talentscout/internal/observability"
	"github.com/ent0n29/talentscout/internal/session"
)

const auditWriteTimeout = 2 * time.Second

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Sessions *session.Manager
	Flow     *intake.Controller
	Metrics  *observability.Metrics
	Audit    audit.Store

	// Cleanup should be called on shutdown to release external resources (DB pool).
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	auditStore, err := audit.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("audit store init failed: %w", err)
	}

	gen, err := generation.NewGenerator(ctx, cfg.Generation())
	switch {
	case errors.Is(err, generation.ErrNotConfigured):
		logger.Warn("no llm credential configured; question generation is blocked",
			zap.String("llm_provider", cfg.LLMProvider))
	case err != nil:
		_ = auditStore.Close()
		return nil, fmt.Errorf("llm provider init failed: %w", err)
	default:
		logger.Info("llm provider ready", zap.String("provider", gen.Name()))
	}

	flow := intake.NewController(gen, intake.Options{
		AutoConclude:      cfg.AutoConclude,
		GenerationTimeout: cfg.GenerationTimeout,
		Limits:            cfg.Limits(),
	}, logger.Named("intake"))
	flow.SetHooks(intake.Hooks{
		OnTransition: func(_ string, from, to intake.Stage) {
			metrics.ObserveTransition(string(from), string(to))
		},
		OnRejected: func(_ string, action intake.Action, reason string) {
			metrics.ObserveRejected(string(action), reason)
		},
		OnGeneration: func(r intake.GenerationResult) {
			metrics.ObserveGeneration(r.Provider, r.Outcome(), r.Duration)
			recordGeneration(auditStore, logger, r)
			reportGeneration(r)
		},
	})

	sessions := session.NewManager(cfg.SessionInactivityTimeout, cfg.SessionJanitorInterval)
	sessions.SetExpireHook(func(s *intake.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
		if s != nil {
			logger.Info("session expired",
				zap.String("session_id", s.ID),
				zap.String("stage", string(s.Stage)),
				zap.Duration("inactivity_timeout", cfg.SessionInactivityTimeout),
			)
		}
	})

	api := httpapi.New(cfg, sessions, flow, metrics, auditStore, logger.Named("http"))

	cleanup := func() error {
		var errs []string
		if err := auditStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Sessions: sessions,
		Flow:     flow,
		Metrics:  metrics,
		Audit:    auditStore,
		Cleanup:  cleanup,
	}, nil
}

func recordGeneration(store audit.Store, logger *zap.Logger, r intake.GenerationResult) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()
	err := store.Record(ctx, audit.GenerationRecord{
		SessionID:      r.SessionID,
		Provider:       r.Provider,
		Model:          r.Model,
		Outcome:        r.Outcome(),
		Retryable:      r.Retryable,
		DurationMS:     r.Duration.Milliseconds(),
		TechStackChars: r.TechStackChars,
	})
	if err != nil {
		logger.Warn("generation audit write failed",
			zap.String("session_id", r.SessionID),
			zap.String("audit_store_mode", store.Mode()),
			zap.Error(err),
		)
	}
}

// reportGeneration forwards failures that need operator action to Sentry.
// Transient provider errors are left to metrics.
func reportGeneration(r intake.GenerationResult) {
	if r.Err == nil {
		return
	}
	switch r.Code {
	case generation.CodeCredentialInvalid, generation.CodeModelUnknown, generation.CodeProviderError:
	default:
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("provider", r.Provider)
		scope.SetTag("model", r.Model)
		scope.SetTag("outcome", r.Outcome())
		scope.SetTag("session_id", r.SessionID)
	})
	hub.CaptureException(r.Err)
}
