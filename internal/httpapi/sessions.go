package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/intake"
)

type sessionResponse struct {
	Session *intake.Session `json:"session"`
	View    intake.View     `json:"view"`
}

type createSessionRequest struct {
	Settings *generation.SettingsPatch `json:"settings,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sess := s.sessions.Create(s.flow.DefaultSettings())
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()
	s.logger.Info("session created", zap.String("session_id", sess.ID))

	cmd := intake.Command{Action: intake.ActionRender}
	if req.Settings != nil {
		cmd = intake.Command{Action: intake.ActionUpdateSettings, Settings: req.Settings}
	}
	s.respondAction(w, r, sess.ID, cmd, http.StatusCreated)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, chi.URLParam(r, "id"), intake.Command{Action: intake.ActionRender}, http.StatusOK)
}

func (s *Server) handleSubmitIntake(w http.ResponseWriter, r *http.Request) {
	var form intake.IntakeForm
	if err := decodeJSON(r, &form); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.respondAction(w, r, chi.URLParam(r, "id"), intake.Command{Action: intake.ActionSubmitIntake, Intake: &form}, http.StatusOK)
}

func (s *Server) handleSubmitTechStack(w http.ResponseWriter, r *http.Request) {
	var form intake.TechStackForm
	if err := decodeJSON(r, &form); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.respondAction(w, r, chi.URLParam(r, "id"), intake.Command{Action: intake.ActionSubmitTechStack, TechStack: form.TechStack}, http.StatusOK)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, chi.URLParam(r, "id"), intake.Command{Action: intake.ActionAcknowledge}, http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.respondAction(w, r, chi.URLParam(r, "id"), intake.Command{Action: intake.ActionReset}, http.StatusOK)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch generation.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "settings body is required")
		return
	}
	s.respondAction(w, r, chi.URLParam(r, "id"), intake.Command{Action: intake.ActionUpdateSettings, Settings: &patch}, http.StatusOK)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.End(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"stage":      sess.Stage,
		"ended":      true,
	})
}

func (s *Server) respondAction(w http.ResponseWriter, r *http.Request, sessionID string, cmd intake.Command, okStatus int) {
	sess, view, err := s.apply(r.Context(), sessionID, cmd)
	if sess == nil {
		status, body := describeError(err)
		respondJSON(w, status, body)
		return
	}
	if err != nil {
		status, body := describeError(err)
		body.View = &view
		respondJSON(w, status, body)
		return
	}
	respondJSON(w, okStatus, sessionResponse{Session: sess, View: view})
}

// apply runs cmd under the session lock. A nil session means the record
// does not exist; otherwise err is the flow's verdict on cmd.
func (s *Server) apply(ctx context.Context, sessionID string, cmd intake.Command) (*intake.Session, intake.View, error) {
	var (
		snapshot  *intake.Session
		view      intake.View
		actionErr error
	)
	err := s.sessions.Do(sessionID, func(rec *intake.Session) error {
		view, actionErr = s.flow.Apply(ctx, rec, cmd)
		snapshot = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, intake.View{}, err
	}
	return snapshot, view, actionErr
}
