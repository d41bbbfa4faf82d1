package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ent0n29/talentscout/internal/intake"
	"github.com/ent0n29/talentscout/internal/protocol"
	"github.com/ent0n29/talentscout/internal/session"
)

// handleSessionWS carries the same actions as the REST routes. Messages
// are handled strictly in order on this goroutine, which is also the only
// writer.
func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	defer s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()

	idle := s.sessions.InactivityTimeout()
	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(idle))

	write := func(msg any, t protocol.MessageType) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug("websocket write failed", zap.String("session_id", sessionID), zap.Error(err))
			return false
		}
		s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
		return true
	}

	_, view, err := s.apply(r.Context(), sessionID, intake.Command{Action: intake.ActionRender})
	if err != nil || !write(protocol.NewScreenView(view), protocol.TypeScreenView) {
		return
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(idle))

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			if !write(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Detail:    err.Error(),
			}, protocol.TypeErrorEvent) {
				return
			}
			continue
		}
		action := parsed.(protocol.ClientAction)
		s.metrics.WSMessages.WithLabelValues("inbound", string(action.Type)).Inc()

		if action.SessionID != sessionID {
			if !write(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "session_mismatch",
				Source:    "gateway",
				Detail:    "client_action session_id does not match this connection",
			}, protocol.TypeErrorEvent) {
				return
			}
			continue
		}

		sess, view, err := s.apply(r.Context(), sessionID, action.Command())
		if errors.Is(err, session.ErrNotFound) {
			write(protocol.SystemEvent{
				Type:      protocol.TypeSystemEvent,
				SessionID: sessionID,
				Code:      "session_ended",
				Detail:    "this session has expired or was ended; start a new one",
			}, protocol.TypeSystemEvent)
			return
		}
		if err == nil {
			if !write(protocol.NewScreenView(view), protocol.TypeScreenView) {
				return
			}
			continue
		}

		_, body := describeError(err)
		event := protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: sessionID,
			Code:      body.Code,
			Source:    "flow",
			Retryable: body.Retryable,
			Detail:    body.Error,
			Fields:    body.Fields,
		}
		if sess != nil {
			event.View = &view
		}
		if !write(event, protocol.TypeErrorEvent) {
			return
		}
	}
}
