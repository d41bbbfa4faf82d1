package httpapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ent0n29/talentscout/internal/audit"
)

func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		respondJSON(w, http.StatusOK, map[string]any{"mode": "disabled", "records": []audit.GenerationRecord{}})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	records, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("list generation records", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "audit_unavailable", "could not read generation records")
		return
	}
	if records == nil {
		records = []audit.GenerationRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"mode": s.audit.Mode(), "records": records})
}
