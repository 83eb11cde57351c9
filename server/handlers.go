package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
)

// handleHealth reports liveness and the configured model.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"model":  s.model,
	})
}

// handleDebugUser returns everything stored for a user: profile, important
// memories and recent exchanges.
func (s *Server) handleDebugUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.UserSnapshot(r.Context(), userID))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
