package web

import (
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/go-chi/chi/v5"
)

const (
	defaultImportsLimit = 20
	maxImportsLimit     = 100
)

// handleListImports returns the user's recent import runs, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		s.respondError(w, r, auth.ErrNoSession, http.StatusUnauthorized)
		return
	}
	limit := min(parseIntParam(r, "limit", defaultImportsLimit), maxImportsLimit)

	runs, err := s.service.ListImports(r.Context(), sess.Email, limit)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": runs})
}

// handleGetImport returns one of the user's import runs.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		s.respondError(w, r, auth.ErrNoSession, http.StatusUnauthorized)
		return
	}

	run, err := s.service.GetImport(r.Context(), sess.Email, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
