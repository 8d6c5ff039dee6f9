package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/logging"
	"github.com/JonMunkholm/gaslog/internal/web/templates"
)

// handleIndex renders the home page. It works signed out, and a failing
// spreadsheet only shows an alert instead of breaking the page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params := templates.IndexParams{SignInReady: s.cfg.Google.Enabled()}

	sess, err := s.sessions.FromRequest(r)
	if errors.Is(err, core.ErrSessionExpired) {
		s.sessions.ClearCookie(w)
		msg := core.MapError(err)
		params.Error = &msg
	}
	if err == nil {
		ctx := logging.WithUser(auth.WithSession(r.Context(), sess), sess.Email)
		params.Email, params.Name = sess.Email, sess.Name
		if err := s.loadDashboard(r.WithContext(ctx), sess, &params); err != nil {
			logging.FromContext(ctx).Warn("dashboard load failed", "error", err)
			msg := core.MapError(err)
			params.Error = &msg
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

func (s *Server) loadDashboard(r *http.Request, sess *auth.Session, p *templates.IndexParams) error {
	store, err := s.openStore(r.Context(), sess)
	if err != nil {
		return err
	}
	vehicles, err := store.ListVehicles(r.Context())
	if err != nil {
		return err
	}
	entries, err := store.ListAll(r.Context())
	if err != nil {
		return err
	}
	month := core.Summarize(core.CurrentMonth(entries, s.now()), vehicles)
	p.Vehicles = vehicles
	p.Month = &month
	return nil
}

// handleHealth reports liveness and import capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
	})
}

// handleSession returns the signed-in user.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		s.respondError(w, r, auth.ErrNoSession, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
