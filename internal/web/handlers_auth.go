package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/logging"
)

const (
	stateCookie = "gaslog_oauth_state"
	stateMaxAge = 600
)

// handleLogin starts Google sign-in.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Google.Enabled() {
		s.respondError(w, r, &core.AuthError{Msg: "google sign-in is not configured"}, http.StatusServiceUnavailable)
		return
	}
	state, err := auth.NewState()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback finishes sign-in, sets the session cookie and makes sure
// the user's spreadsheet exists.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clearState(w, s.cfg.Session.Secure)

	if e := q.Get("error"); e != "" {
		s.respondError(w, r, &core.AuthError{Msg: "sign-in was not completed: " + e}, http.StatusUnauthorized)
		return
	}
	c, err := r.Cookie(stateCookie)
	if err != nil || q.Get("state") == "" ||
		subtle.ConstantTimeCompare([]byte(c.Value), []byte(q.Get("state"))) != 1 {
		s.respondError(w, r, &core.AuthError{Msg: "sign-in state mismatch"}, http.StatusBadRequest)
		return
	}
	code := q.Get("code")
	if code == "" {
		s.respondError(w, r, &core.AuthError{Msg: "sign-in returned no code"}, http.StatusBadRequest)
		return
	}

	sess, err := s.oauth.Login(r.Context(), code)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if err := s.sessions.SetCookie(w, sess); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	ctx := logging.WithUser(r.Context(), sess.Email)
	logger := logging.FromContext(ctx)
	if _, err := s.openStore(ctx, sess); err != nil {
		logger.Warn("spreadsheet setup failed", "error", err)
	}
	logger.Info("signed in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func clearState(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
