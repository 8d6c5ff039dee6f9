package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/logging"
)

// RequireSession rejects requests without a valid session cookie. An expired
// session also clears the cookie so the browser signs in again.
func RequireSession(sessions *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.FromRequest(r)
			if err != nil {
				msg := core.MapError(err)
				slog.Warn("auth: rejected request",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
					"code", msg.Code,
				)
				if errors.Is(err, core.ErrSessionExpired) {
					sessions.ClearCookie(w)
				}
				writeJSONError(w, http.StatusUnauthorized, msg.Message, msg.Code)
				return
			}

			ctx := auth.WithSession(r.Context(), sess)
			ctx = logging.WithUser(ctx, sess.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
