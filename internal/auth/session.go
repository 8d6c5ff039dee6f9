// Package auth signs users in with Google OAuth and keeps the resulting
// session in a signed cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/gaslog/internal/config"
	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned when the request carries no session cookie.
var ErrNoSession = &core.AuthError{Msg: "not signed in"}

// Session is the signed-in user and their Google access token.
type Session struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AccessToken string    `json:"-"`
	Expiry      time.Time `json:"expires_at"`
}

// Expired reports whether the access token has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && !now.Before(s.Expiry)
}

// Claims is the JWT payload of the session cookie.
type Claims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
	TokenExpiry int64  `json:"token_expiry"`
	jwt.RegisteredClaims
}

type contextKey string

const contextKeySession contextKey = "auth.session"

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKeySession, sess)
}

// SessionFromContext extracts the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(contextKeySession).(*Session)
	return sess, ok && sess != nil
}

// Manager issues and reads session cookies.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager creates a Manager from session settings.
func NewManager(cfg config.SessionConfig) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = "gaslog_session"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Sign returns the signed session token. The token lives until the access
// token expires or the TTL passes, whichever comes first.
func (m *Manager) Sign(sess *Session) (string, time.Time, error) {
	if sess == nil || sess.Email == "" {
		return "", time.Time{}, errors.New("auth: session has no email")
	}
	now := m.now()
	expires := now.Add(m.ttl)
	if !sess.Expiry.IsZero() && sess.Expiry.Before(expires) {
		expires = sess.Expiry
	}

	claims := Claims{
		Email:       sess.Email,
		Name:        sess.Name,
		AccessToken: sess.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if !sess.Expiry.IsZero() {
		claims.TokenExpiry = sess.Expiry.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign session: %w", err)
	}
	return signed, expires, nil
}

// Parse validates a session token and returns its session. An expired
// token yields core.ErrSessionExpired.
func (m *Manager) Parse(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, core.ErrSessionExpired
	}
	if err != nil {
		return nil, &core.AuthError{Msg: "invalid session", Err: err}
	}
	if claims.Email == "" {
		return nil, &core.AuthError{Msg: "invalid session: missing email"}
	}

	sess := &Session{
		Email:       claims.Email,
		Name:        claims.Name,
		AccessToken: claims.AccessToken,
	}
	if claims.TokenExpiry > 0 {
		sess.Expiry = time.Unix(claims.TokenExpiry, 0)
	}
	if sess.Expired(m.now()) {
		return nil, core.ErrSessionExpired
	}
	return sess, nil
}

// SetCookie signs sess and writes the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, sess *Session) error {
	token, expires, err := m.Sign(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie removes the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest reads the session cookie of r.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.Parse(c.Value)
}
