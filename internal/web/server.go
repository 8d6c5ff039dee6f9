// Package web provides the HTTP server and handlers for the fuel log.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/JonMunkholm/gaslog/internal/config"
	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/sheets"
	mw "github.com/JonMunkholm/gaslog/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserStore is the per-user persistence the handlers need.
type UserStore interface {
	core.EntryStore
	core.VehicleStore
}

// StoreOpener opens the signed-in user's store for one request.
type StoreOpener func(ctx context.Context, sess *auth.Session) (UserStore, error)

// Server is the HTTP server for the fuel log.
type Server struct {
	service    *core.Service
	cfg        *config.Config
	sessions   *auth.Manager
	oauth      *auth.OAuth
	locator    *sheets.Locator
	httpClient *http.Client
	openStore  StoreOpener
	now        func() time.Time

	limiter       *mw.RateLimiter
	importLimiter *mw.RateLimiter
	stopCleanup   context.CancelFunc

	router *chi.Mux
	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStoreOpener replaces the spreadsheet-backed store.
func WithStoreOpener(open StoreOpener) Option {
	return func(s *Server) { s.openStore = open }
}

// WithLocator sets the spreadsheet locator used by the default store opener.
func WithLocator(l *sheets.Locator) Option {
	return func(s *Server) { s.locator = l }
}

// WithHTTPClient shares an http.Client for Google API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.httpClient = c }
}

// WithOAuth replaces the Google sign-in flow.
func WithOAuth(o *auth.OAuth) Option {
	return func(s *Server) { s.oauth = o }
}

// NewServer creates a Server. Routes and middleware are ready on return.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		sessions: auth.NewManager(cfg.Session),
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: cfg.Google.HTTPTimeout}
	}
	if s.oauth == nil {
		s.oauth = auth.NewOAuth(cfg.Google, s.httpClient)
	}
	if s.locator == nil {
		s.locator = sheets.NewLocator(nil, 0, slog.Default())
	}
	if s.openStore == nil {
		s.openStore = s.openSheetsStore
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	if cfg.Rate.Enabled {
		s.limiter = mw.NewRateLimiter(cfg.Rate.RequestsPerMinute)
		s.importLimiter = mw.NewRateLimiter(cfg.Rate.ImportLimit)
		go s.limiter.Run(ctx, time.Minute)
		go s.importLimiter.Run(ctx, time.Minute)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	if s.limiter != nil {
		s.router.Use(s.limiter.Handler)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", s.handleLogin)
		r.Get("/callback", s.handleCallback)
		r.Post("/logout", s.handleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.RequireSession(s.sessions))

		r.Get("/session", s.handleSession)

		r.Get("/entries", s.handleListEntries)
		r.Post("/entries", s.handleCreateEntry)

		r.Get("/vehicles", s.handleListVehicles)
		r.Post("/vehicles", s.handleCreateVehicle)
		r.Put("/vehicles/{id}", s.handleUpdateVehicle)
		r.Post("/vehicles/{id}/default", s.handleSetDefaultVehicle)

		r.Group(func(r chi.Router) {
			if s.importLimiter != nil {
				r.Use(s.importLimiter.Handler)
			}
			r.Post("/import/preview", s.handlePreview)
			r.Post("/import", s.handleImport)
		})

		r.Get("/analytics", s.handleAnalytics)
		r.Get("/export/{format}", s.handleExport)

		r.Get("/imports", s.handleListImports)
		r.Get("/imports/{id}", s.handleGetImport)
	})
}

// openSheetsStore finds or creates the user's spreadsheet and binds a store
// to it.
func (s *Server) openSheetsStore(ctx context.Context, sess *auth.Session) (UserStore, error) {
	client := sheets.NewClient(sess.AccessToken, sess.Expiry,
		sheets.WithSheetsURL(s.cfg.Google.SheetsBaseURL),
		sheets.WithDriveURL(s.cfg.Google.DriveBaseURL),
		sheets.WithHTTPClient(s.httpClient),
	)
	id, err := s.locator.Ensure(ctx, client, sess.Email)
	if err != nil {
		return nil, err
	}
	return sheets.NewStore(client, id), nil
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopCleanup()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self' https://accounts.google.com; frame-ancestors 'none'"

// securityHeaders adds hardening headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", contentSecurityPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v with status. Encoding errors are only logged since
// the header has already been sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
