// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Google   GoogleConfig
	Session  SessionConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Audit    AuditConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// GoogleConfig holds OAuth client settings and API endpoints.
// Endpoints are configurable so tests can point them at httptest servers.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	// RedirectURL is the OAuth callback (default: http://localhost:8080/auth/callback)
	RedirectURL string `env:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/auth/callback"`

	AuthURL  string `env:"GOOGLE_AUTH_URL" default:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL string `env:"GOOGLE_TOKEN_URL" default:"https://oauth2.googleapis.com/token"`

	// Service root endpoints passed to option.WithEndpoint.
	APIURL        string `env:"GOOGLE_API_URL" default:"https://www.googleapis.com/"`
	SheetsBaseURL string `env:"GOOGLE_SHEETS_URL" default:"https://sheets.googleapis.com/"`
	DriveBaseURL  string `env:"GOOGLE_DRIVE_URL" default:"https://www.googleapis.com/drive/v3/"`

	// HTTPTimeout bounds every call to a Google API (default: 30s)
	HTTPTimeout time.Duration `env:"GOOGLE_HTTP_TIMEOUT" default:"30s"`
}

// SessionConfig holds session cookie settings.
type SessionConfig struct {
	// Secret signs session tokens (required)
	Secret string `env:"SESSION_SECRET" required:"true"`

	// CookieName is the session cookie name (default: gaslog_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"gaslog_session"`

	// TTL caps the session lifetime; Google's token expiry wins if sooner (default: 1h)
	TTL time.Duration `env:"SESSION_TTL" default:"1h"`

	// Secure sets the Secure cookie attribute (default: false)
	Secure bool `env:"SESSION_SECURE" default:"false"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel imports (default: 5)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single import (default: 5m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`

	// ErrorPreview is how many row errors are listed individually (default: 5)
	ErrorPreview int `env:"IMPORT_ERROR_PREVIEW" default:"5"`

	// NearEmptyThreshold is the DTE below which a fill-up counts as from empty (default: 35)
	NearEmptyThreshold int `env:"IMPORT_NEAR_EMPTY_THRESHOLD" default:"35"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// DatabaseConfig holds database connection settings.
// The database only backs the import audit log, so it is optional.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty disables the audit log
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// CacheConfig holds the spreadsheet id cache settings.
type CacheConfig struct {
	// RedisAddr is host:port of the Redis server; empty uses an in-process cache
	RedisAddr string `env:"REDIS_ADDR"`

	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" default:"0"`

	// TTL is how long a spreadsheet id stays cached (default: 24h)
	TTL time.Duration `env:"CACHE_TTL" default:"24h"`
}

// AuditConfig holds import audit retention settings.
type AuditConfig struct {
	// RetentionDays is how long import runs are kept (default: 90)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"90"`

	// CheckInterval is how often the retention job runs (default: 24h)
	CheckInterval time.Duration `env:"AUDIT_CHECK_INTERVAL" default:"24h"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// Enabled reports whether Google OAuth is configured.
func (c *GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
