package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/gaslog/internal/auth"
	"github.com/JonMunkholm/gaslog/internal/config"
	"github.com/JonMunkholm/gaslog/internal/logging"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2)
	h := rl.Handler(ok)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(10)
	rl.now = func() time.Time { return now }

	rl.Limiter("10.0.0.1")
	now = now.Add(idleTTL + time.Second)
	rl.Limiter("10.0.0.2")

	if removed := rl.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if _, ok := rl.clients["10.0.0.2"]; !ok {
		t.Error("recent client was removed")
	}
}

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "untrusted peer keeps address",
			trusted: []string{"10.0.0.0/8"},
			remote:  "203.0.113.9:4000",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "203.0.113.9:4000",
		},
		{
			name:    "trusted peer real ip",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "1.2.3.4",
		},
		{
			name:    "trusted single address forwarded for",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Forwarded-For": "5.6.7.8, 10.0.0.1"},
			want:    "5.6.7.8",
		},
		{
			name:    "invalid header ignored",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Real-IP": "not-an-ip"},
			want:    "127.0.0.1:4000",
		},
		{
			name:    "no trusted proxies",
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Real-IP": "1.2.3.4"},
			want:    "127.0.0.1:4000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	sessions := auth.NewManager(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef"})

	var user string
	h := RequireSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFromContext(r.Context())
		user = sess.Email + "|" + logging.UserFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie status = %d, want 401", rec.Code)
	}

	token, _, err := sessions.Sign(&auth.Session{Email: "a@example.com", Expiry: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: "gaslog_session", Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("signed-in status = %d, want 200", rec.Code)
	}
	if user != "a@example.com|a@example.com" {
		t.Errorf("context user = %q", user)
	}
}
