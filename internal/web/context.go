package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/gaslog/internal/core"
)

// withRequestMetadata adds the client IP and User-Agent recorded on import
// runs. RemoteAddr has already been rewritten by TrustedRealIP.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return core.ContextWithRequestMetadata(ctx, ip, r.UserAgent())
}
