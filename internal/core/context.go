package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "import_ip"
	ctxKeyUserAgent contextKey = "import_ua"
)

// ContextWithRequestMetadata stores the client IP and User-Agent recorded on
// import runs.
func ContextWithRequestMetadata(ctx context.Context, ip, ua string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyIPAddress, ip)
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}
