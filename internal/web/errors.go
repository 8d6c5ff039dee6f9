package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request id; the client gets the mapped user message and
// its support code, as JSON for API calls and HTMX partials, or as plain
// text otherwise.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gaslog/internal/core"
	"github.com/JonMunkholm/gaslog/internal/logging"
	"github.com/JonMunkholm/gaslog/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message. A zero status
// is derived from the error type.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, msg, status)
	case wantsJSON(r):
		respondErrorJSON(w, msg, status)
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		authErr   *core.AuthError
		inputErr  *core.InputError
		rowErr    *core.RowValidationError
		formatErr *core.FormatError
		remoteErr *core.RemoteError
		maxBytes  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrVehicleNotFound), errors.Is(err, core.ErrImportNotFound):
		return http.StatusNotFound
	case errors.As(err, &inputErr), errors.As(err, &rowErr), errors.As(err, &formatErr),
		errors.Is(err, core.ErrNoVehicle), errors.Is(err, core.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &remoteErr):
		if remoteErr.Status == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		if remoteErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON is true for API routes and clients that ask for JSON.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
