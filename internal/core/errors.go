package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVehicle is returned when an import or entry has no target vehicle.
	ErrNoVehicle = errors.New("no vehicle selected")

	// ErrEmptyFile is returned when an uploaded file has no content.
	ErrEmptyFile = errors.New("empty file")
)

// FormatError reports structurally invalid CSV input.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "invalid csv: " + e.Msg
}

// RowValidationError reports a row that could not be converted. It never
// aborts the batch.
type RowValidationError struct {
	Row   int    // 1-based index among parsed data rows
	Line  int    // 1-based line in the source text
	Field FieldKey
	Value string
	Msg   string
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Msg)
}

// InputError reports an invalid manually entered value.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Field + " " + e.Msg
}

// AuthError reports a missing or expired session. It is fatal to an import.
type AuthError struct {
	Msg string
	Err error
}

func (e *AuthError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "authentication required"
	}
	if e.Err != nil {
		return "auth: " + msg + ": " + e.Err.Error()
	}
	return "auth: " + msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrSessionExpired is the AuthError returned when the access token has expired.
var ErrSessionExpired = &AuthError{Msg: "Session expired. Please log in again."}

// RemoteError reports a failed call to the persistence backend.
type RemoteError struct {
	Op     string
	Status int // 0 for transport failures
	Body   string
	Err    error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("sheets %s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("sheets %s: http %d: %s", e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf("sheets %s: http %d", e.Op, e.Status)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is or wraps an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRemoteError reports whether err is or wraps a *RemoteError.
func IsRemoteError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
