package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Users can quote the code when reporting a problem.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Encoding error: File contains characters that could not be decoded
//	          Patterns: "encoding error"
//	FILE003 - Invalid CSV: File needs a header row and at least one data row
//	          Patterns: "invalid csv"
//	FILE004 - No file: No file was selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: The uploaded file is empty
//	          Patterns: "empty file"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing station: A row has no gas station
//	         Patterns: "missing gas station"
//	VAL002 - Invalid mileage: A row has no usable odometer reading
//	         Patterns: "invalid or missing mileage"
//	VAL003 - No vehicle: No vehicle was selected for the entries
//	         Patterns: "no vehicle selected"
//	VAL004 - Invalid mapping: A column was mapped to an unknown field
//	         Patterns: "invalid field key", "invalid mapping"
//	VAL005 - Vehicle not found
//	         Patterns: "vehicle not found"
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Session expired
//	          Patterns: "session expired"
//	AUTH002 - Missing permission: Google access does not include spreadsheets
//	          Patterns: "insufficient scope"
//	AUTH003 - Not signed in
//	          Patterns: "auth:"
//
// # Spreadsheet Errors (SHEET001-SHEET099)
//
//	SHEET001 - Google rate limit
//	           Patterns: "http 429"
//	SHEET002 - Spreadsheet not found
//	           Patterns: "spreadsheet not found"
//	SHEET003 - Spreadsheet request failed
//	           Patterns: "sheets "
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Too many imports in progress
//	         Patterns: "too many concurrent imports"
//	IMP002 - Request cancelled
//	         Patterns: "context canceled"
//	IMP003 - Request timed out
//	         Patterns: "context deadline exceeded", "timeout"
//	IMP004 - Import not found
//	         Patterns: "import not found"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains characters that could not be decoded",
			Action:  "Save the file as UTF-8",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File needs a header row and at least one data row",
			Action:  "Check that the first line holds column names",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL006)
	// =========================================================================
	{
		pattern: "missing gas station",
		msg: UserMessage{
			Message: "A row has no gas station",
			Action:  "Fill in the station column or map it to the right header",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid or missing mileage",
		msg: UserMessage{
			Message: "A row has no usable odometer reading",
			Action:  "Make sure the mileage column holds a non-zero number",
			Code:    "VAL002",
		},
	},
	{
		pattern: "no vehicle selected",
		msg: UserMessage{
			Message: "No vehicle was selected",
			Action:  "Choose a vehicle or create one first",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid field key",
		msg: UserMessage{
			Message: "A column was mapped to an unknown field",
			Action:  "Use one of the listed field names in the mapping",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid mapping",
		msg: UserMessage{
			Message: "The column mapping could not be read",
			Action:  "Send the mapping as a JSON object of header to field",
			Code:    "VAL004",
		},
	},
	{
		pattern: "vehicle not found",
		msg: UserMessage{
			Message: "Vehicle not found",
			Action:  "Refresh the vehicle list and try again",
			Code:    "VAL005",
		},
	},
	{
		pattern: "invalid input",
		msg: UserMessage{
			Message: "Some fields are missing or invalid",
			Action:  "Check the highlighted fields and try again",
			Code:    "VAL006",
		},
	},

	// =========================================================================
	// Authentication Errors (AUTH001-AUTH003)
	// =========================================================================
	{
		pattern: "session expired",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Please log in again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "insufficient scope",
		msg: UserMessage{
			Message: "Google access does not include spreadsheets",
			Action:  "Log out and grant spreadsheet access when signing in",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "auth:",
		msg: UserMessage{
			Message: "You are not signed in",
			Action:  "Please log in with Google",
			Code:    "AUTH003",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP004)
	// Checked before spreadsheet errors so wrapped context errors map here.
	// =========================================================================
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP003",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "Import run not found",
			Action:  "Check the import id",
			Code:    "IMP004",
		},
	},

	// =========================================================================
	// Spreadsheet Errors (SHEET001-SHEET003)
	// =========================================================================
	{
		pattern: "http 429",
		msg: UserMessage{
			Message: "Google Sheets is rate limiting requests",
			Action:  "Wait a minute and try again",
			Code:    "SHEET001",
		},
	},
	{
		pattern: "spreadsheet not found",
		msg: UserMessage{
			Message: "Your gas log spreadsheet could not be found",
			Action:  "Log in again to recreate it",
			Code:    "SHEET002",
		},
	},
	{
		pattern: "sheets ",
		msg: UserMessage{
			Message: "Google Sheets request failed",
			Action:  "Please try again in a few moments",
			Code:    "SHEET003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
