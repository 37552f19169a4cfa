package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
//	ROW001 - Row failed validation (message carries the row and field)
//	DUP001 - Athlete already registered (message carries the existing ID)
//	FILE001 - File exceeds the upload size limit
//	FILE002 - Spreadsheet could not be read
//	FILE003 - Required columns missing
//	FILE004 - No file selected
//	FILE005 - File is empty
//	LOCK001 - Registrations are closed
//	AUTH001 - Not signed in / session expired
//	AUTH002 - Email not on the coach allowlist
//	AUTH003 - Not allowed to act on this roster
//	ATH001 - Athlete not found
//	COACH001 - Coach not found
//	DB001 - Tournament number collision (retry)
//	DB002 - Constraint violation
//	DB003 - Database unavailable
//	DB004 - Database busy
//	DB005 - Operation timed out
//	UPL001 - Too many imports in progress
//	UPL002 - Request cancelled
//	RATE001 - Too many requests
//	ERR000 - Anything else
//
// Sentinel and typed errors are matched first with errors.Is/As. Driver
// errors fall through to case-insensitive substring patterns, where the
// first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgWritesDisabled = UserMessage{Message: "Registrations are closed", Action: "Contact the organizers if you need a late change", Code: "LOCK001"}
	msgNotFound       = UserMessage{Message: "Athlete not found", Action: "Refresh the roster and try again", Code: "ATH001"}
	msgCoachNotFound  = UserMessage{Message: "Coach not found", Action: "Sign in again or pick an existing coach", Code: "COACH001"}
	msgForbidden      = UserMessage{Message: "You can only manage your own athletes", Action: "Ask an organizer to make this change", Code: "AUTH003"}
	msgNoFile         = UserMessage{Message: "No file was selected", Action: "Choose a .xlsx or .csv file to upload", Code: "FILE004"}
	msgTooManyUploads = UserMessage{Message: "Too many imports in progress", Action: "Please wait a moment and try again", Code: "UPL001"}
	msgIDConflict     = UserMessage{Message: "Another registration took the same tournament number", Action: "Please try again", Code: "DB001"}
	msgCancelled      = UserMessage{Message: "Request was cancelled", Action: "Please try again", Code: "UPL002"}
	msgTimeout        = UserMessage{Message: "Operation timed out", Action: "Try a smaller file or try again later", Code: "DB005"}
	defaultMessage    = UserMessage{Message: "An unexpected error occurred", Action: "Please try again or contact the organizers", Code: "ERR000"}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps driver error text (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	{"unique constraint", UserMessage{Message: "This value must be unique but already exists", Action: "Check for repeated entries", Code: "DB002"}},
	{"foreign key", UserMessage{Message: "The referenced coach does not exist", Action: "Sign in again", Code: "DB002"}},
	{"violates", UserMessage{Message: "The change conflicts with existing data", Action: "Refresh and try again", Code: "DB002"}},
	{"connection refused", UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB003"}},
	{"connection reset", UserMessage{Message: "Database connection was interrupted", Action: "Please try again", Code: "DB003"}},
	{"database is locked", UserMessage{Message: "Database is busy", Action: "Please try again", Code: "DB004"}},
	{"deadlock", UserMessage{Message: "Database is busy", Action: "Please try again", Code: "DB004"}},
	{"could not serialize", UserMessage{Message: "Database is busy", Action: "Please try again", Code: "DB004"}},
	{"timeout", msgTimeout},
	{"file too large", UserMessage{Message: "File exceeds the maximum upload size", Action: "Split the roster into smaller files", Code: "FILE001"}},
	{"request body too large", UserMessage{Message: "File exceeds the maximum upload size", Action: "Split the roster into smaller files", Code: "FILE001"}},
	{"empty file", UserMessage{Message: "The uploaded file is empty", Action: "Upload a spreadsheet with a header row and athletes", Code: "FILE005"}},
	{"invalid csv", UserMessage{Message: "The file is not a valid CSV", Action: "Save the roster as .xlsx or comma-separated .csv", Code: "FILE002"}},
	{"invalid workbook", UserMessage{Message: "The file is not a valid Excel workbook", Action: "Save the roster as .xlsx", Code: "FILE002"}},
	{"rate limit", UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"}},
	{"token", UserMessage{Message: "Your session has expired", Action: "Sign in again", Code: "AUTH001"}},
	{"not on the allowlist", UserMessage{Message: "This email is not registered as a coach", Action: "Ask the organizers to add your email", Code: "AUTH002"}},
}

// MapError converts an error into a message fit for display.
// Row-level validation and duplicate errors keep their own text.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *ValidationError
	var derr *DuplicateError
	var serr *StructuralError
	switch {
	case errors.Is(err, ErrWritesDisabled):
		return msgWritesDisabled
	case errors.As(err, &verr):
		return UserMessage{Message: verr.Error(), Action: "Correct the value and try again", Code: "ROW001"}
	case errors.As(err, &derr):
		return UserMessage{Message: derr.Error(), Action: "The athlete is already registered", Code: "DUP001"}
	case errors.As(err, &serr) && len(serr.Missing) > 0:
		return UserMessage{Message: serr.Error(), Action: "Download the template and keep its header row", Code: "FILE003"}
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	case errors.Is(err, ErrCoachNotFound):
		return msgCoachNotFound
	case errors.Is(err, ErrForbidden):
		return msgForbidden
	case errors.Is(err, ErrNoFile):
		return msgNoFile
	case errors.Is(err, ErrTooManyUploads):
		return msgTooManyUploads
	case errors.Is(err, ErrUniqueIDConflict):
		return msgIDConflict
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if serr != nil {
		return UserMessage{Message: serr.Error(), Action: "Save the roster as .xlsx or .csv and try again", Code: "FILE002"}
	}
	return defaultMessage
}

// FormatUserError returns a single-line message with code and action.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
