package web

// errors.go turns service errors into HTTP responses.
//
// The technical error is logged with the request ID; the client receives the
// user message, suggested action and support code from core.MapError.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/entrydesk/internal/auth"
	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errUnauthorized = errors.New("missing or invalid session token")
	errBadRequest   = errors.New("malformed request")
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var verr *core.ValidationError
	var serr *core.StructuralError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrWritesDisabled),
		errors.Is(err, core.ErrForbidden),
		errors.Is(err, core.ErrNotAllowlisted):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrCoachNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &serr), errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidEmail), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)
	switch {
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, errUnauthorized):
		msg = core.UserMessage{Message: "Please sign in", Action: "Sign in again to continue", Code: "AUTH001"}
	case errors.Is(err, errBadRequest):
		msg = core.UserMessage{Message: err.Error(), Action: "Check the request and try again", Code: "ERR001"}
	}

	log := logging.FromContext(r.Context())
	attrs := []any{"path", r.URL.Path, "method", r.Method, "status", status, "error", err.Error(), "code", msg.Code}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	respondErrorJSON(w, r, msg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg.Message, Action: msg.Action, Code: msg.Code}); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
