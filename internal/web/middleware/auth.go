package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/entrydesk/internal/logging"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "entrydesk_session"

// Verifier checks a session token and returns the request context to continue
// with, typically carrying the signed-in coach.
type Verifier func(r *http.Request, token string) (context.Context, error)

// Authenticate rejects requests without a valid session token. The token is
// read from "Authorization: Bearer" or, failing that, the session cookie.
func Authenticate(verify Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, r, "missing session token")
				return
			}

			ctx, err := verify(r, token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth: token rejected",
					"path", r.URL.Path,
					"ip", ClientIP(r),
					"error", err,
				)
				unauthorized(w, r, "invalid session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the session token from the request.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	logging.FromContext(r.Context()).Debug("auth: unauthorized", "reason", reason)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="entrydesk"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":  "Please sign in",
		"action": "Sign in again to continue",
		"code":   "AUTH001",
	})
}
