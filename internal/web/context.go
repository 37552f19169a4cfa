package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
	"github.com/JonMunkholm/entrydesk/internal/web/middleware"
)

type ctxKey int

const coachKey ctxKey = iota

// withCoach stores the signed-in coach and tags request logs with it.
func withCoach(ctx context.Context, c core.Coach) context.Context {
	ctx = context.WithValue(ctx, coachKey, c)
	return logging.ContextWith(ctx, "coach_id", c.ID)
}

// coachFrom returns the signed-in coach. Authenticated routes always have one.
func coachFrom(ctx context.Context) core.Coach {
	c, _ := ctx.Value(coachKey).(core.Coach)
	return c
}

// withRequestMetadata adds the client address and user agent for audit events.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, middleware.ClientIP(r), r.UserAgent())
}

// authenticate verifies the session token and loads the coach it names.
// Admin rights come from the stored coach, not from the token.
func (s *Server) authenticate(r *http.Request, token string) (context.Context, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	coach, err := s.service.GetCoach(r.Context(), claims.CoachID)
	if err != nil {
		return nil, errUnauthorized
	}
	coach.IsAdmin = s.service.ActorFor(coach).Admin
	return withRequestMetadata(withCoach(r.Context(), coach), r), nil
}
