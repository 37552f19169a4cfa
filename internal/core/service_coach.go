package core

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidEmail is returned when a sign-in carries no usable email.
var ErrInvalidEmail = errors.New("a valid email is required")

// SignIn returns the coach for email, creating it on first sign-in.
// Admin status is the stored flag or membership in the admin list.
func (s *Service) SignIn(ctx context.Context, email, name, googleID string) (Coach, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return Coach{}, ErrInvalidEmail
	}
	if !s.opts.Access.Allowed(email) {
		return Coach{}, ErrNotAllowlisted
	}

	coach, err := s.store.GetCoachByEmail(ctx, email)
	if errors.Is(err, ErrCoachNotFound) {
		if strings.TrimSpace(name) == "" {
			name = email[:strings.Index(email, "@")]
		}
		coach, err = s.store.CreateCoach(ctx, Coach{
			Email:     email,
			Name:      strings.TrimSpace(name),
			GoogleID:  googleID,
			IsAdmin:   s.opts.Access.IsAdmin(email),
			CreatedAt: s.opts.Now().UTC(),
		})
		if errors.Is(err, ErrCoachExists) {
			coach, err = s.store.GetCoachByEmail(ctx, email)
		} else if err == nil {
			s.afterWrite(ctx, Actor{CoachID: coach.ID}, AuditEvent{Action: ActionCoachCreate, CoachID: coach.ID})
		}
	}
	if err != nil {
		return Coach{}, err
	}

	coach.IsAdmin = coach.IsAdmin || s.opts.Access.IsAdmin(coach.Email)
	return coach, nil
}

// ActorFor returns the actor acting as coach.
func (s *Service) ActorFor(coach Coach) Actor {
	return Actor{CoachID: coach.ID, Admin: coach.IsAdmin || s.opts.Access.IsAdmin(coach.Email)}
}

// GetCoach returns a coach by ID.
func (s *Service) GetCoach(ctx context.Context, id int64) (Coach, error) {
	return s.store.GetCoach(ctx, id)
}

// CoachByEmail returns a coach by email.
func (s *Service) CoachByEmail(ctx context.Context, email string) (Coach, error) {
	return s.store.GetCoachByEmail(ctx, NormalizeEmail(email))
}

// ListCoaches returns every coach. Organizers only.
func (s *Service) ListCoaches(ctx context.Context, actor Actor) ([]Coach, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}
	return s.store.ListCoaches(ctx)
}

// SetCoachAdmin grants or revokes organizer rights. Organizers only.
func (s *Service) SetCoachAdmin(ctx context.Context, actor Actor, email string, admin bool) (Coach, error) {
	if !actor.Admin {
		return Coach{}, ErrForbidden
	}
	coach, err := s.store.GetCoachByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return Coach{}, err
	}
	if err := s.store.SetCoachAdmin(ctx, coach.ID, admin); err != nil {
		return Coach{}, err
	}
	coach.IsAdmin = admin

	s.afterWrite(ctx, actor, AuditEvent{Action: ActionCoachPromote, CoachID: coach.ID})
	return coach, nil
}
