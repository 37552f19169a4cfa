package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonMunkholm/entrydesk/internal/logging"
)

// maxAllocRetries bounds how often a registration is retried after a
// concurrent writer took the same unique ID.
const maxAllocRetries = 3

// Recorder receives domain metrics. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	AthleteRegistered(source string)
	RowRejected(reason string)
	ImportCompleted(outcome string, rows int, d time.Duration)
	WriteRejected(op string)
}

type nopRecorder struct{}

func (nopRecorder) AthleteRegistered(string)                   {}
func (nopRecorder) RowRejected(string)                         {}
func (nopRecorder) ImportCompleted(string, int, time.Duration) {}
func (nopRecorder) WriteRejected(string)                       {}

// Options configures a Service. Nil collaborators are replaced by no-ops.
type Options struct {
	WritesEnabled bool
	DedupMode     DedupMode
	// GlobalCoachScope makes coach-initiated duplicate checks span every
	// roster. Admin-initiated checks are always global.
	GlobalCoachScope bool
	Access           AccessPolicy

	ShowTimer bool
	ClosesAt  *time.Time

	Limiter       *UploadLimiter
	UploadTimeout time.Duration

	Audit    AuditPublisher
	Metrics  Recorder
	Cache    StatsCache
	StatsTTL time.Duration

	Now func() time.Time
}

// Service provides every roster operation. It is safe for concurrent use.
type Service struct {
	store  Store
	opts   Options
	writes atomic.Bool
	tracer trace.Tracer

	// statsGen counts roster writes; Stats caches only if it did not move
	// while the totals were computed.
	statsGen atomic.Uint64
}

// NewService creates a Service backed by store.
func NewService(store Store, opts Options) *Service {
	if opts.DedupMode == "" {
		opts.DedupMode = DedupNameDOBDojo
	}
	if opts.Limiter == nil {
		opts.Limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 5 * time.Minute
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Service{
		store:  store,
		opts:   opts,
		tracer: otel.Tracer("github.com/JonMunkholm/entrydesk/internal/core"),
	}
	s.writes.Store(opts.WritesEnabled)
	return s
}

// Limiter exposes the import limiter for shutdown draining and health checks.
func (s *Service) Limiter() *UploadLimiter { return s.opts.Limiter }

// WritesEnabled reports whether registrations are open.
func (s *Service) WritesEnabled() bool { return s.writes.Load() }

// SetWritesEnabled opens or closes registrations.
func (s *Service) SetWritesEnabled(enabled bool) { s.writes.Store(enabled) }

// Registration returns the banner state at the current time.
func (s *Service) Registration() RegistrationStatus {
	status := RegistrationStatus{WritesEnabled: s.WritesEnabled()}
	if s.opts.ShowTimer && s.opts.ClosesAt != nil {
		c := CountdownAt(*s.opts.ClosesAt, s.opts.Now())
		status.Countdown = &c
	}
	return status
}

func (s *Service) checkWrites(op string) error {
	if !s.writes.Load() {
		s.opts.Metrics.WriteRejected(op)
		return ErrWritesDisabled
	}
	return nil
}

func (s *Service) scopeFor(actor Actor, coachID, excludeID int64) DuplicateScope {
	scope := DuplicateScope{Mode: s.opts.DedupMode, ExcludeID: excludeID}
	if !actor.Admin && !s.opts.GlobalCoachScope {
		scope.CoachID = coachID
	}
	return scope
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "core."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// register checks for a duplicate, allocates the next unique ID and inserts
// the athlete in one transaction. A unique-ID race is retried.
func (s *Service) register(ctx context.Context, rec AthleteRecord, coachID int64, scope DuplicateScope, row int) (Athlete, error) {
	for attempt := 0; ; attempt++ {
		var created Athlete
		err := s.store.InTx(ctx, func(tx Tx) error {
			existing, err := tx.AthletesByDOB(ctx, rec.DOB, scope.CoachID)
			if err != nil {
				return fmt.Errorf("load athletes: %w", err)
			}
			if dup, ok := FindDuplicate(rec, existing, scope); ok {
				return &DuplicateError{Row: row, Name: rec.Name, Existing: dup}
			}

			maxID, err := tx.MaxUniqueID(ctx)
			if err != nil {
				return fmt.Errorf("read max unique id: %w", err)
			}

			now := s.opts.Now().UTC()
			created, err = tx.InsertAthlete(ctx, Athlete{
				UniqueID:      NextID(maxID),
				CoachID:       coachID,
				AthleteRecord: rec,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			return err
		})
		if errors.Is(err, ErrUniqueIDConflict) && attempt < maxAllocRetries {
			logging.FromContext(ctx).Debug("unique id taken, retrying", "attempt", attempt+1)
			continue
		}
		return created, err
	}
}

func (s *Service) requireCoach(ctx context.Context, actor Actor, coachID int64) (Coach, error) {
	if !actor.CanAccess(coachID) {
		return Coach{}, ErrForbidden
	}
	coach, err := s.store.GetCoach(ctx, coachID)
	if err != nil {
		return Coach{}, err
	}
	return coach, nil
}

// CreateAthlete registers one athlete for coachID.
func (s *Service) CreateAthlete(ctx context.Context, actor Actor, coachID int64, in AthleteInput) (_ Athlete, err error) {
	ctx, span := s.startSpan(ctx, "CreateAthlete", attribute.Int64("coach_id", coachID))
	defer func() { endSpan(span, err) }()

	if err := s.checkWrites("create"); err != nil {
		return Athlete{}, err
	}
	if _, err := s.requireCoach(ctx, actor, coachID); err != nil {
		return Athlete{}, err
	}

	rec, err := ValidateInput(in)
	if err != nil {
		s.opts.Metrics.RowRejected("validation")
		return Athlete{}, err
	}

	a, err := s.register(ctx, rec, coachID, s.scopeFor(actor, coachID, 0), 0)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.opts.Metrics.RowRejected("duplicate")
		}
		return Athlete{}, err
	}

	s.opts.Metrics.AthleteRegistered("manual")
	s.afterWrite(ctx, actor, AuditEvent{Action: ActionAthleteCreate, CoachID: coachID, AthleteID: a.ID, UniqueID: a.UniqueID})
	logging.FromContext(ctx).Info("athlete registered", "unique_id", a.UniqueID, "coach_id", coachID)
	return a, nil
}

// UpdateAthlete replaces the fields of an existing athlete. The unique ID
// and owner never change.
func (s *Service) UpdateAthlete(ctx context.Context, actor Actor, id int64, in AthleteInput) (_ Athlete, err error) {
	ctx, span := s.startSpan(ctx, "UpdateAthlete", attribute.Int64("athlete_id", id))
	defer func() { endSpan(span, err) }()

	if err := s.checkWrites("update"); err != nil {
		return Athlete{}, err
	}
	rec, err := ValidateInput(in)
	if err != nil {
		return Athlete{}, err
	}

	var updated Athlete
	err = s.store.InTx(ctx, func(tx Tx) error {
		cur, err := tx.GetAthlete(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(cur.CoachID) {
			return ErrNotFound
		}

		scope := s.scopeFor(actor, cur.CoachID, cur.ID)
		existing, err := tx.AthletesByDOB(ctx, rec.DOB, scope.CoachID)
		if err != nil {
			return fmt.Errorf("load athletes: %w", err)
		}
		if dup, ok := FindDuplicate(rec, existing, scope); ok {
			return &DuplicateError{Name: rec.Name, Existing: dup}
		}

		cur.AthleteRecord = rec
		cur.UpdatedAt = s.opts.Now().UTC()
		if err := tx.UpdateAthlete(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return Athlete{}, err
	}

	s.afterWrite(ctx, actor, AuditEvent{Action: ActionAthleteUpdate, CoachID: updated.CoachID, AthleteID: updated.ID, UniqueID: updated.UniqueID})
	return updated, nil
}

// DeleteAthlete removes an athlete permanently.
func (s *Service) DeleteAthlete(ctx context.Context, actor Actor, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteAthlete", attribute.Int64("athlete_id", id))
	defer func() { endSpan(span, err) }()

	if err := s.checkWrites("delete"); err != nil {
		return err
	}

	a, err := s.store.GetAthlete(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(a.CoachID) {
		return ErrNotFound
	}
	if err := s.store.DeleteAthlete(ctx, id); err != nil {
		return err
	}

	s.afterWrite(ctx, actor, AuditEvent{Action: ActionAthleteDelete, CoachID: a.CoachID, AthleteID: a.ID, UniqueID: a.UniqueID})
	logging.FromContext(ctx).Info("athlete deleted", "unique_id", a.UniqueID, "coach_id", a.CoachID)
	return nil
}

// DeleteAthletes removes several athletes and returns how many were deleted.
// Unknown IDs are skipped.
func (s *Service) DeleteAthletes(ctx context.Context, actor Actor, ids []int64) (int, error) {
	if err := s.checkWrites("delete"); err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		err := s.DeleteAthlete(ctx, actor, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// GetAthlete returns one athlete visible to actor.
func (s *Service) GetAthlete(ctx context.Context, actor Actor, id int64) (Athlete, error) {
	a, err := s.store.GetAthlete(ctx, id)
	if err != nil {
		return Athlete{}, err
	}
	if !actor.CanAccess(a.CoachID) {
		return Athlete{}, ErrNotFound
	}
	return a, nil
}

// ListAthletes returns a coach's athletes ordered by unique ID.
func (s *Service) ListAthletes(ctx context.Context, coachID int64) ([]Athlete, error) {
	return s.store.ListAthletes(ctx, coachID)
}

// SearchAthletes returns one page of the roster visible to actor.
func (s *Service) SearchAthletes(ctx context.Context, actor Actor, f AthleteFilter) (AthletePage, error) {
	if !actor.Admin {
		f.CoachID = actor.CoachID
	}
	list, err := s.store.ListAthletes(ctx, f.CoachID)
	if err != nil {
		return AthletePage{}, err
	}
	return Paginate(FilterAthletes(list, f), f.Page), nil
}

// Stats aggregates the roster visible to actor.
func (s *Service) Stats(ctx context.Context, actor Actor) (_ *Stats, err error) {
	ctx, span := s.startSpan(ctx, "Stats", attribute.Bool("admin", actor.Admin))
	defer func() { endSpan(span, err) }()

	key := "coach:" + strconv.FormatInt(actor.CoachID, 10)
	if actor.Admin {
		key = "all"
	}
	gen := s.statsGen.Load()
	if s.opts.Cache != nil {
		if cached, ok := s.opts.Cache.GetStats(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	var stats Stats
	if actor.Admin {
		athletes, err := s.store.ListAthletes(ctx, 0)
		if err != nil {
			return nil, err
		}
		coaches, err := s.store.ListCoaches(ctx)
		if err != nil {
			return nil, err
		}
		stats = ComputeStats(athletes, coaches)
	} else {
		athletes, err := s.store.ListAthletes(ctx, actor.CoachID)
		if err != nil {
			return nil, err
		}
		stats = ComputeStats(athletes, nil)
	}

	if s.opts.Cache != nil && s.statsGen.Load() == gen {
		s.opts.Cache.SetStats(ctx, key, &stats, s.opts.StatsTTL)
	}
	return &stats, nil
}

// Export writes the roster visible to actor. Organizers get every athlete
// and a Coach column.
func (s *Service) Export(ctx context.Context, w io.Writer, actor Actor, format Format) error {
	if !actor.Admin {
		athletes, err := s.store.ListAthletes(ctx, actor.CoachID)
		if err != nil {
			return err
		}
		return WriteExport(w, athletes, ExportOptions{Format: format})
	}

	athletes, err := s.store.ListAthletes(ctx, 0)
	if err != nil {
		return err
	}
	coaches, err := s.store.ListCoaches(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]Coach, len(coaches))
	for _, c := range coaches {
		byID[c.ID] = c
	}
	return WriteExport(w, athletes, ExportOptions{Format: format, Coaches: byID})
}

// Template writes the blank upload template.
func (s *Service) Template(w io.Writer, format Format) error {
	return WriteTemplate(w, format)
}

// afterWrite drops cached statistics and publishes the audit event.
func (s *Service) afterWrite(ctx context.Context, actor Actor, e AuditEvent) {
	s.statsGen.Add(1)
	if s.opts.Cache != nil {
		s.opts.Cache.InvalidateStats(ctx)
	}
	if s.opts.Audit == nil {
		return
	}

	e.ID = uuid.NewString()
	e.Severity = SeverityFor(e.Action)
	e.ActorID = actor.CoachID
	e.Admin = actor.Admin
	e.IPAddress, e.UserAgent = clientFromContext(ctx)
	e.CreatedAt = s.opts.Now().UTC()

	if err := s.opts.Audit.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("audit publish failed", "action", e.Action, "error", err)
	}
}
