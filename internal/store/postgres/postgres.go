// Package postgres is a core.Store on PostgreSQL for hosted deployments.
//
// Athlete transactions take a SHARE ROW EXCLUSIVE lock on the athletes table,
// which conflicts with itself, so the duplicate check and unique-ID
// allocation of concurrent writers never interleave. Readers are not blocked.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string { return schemaSQL }

const uniqueViolation = "23505"

// Store implements core.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects with the pool settings from cfg and applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. Call Migrate before first use.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the connection pool for the migration tool and tests.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type coachRow struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	GoogleID  string    `db:"google_id"`
	IsAdmin   bool      `db:"is_admin"`
	CreatedAt time.Time `db:"created_at"`
}

type athleteRow struct {
	ID        int64     `db:"id"`
	UniqueID  int64     `db:"unique_id"`
	CoachID   int64     `db:"coach_id"`
	Name      string    `db:"name"`
	DOB       time.Time `db:"dob"`
	Dojo      string    `db:"dojo"`
	Belt      string    `db:"belt"`
	Day       string    `db:"day"`
	Gender    string    `db:"gender"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r coachRow) coach() core.Coach {
	return core.Coach{ID: r.ID, Email: r.Email, Name: r.Name, GoogleID: r.GoogleID, IsAdmin: r.IsAdmin, CreatedAt: r.CreatedAt.UTC()}
}

func (r athleteRow) athlete() core.Athlete {
	return core.Athlete{
		ID:       r.ID,
		UniqueID: r.UniqueID,
		CoachID:  r.CoachID,
		AthleteRecord: core.AthleteRecord{
			Name:   r.Name,
			DOB:    time.Date(r.DOB.Year(), r.DOB.Month(), r.DOB.Day(), 0, 0, 0, 0, time.UTC),
			Dojo:   r.Dojo,
			Belt:   core.Belt(r.Belt),
			Day:    core.Day(r.Day),
			Gender: core.Gender(r.Gender),
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

const (
	coachColumns   = `id, email, name, google_id, is_admin, created_at`
	athleteColumns = `id, unique_id, coach_id, name, dob, dojo, belt, day, gender, created_at, updated_at`
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func queryAthletes(ctx context.Context, q querier, sql string, args ...any) ([]core.Athlete, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[athleteRow])
	if err != nil {
		return nil, err
	}
	out := make([]core.Athlete, len(list))
	for i, r := range list {
		out[i] = r.athlete()
	}
	return out, nil
}

func getAthlete(ctx context.Context, q querier, id int64) (core.Athlete, error) {
	rows, err := q.Query(ctx, `SELECT `+athleteColumns+` FROM athletes WHERE id = $1`, id)
	if err != nil {
		return core.Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[athleteRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Athlete{}, core.ErrNotFound
	}
	if err != nil {
		return core.Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	return r.athlete(), nil
}

func (s *Store) getCoach(ctx context.Context, where string, arg any) (core.Coach, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+coachColumns+` FROM coaches WHERE `+where+` = $1`, arg)
	if err != nil {
		return core.Coach{}, fmt.Errorf("get coach: %w", err)
	}
	r, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[coachRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Coach{}, core.ErrCoachNotFound
	}
	if err != nil {
		return core.Coach{}, fmt.Errorf("get coach: %w", err)
	}
	return r.coach(), nil
}

// InTx implements core.Store.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE athletes IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock athletes: %w", err)
		}
		return fn(&txn{tx: tx})
	})
}

func (s *Store) GetCoach(ctx context.Context, id int64) (core.Coach, error) {
	return s.getCoach(ctx, "id", id)
}

func (s *Store) GetCoachByEmail(ctx context.Context, email string) (core.Coach, error) {
	return s.getCoach(ctx, "email", email)
}

func (s *Store) CreateCoach(ctx context.Context, c core.Coach) (core.Coach, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO coaches (email, name, google_id, is_admin, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.Email, c.Name, c.GoogleID, c.IsAdmin, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return core.Coach{}, mapErr(err)
	}
	return c, nil
}

func (s *Store) SetCoachAdmin(ctx context.Context, id int64, admin bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE coaches SET is_admin = $1 WHERE id = $2`, admin, id)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrCoachNotFound
	}
	return nil
}

func (s *Store) ListCoaches(ctx context.Context) ([]core.Coach, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+coachColumns+` FROM coaches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[coachRow])
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	out := make([]core.Coach, len(list))
	for i, r := range list {
		out[i] = r.coach()
	}
	return out, nil
}

func (s *Store) GetAthlete(ctx context.Context, id int64) (core.Athlete, error) {
	return getAthlete(ctx, s.pool, id)
}

func (s *Store) ListAthletes(ctx context.Context, coachID int64) ([]core.Athlete, error) {
	var (
		list []core.Athlete
		err  error
	)
	if coachID == 0 {
		list, err = queryAthletes(ctx, s.pool, `SELECT `+athleteColumns+` FROM athletes ORDER BY unique_id`)
	} else {
		list, err = queryAthletes(ctx, s.pool, `SELECT `+athleteColumns+` FROM athletes WHERE coach_id = $1 ORDER BY unique_id`, coachID)
	}
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	return list, nil
}

func (s *Store) DeleteAthlete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM athletes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete athlete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// txn implements core.Tx.
type txn struct {
	tx pgx.Tx
}

func (t *txn) AthletesByDOB(ctx context.Context, dob time.Time, coachID int64) ([]core.Athlete, error) {
	if coachID == 0 {
		return queryAthletes(ctx, t.tx, `SELECT `+athleteColumns+` FROM athletes WHERE dob = $1 ORDER BY unique_id`, dob)
	}
	return queryAthletes(ctx, t.tx, `SELECT `+athleteColumns+` FROM athletes WHERE dob = $1 AND coach_id = $2 ORDER BY unique_id`, dob, coachID)
}

func (t *txn) MaxUniqueID(ctx context.Context) (int64, error) {
	var maxID int64
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(MAX(unique_id), 0) FROM athletes`).Scan(&maxID)
	return maxID, err
}

func (t *txn) InsertAthlete(ctx context.Context, a core.Athlete) (core.Athlete, error) {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO athletes (unique_id, coach_id, name, dob, dojo, belt, day, gender, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		a.UniqueID, a.CoachID, a.Name, a.DOB, a.Dojo,
		string(a.Belt), string(a.Day), string(a.Gender), a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		return core.Athlete{}, mapErr(err)
	}
	return a, nil
}

func (t *txn) GetAthlete(ctx context.Context, id int64) (core.Athlete, error) {
	return getAthlete(ctx, t.tx, id)
}

func (t *txn) UpdateAthlete(ctx context.Context, a core.Athlete) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE athletes SET name = $1, dob = $2, dojo = $3, belt = $4, day = $5, gender = $6, updated_at = $7 WHERE id = $8`,
		a.Name, a.DOB, a.Dojo, string(a.Belt), string(a.Day), string(a.Gender), a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update athlete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// mapErr translates unique violations into core sentinels.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "athletes_unique_id_key":
			return fmt.Errorf("%w: %v", core.ErrUniqueIDConflict, err)
		case "coaches_email_key":
			return core.ErrCoachExists
		}
	}
	return err
}
