// Package sqlite is a core.Store on a SQLite file, the default for a single
// organizer machine. Transactions begin IMMEDIATE so athlete writers are
// serialized by the database lock.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Open.
func Schema() string { return schemaSQL }

// Store implements core.Store.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_txlock=immediate&_foreign_keys=on&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = "file::memory:?_txlock=immediate&_foreign_keys=on"
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; an in-memory database only exists on its own connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the handle for the migration tool.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

type coachRow struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	GoogleID  string    `db:"google_id"`
	IsAdmin   bool      `db:"is_admin"`
	CreatedAt time.Time `db:"created_at"`
}

func (r coachRow) coach() core.Coach {
	return core.Coach{ID: r.ID, Email: r.Email, Name: r.Name, GoogleID: r.GoogleID, IsAdmin: r.IsAdmin, CreatedAt: r.CreatedAt}
}

type athleteRow struct {
	ID        int64     `db:"id"`
	UniqueID  int64     `db:"unique_id"`
	CoachID   int64     `db:"coach_id"`
	Name      string    `db:"name"`
	DOB       string    `db:"dob"`
	Dojo      string    `db:"dojo"`
	Belt      string    `db:"belt"`
	Day       string    `db:"day"`
	Gender    string    `db:"gender"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r athleteRow) athlete() core.Athlete {
	dob, _ := core.ParseDate(r.DOB)
	return core.Athlete{
		ID:       r.ID,
		UniqueID: r.UniqueID,
		CoachID:  r.CoachID,
		AthleteRecord: core.AthleteRecord{
			Name:   r.Name,
			DOB:    dob,
			Dojo:   r.Dojo,
			Belt:   core.Belt(r.Belt),
			Day:    core.Day(r.Day),
			Gender: core.Gender(r.Gender),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toAthletes(rows []athleteRow) []core.Athlete {
	out := make([]core.Athlete, len(rows))
	for i, r := range rows {
		out[i] = r.athlete()
	}
	return out
}

const (
	coachColumns   = `id, email, name, google_id, is_admin, created_at`
	athleteColumns = `id, unique_id, coach_id, name, dob, dojo, belt, day, gender, created_at, updated_at`
)

// InTx implements core.Store.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapErr(fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(&txn{tx: tx}); err != nil {
		return err
	}
	return mapErr(tx.Commit())
}

func (s *Store) GetCoach(ctx context.Context, id int64) (core.Coach, error) {
	var r coachRow
	err := s.db.GetContext(ctx, &r, `SELECT `+coachColumns+` FROM coaches WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Coach{}, core.ErrCoachNotFound
	}
	if err != nil {
		return core.Coach{}, fmt.Errorf("get coach: %w", err)
	}
	return r.coach(), nil
}

func (s *Store) GetCoachByEmail(ctx context.Context, email string) (core.Coach, error) {
	var r coachRow
	err := s.db.GetContext(ctx, &r, `SELECT `+coachColumns+` FROM coaches WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Coach{}, core.ErrCoachNotFound
	}
	if err != nil {
		return core.Coach{}, fmt.Errorf("get coach: %w", err)
	}
	return r.coach(), nil
}

func (s *Store) CreateCoach(ctx context.Context, c core.Coach) (core.Coach, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO coaches (email, name, google_id, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.Email, c.Name, c.GoogleID, c.IsAdmin, c.CreatedAt)
	if err != nil {
		return core.Coach{}, mapErr(err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Coach{}, err
	}
	return c, nil
}

func (s *Store) SetCoachAdmin(ctx context.Context, id int64, admin bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE coaches SET is_admin = ? WHERE id = ?`, admin, id)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrCoachNotFound
	}
	return nil
}

func (s *Store) ListCoaches(ctx context.Context) ([]core.Coach, error) {
	var rows []coachRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+coachColumns+` FROM coaches ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	out := make([]core.Coach, len(rows))
	for i, r := range rows {
		out[i] = r.coach()
	}
	return out, nil
}

func (s *Store) GetAthlete(ctx context.Context, id int64) (core.Athlete, error) {
	return getAthlete(ctx, s.db, id)
}

func (s *Store) ListAthletes(ctx context.Context, coachID int64) ([]core.Athlete, error) {
	var rows []athleteRow
	var err error
	if coachID == 0 {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+athleteColumns+` FROM athletes ORDER BY unique_id`)
	} else {
		err = s.db.SelectContext(ctx, &rows, `SELECT `+athleteColumns+` FROM athletes WHERE coach_id = ? ORDER BY unique_id`, coachID)
	}
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	return toAthletes(rows), nil
}

func (s *Store) DeleteAthlete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM athletes WHERE id = ?`, id)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func getAthlete(ctx context.Context, q sqlx.QueryerContext, id int64) (core.Athlete, error) {
	var r athleteRow
	err := sqlx.GetContext(ctx, q, &r, `SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Athlete{}, core.ErrNotFound
	}
	if err != nil {
		return core.Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	return r.athlete(), nil
}

// txn implements core.Tx.
type txn struct {
	tx *sqlx.Tx
}

func (t *txn) AthletesByDOB(ctx context.Context, dob time.Time, coachID int64) ([]core.Athlete, error) {
	query := `SELECT ` + athleteColumns + ` FROM athletes WHERE dob = ?`
	args := []any{core.FormatDate(dob)}
	if coachID != 0 {
		query += ` AND coach_id = ?`
		args = append(args, coachID)
	}
	var rows []athleteRow
	if err := t.tx.SelectContext(ctx, &rows, query+` ORDER BY unique_id`, args...); err != nil {
		return nil, err
	}
	return toAthletes(rows), nil
}

func (t *txn) MaxUniqueID(ctx context.Context) (int64, error) {
	var maxID int64
	err := t.tx.GetContext(ctx, &maxID, `SELECT COALESCE(MAX(unique_id), 0) FROM athletes`)
	return maxID, err
}

func (t *txn) InsertAthlete(ctx context.Context, a core.Athlete) (core.Athlete, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO athletes (unique_id, coach_id, name, dob, dojo, belt, day, gender, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UniqueID, a.CoachID, a.Name, core.FormatDate(a.DOB), a.Dojo,
		string(a.Belt), string(a.Day), string(a.Gender), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return core.Athlete{}, mapErr(err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return core.Athlete{}, err
	}
	return a, nil
}

func (t *txn) GetAthlete(ctx context.Context, id int64) (core.Athlete, error) {
	return getAthlete(ctx, t.tx, id)
}

func (t *txn) UpdateAthlete(ctx context.Context, a core.Athlete) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE athletes SET name = ?, dob = ?, dojo = ?, belt = ?, day = ?, gender = ?, updated_at = ? WHERE id = ?`,
		a.Name, core.FormatDate(a.DOB), a.Dojo, string(a.Belt), string(a.Day), string(a.Gender), a.UpdatedAt, a.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// mapErr translates constraint violations into core sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		switch {
		case strings.Contains(serr.Error(), "athletes.unique_id"):
			return fmt.Errorf("%w: %v", core.ErrUniqueIDConflict, err)
		case strings.Contains(serr.Error(), "coaches.email"):
			return core.ErrCoachExists
		}
	}
	return err
}
