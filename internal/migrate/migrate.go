// Package migrate copies a SQLite roster into PostgreSQL.
//
// Coaches are matched by email and athletes by unique ID; rows that already
// exist in the target are skipped, so a migration can be re-run safely.
// Athletes are re-linked to their coach through the coach's email because
// row IDs differ between the two databases. Before importing, the source is
// written to a JSON backup file.
package migrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/JonMunkholm/entrydesk/internal/store/postgres"
)

// CoachRecord is a coach as stored in the backup file.
type CoachRecord struct {
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	GoogleID  string    `json:"google_id" db:"google_id"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AthleteRecord is an athlete as stored in the backup file. The owning
// coach is identified by email.
type AthleteRecord struct {
	UniqueID   int64     `json:"unique_id" db:"unique_id"`
	Name       string    `json:"name" db:"name"`
	DOB        string    `json:"dob" db:"dob"`
	Dojo       string    `json:"dojo" db:"dojo"`
	Belt       string    `json:"belt" db:"belt"`
	Day        string    `json:"day" db:"day"`
	Gender     string    `json:"gender" db:"gender"`
	CoachEmail string    `json:"coach_email" db:"coach_email"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Backup is the full export of a source database.
type Backup struct {
	Coaches    []CoachRecord   `json:"coaches"`
	Athletes   []AthleteRecord `json:"athletes"`
	ExportedAt time.Time       `json:"exported_at"`
	Source     string          `json:"source"`
}

// Report summarizes an import.
type Report struct {
	BackupPath       string
	CoachesImported  int
	CoachesSkipped   int
	AthletesImported int
	AthletesSkipped  int
	// AthletesOrphaned counts athletes whose coach email was not found.
	AthletesOrphaned int
}

// Export reads every coach and athlete from src.
func Export(ctx context.Context, src *sqlx.DB) (*Backup, error) {
	b := &Backup{ExportedAt: time.Now().UTC(), Source: src.DriverName()}

	if err := src.SelectContext(ctx, &b.Coaches,
		`SELECT email, name, google_id, is_admin, created_at FROM coaches ORDER BY id`); err != nil {
		return nil, fmt.Errorf("export coaches: %w", err)
	}
	if err := src.SelectContext(ctx, &b.Athletes,
		`SELECT a.unique_id, a.name, a.dob, a.dojo, a.belt, a.day, a.gender,
		        c.email AS coach_email, a.created_at, a.updated_at
		   FROM athletes a JOIN coaches c ON c.id = a.coach_id
		  ORDER BY a.unique_id`); err != nil {
		return nil, fmt.Errorf("export athletes: %w", err)
	}
	return b, nil
}

// WriteBackup writes b as indented JSON into dir and returns the file path.
func WriteBackup(dir string, b *Backup) (string, error) {
	name := fmt.Sprintf("migration_backup_%s.json", b.ExportedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

// ReadBackup loads a backup written by WriteBackup.
func ReadBackup(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse backup %s: %w", path, err)
	}
	return &b, nil
}

// OpenPostgres connects to the migration target and creates the schema.
func OpenPostgres(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgres.Schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// Import writes b into dst in a single transaction.
func Import(ctx context.Context, dst *sqlx.DB, b *Backup, log *slog.Logger) (_ Report, err error) {
	var rep Report

	tx, err := dst.BeginTxx(ctx, nil)
	if err != nil {
		return rep, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Warn("migrate: rollback failed", "error", rbErr)
			}
		}
	}()

	coachIDs := make(map[string]int64, len(b.Coaches))
	for _, c := range b.Coaches {
		var id int64
		err := tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM coaches WHERE email = ?`), c.Email)
		switch {
		case err == nil:
			coachIDs[c.Email] = id
			rep.CoachesSkipped++
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return rep, fmt.Errorf("look up coach %s: %w", c.Email, err)
		}

		err = tx.GetContext(ctx, &id, tx.Rebind(
			`INSERT INTO coaches (email, name, google_id, is_admin, created_at)
			 VALUES (?, ?, ?, ?, ?) RETURNING id`),
			c.Email, c.Name, c.GoogleID, c.IsAdmin, c.CreatedAt)
		if err != nil {
			return rep, fmt.Errorf("insert coach %s: %w", c.Email, err)
		}
		coachIDs[c.Email] = id
		rep.CoachesImported++
	}

	for _, a := range b.Athletes {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM athletes WHERE unique_id = ?`), a.UniqueID)
		if err != nil {
			return rep, fmt.Errorf("look up athlete %d: %w", a.UniqueID, err)
		}
		if exists > 0 {
			rep.AthletesSkipped++
			continue
		}

		coachID, ok := coachIDs[a.CoachEmail]
		if !ok {
			log.Warn("migrate: coach not found for athlete, skipping", "unique_id", a.UniqueID, "coach_email", a.CoachEmail)
			rep.AthletesOrphaned++
			continue
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO athletes (unique_id, coach_id, name, dob, dojo, belt, day, gender, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			a.UniqueID, coachID, a.Name, a.DOB, a.Dojo, a.Belt, a.Day, a.Gender, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return rep, fmt.Errorf("insert athlete %d: %w", a.UniqueID, err)
		}
		rep.AthletesImported++
	}

	if err := tx.Commit(); err != nil {
		return rep, err
	}
	return rep, nil
}

// Run exports src, writes the backup into backupDir and imports into dst.
func Run(ctx context.Context, src, dst *sqlx.DB, backupDir string, log *slog.Logger) (Report, error) {
	b, err := Export(ctx, src)
	if err != nil {
		return Report{}, err
	}
	log.Info("migrate: exported source", "coaches", len(b.Coaches), "athletes", len(b.Athletes))

	path, err := WriteBackup(backupDir, b)
	if err != nil {
		return Report{}, err
	}
	log.Info("migrate: backup saved", "path", path)

	rep, err := Import(ctx, dst, b, log)
	rep.BackupPath = path
	if err != nil {
		return rep, err
	}
	log.Info("migrate: import finished",
		"coaches_imported", rep.CoachesImported,
		"coaches_skipped", rep.CoachesSkipped,
		"athletes_imported", rep.AthletesImported,
		"athletes_skipped", rep.AthletesSkipped,
		"athletes_orphaned", rep.AthletesOrphaned,
	)
	return rep, nil
}
