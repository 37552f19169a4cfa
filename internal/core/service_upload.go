package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JonMunkholm/entrydesk/internal/logging"
)

// UploadResult reports the outcome of a spreadsheet import.
//
// Imports commit row by row. Rejected counts validation failures, duplicates
// and rows the store refused; Errors lists them in row order, except that
// validation errors precede the per-row insert errors.
type UploadResult struct {
	ImportID string
	FileName string
	Accepted int
	Rejected int
	Errors   []string
	Athletes []Athlete
	Duration time.Duration
}

// UploadSheet imports a spreadsheet into coachID's roster.
//
// Per-row failures are reported in the result. A structural failure (file
// unreadable, required columns missing) returns the result with its single
// message together with an error matching ErrStructural.
func (s *Service) UploadSheet(ctx context.Context, actor Actor, coachID int64, filename string, data []byte) (_ *UploadResult, err error) {
	ctx, span := s.startSpan(ctx, "UploadSheet",
		attribute.Int64("coach_id", coachID),
		attribute.String("file_name", filename),
		attribute.Int("bytes", len(data)),
	)
	defer func() { endSpan(span, err) }()

	if err := s.checkWrites("upload"); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if _, err := s.requireCoach(ctx, actor, coachID); err != nil {
		return nil, err
	}

	if err := s.opts.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.opts.Limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.UploadTimeout)
	defer cancel()

	start := s.opts.Now()
	result := &UploadResult{ImportID: uuid.NewString(), FileName: filename}
	log := logging.WithFields(ctx, "import_id", result.ImportID, "coach_id", coachID, "file", filename)
	log.Info("import started")

	sheet := ProcessFile(filename, data)
	result.Errors = append(result.Errors, sheet.Errors...)

	if sheet.Structural != nil {
		result.Duration = s.opts.Now().Sub(start)
		s.opts.Metrics.ImportCompleted("structural", 0, result.Duration)
		log.Warn("import rejected", "reason", sheet.Structural.Error())
		return result, fmt.Errorf("import %s: %w", result.ImportID, sheet.Structural)
	}

	result.Rejected = len(sheet.Errors)
	for range sheet.Errors {
		s.opts.Metrics.RowRejected("validation")
	}

	scope := s.scopeFor(actor, coachID, 0)
	for i, c := range sheet.Candidates {
		if ctx.Err() != nil {
			remaining := len(sheet.Candidates) - i
			result.Rejected += remaining
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Import stopped (%s); %d remaining rows were not imported", c.Row, MapError(ctx.Err()).Message, remaining))
			break
		}

		a, err := s.register(ctx, c.Record, coachID, scope, c.Row)
		var dup *DuplicateError
		switch {
		case errors.As(err, &dup):
			result.Rejected++
			result.Errors = append(result.Errors, dup.Error())
			s.opts.Metrics.RowRejected("duplicate")
		case err != nil:
			result.Rejected++
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Error adding %s: %s", c.Row, c.Record.Name, MapError(err).Message))
			s.opts.Metrics.RowRejected("persistence")
			log.Error("row insert failed", "row", c.Row, "error", err)
		default:
			result.Accepted++
			result.Athletes = append(result.Athletes, a)
			s.opts.Metrics.AthleteRegistered("upload")
		}
	}

	result.Duration = s.opts.Now().Sub(start)
	outcome := "success"
	if result.Rejected > 0 {
		outcome = "partial"
	}
	if result.Accepted == 0 && result.Rejected > 0 {
		outcome = "rejected"
	}
	s.opts.Metrics.ImportCompleted(outcome, sheet.Rows, result.Duration)

	if result.Accepted > 0 || result.Rejected > 0 {
		s.afterWrite(ctx, actor, AuditEvent{
			Action:   ActionUpload,
			CoachID:  coachID,
			ImportID: result.ImportID,
			FileName: filename,
			Accepted: result.Accepted,
			Rejected: result.Rejected,
		})
	}
	span.SetAttributes(attribute.Int("accepted", result.Accepted), attribute.Int("rejected", result.Rejected))
	log.Info("import finished", "accepted", result.Accepted, "rejected", result.Rejected, "duration", result.Duration)
	return result, nil
}

// PreviewSheet validates a spreadsheet and flags rows that would be skipped
// as duplicates, without writing anything. Accepted athletes carry no
// unique ID. Previews stay available while registrations are closed.
func (s *Service) PreviewSheet(ctx context.Context, actor Actor, coachID int64, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if _, err := s.requireCoach(ctx, actor, coachID); err != nil {
		return nil, err
	}

	result := &UploadResult{FileName: filename}
	sheet := ProcessFile(filename, data)
	result.Errors = append(result.Errors, sheet.Errors...)
	if sheet.Structural != nil {
		return result, sheet.Structural
	}
	result.Rejected = len(sheet.Errors)

	scope := s.scopeFor(actor, coachID, 0)
	existing, err := s.store.ListAthletes(ctx, scope.CoachID)
	if err != nil {
		return nil, err
	}

	for _, c := range sheet.Candidates {
		if dup, ok := FindDuplicate(c.Record, existing, scope); ok {
			result.Rejected++
			if dup.UniqueID == 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Duplicate athlete '%s' (repeats an earlier row)", c.Row, c.Record.Name))
			} else {
				result.Errors = append(result.Errors, (&DuplicateError{Row: c.Row, Name: c.Record.Name, Existing: dup}).Error())
			}
			continue
		}
		a := Athlete{CoachID: coachID, AthleteRecord: c.Record}
		existing = append(existing, a)
		result.Accepted++
		result.Athletes = append(result.Athletes, a)
	}
	return result, nil
}
