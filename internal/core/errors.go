package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWritesDisabled is returned by every mutating operation while
	// registrations are closed.
	ErrWritesDisabled = errors.New("registrations are closed")

	// ErrNotFound is returned when an athlete does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("athlete not found")

	// ErrCoachNotFound is returned when the owning coach does not exist.
	ErrCoachNotFound = errors.New("coach not found")

	// ErrCoachExists is returned by stores when a coach email is taken.
	ErrCoachExists = errors.New("coach already exists")

	// ErrForbidden is returned when the actor may not act on another coach's roster.
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicate matches every *DuplicateError.
	ErrDuplicate = errors.New("duplicate athlete")

	// ErrUniqueIDConflict is returned by stores when the allocated unique ID
	// was taken by a concurrent transaction. The caller retries.
	ErrUniqueIDConflict = errors.New("unique id conflict")

	// ErrStructural matches every *StructuralError.
	ErrStructural = errors.New("spreadsheet structure")

	// ErrNoFile is returned when an upload carries no bytes.
	ErrNoFile = errors.New("no file provided")
)

// DuplicateError reports that a candidate matches an existing registration.
type DuplicateError struct {
	Row      int // Display row number; 0 for manual entries
	Name     string
	Existing Athlete
}

func (e *DuplicateError) Error() string {
	msg := fmt.Sprintf("Duplicate athlete '%s' (ID: %d)", e.Name, e.Existing.UniqueID)
	if e.Row > 0 {
		return fmt.Sprintf("Row %d: %s", e.Row, msg)
	}
	return msg
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// StructuralError aborts a whole import: the file could not be read or
// required columns are missing.
type StructuralError struct {
	Missing []string // Missing column keys, in required order
	Cause   error    // Read failure
}

func (e *StructuralError) Error() string {
	if len(e.Missing) > 0 {
		return "Missing required columns: " + strings.Join(e.Missing, ", ")
	}
	if e.Cause == nil {
		return "Error reading spreadsheet"
	}
	return "Error reading spreadsheet: " + e.Cause.Error()
}

func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

func (e *StructuralError) Unwrap() error { return e.Cause }
