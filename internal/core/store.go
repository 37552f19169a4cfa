package core

import (
	"context"
	"time"
)

// Store persists coaches and athletes. Implementations live under
// internal/store.
//
// Athlete lists are always ordered by UniqueID ascending.
type Store interface {
	// InTx runs fn in a transaction that serializes athlete writers.
	// The transaction commits when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetCoach(ctx context.Context, id int64) (Coach, error)
	GetCoachByEmail(ctx context.Context, email string) (Coach, error)
	CreateCoach(ctx context.Context, c Coach) (Coach, error)
	SetCoachAdmin(ctx context.Context, id int64, admin bool) error
	ListCoaches(ctx context.Context) ([]Coach, error)

	GetAthlete(ctx context.Context, id int64) (Athlete, error)
	// ListAthletes returns one coach's athletes, or all when coachID is 0.
	ListAthletes(ctx context.Context, coachID int64) ([]Athlete, error)
	DeleteAthlete(ctx context.Context, id int64) error

	Close() error
}

// Tx is the write side of a Store transaction.
type Tx interface {
	// AthletesByDOB returns athletes born on dob, restricted to coachID
	// unless it is 0.
	AthletesByDOB(ctx context.Context, dob time.Time, coachID int64) ([]Athlete, error)
	MaxUniqueID(ctx context.Context) (int64, error)
	// InsertAthlete stores a and returns it with ID set. It returns
	// ErrUniqueIDConflict when a.UniqueID is taken.
	InsertAthlete(ctx context.Context, a Athlete) (Athlete, error)
	GetAthlete(ctx context.Context, id int64) (Athlete, error)
	UpdateAthlete(ctx context.Context, a Athlete) error
}
