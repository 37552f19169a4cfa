package core

import (
	"context"
	"time"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionAthleteCreate AuditAction = "athlete_create"
	ActionAthleteUpdate AuditAction = "athlete_update"
	ActionAthleteDelete AuditAction = "athlete_delete"
	ActionUpload        AuditAction = "upload"
	ActionCoachCreate   AuditAction = "coach_create"
	ActionCoachPromote  AuditAction = "coach_promote"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// SeverityFor returns the severity recorded for an action.
func SeverityFor(action AuditAction) AuditSeverity {
	switch action {
	case ActionAthleteDelete, ActionUpload, ActionCoachPromote:
		return SeverityHigh
	case ActionAthleteCreate, ActionAthleteUpdate:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AuditEvent records one roster change.
type AuditEvent struct {
	ID        string        `json:"id"`
	Action    AuditAction   `json:"action"`
	Severity  AuditSeverity `json:"severity"`
	ActorID   int64         `json:"actorId"`
	Admin     bool          `json:"admin,omitempty"`
	CoachID   int64         `json:"coachId,omitempty"`
	AthleteID int64         `json:"athleteId,omitempty"`
	UniqueID  int64         `json:"uniqueId,omitempty"`
	ImportID  string        `json:"importId,omitempty"`
	FileName  string        `json:"fileName,omitempty"`
	Accepted  int           `json:"accepted,omitempty"`
	Rejected  int           `json:"rejected,omitempty"`
	IPAddress string        `json:"ipAddress,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// AuditPublisher delivers audit events. Publishing is best effort: a failed
// publish is logged and never undoes the change it describes.
type AuditPublisher interface {
	Publish(ctx context.Context, e AuditEvent) error
}
