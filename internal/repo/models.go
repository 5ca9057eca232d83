package repo

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Accounts are never deleted, only deactivated.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      string
	PassHash  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// RefreshToken models the persisted half of a session. The raw token is
// opaque; only its SHA-256 hash is stored.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Project groups tasks, progress entries and timesheets.
type Project struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Status      string
	OwnerID     *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task statuses used by progress aggregation.
const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskCompleted  = "COMPLETED"
)

// ProjectTask is a unit of project work weighted by priority.
type ProjectTask struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Title      string
	Status     string
	Priority   int
	AssigneeID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Progress entry statuses.
const (
	ProgressOnTrack   = "ON_TRACK"
	ProgressBehind    = "BEHIND"
	ProgressAhead     = "AHEAD"
	ProgressCompleted = "COMPLETED"
)

// ProgressEntry is an append-only manual progress report for a project.
type ProgressEntry struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Date       time.Time
	Progress   float64
	Planned    *float64
	Actual     *float64
	Status     string
	Milestone  *string
	ReportedBy uuid.UUID
	CreatedAt  time.Time
}

// Timesheet statuses across the submit/approve lifecycle.
const (
	TimesheetPending   = "pending"
	TimesheetSubmitted = "submitted"
	TimesheetApproved  = "approved"
	TimesheetRejected  = "rejected"
)

// Timesheet records hours worked by a user on a given day.
type Timesheet struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ProjectID     *uuid.UUID
	Date          time.Time
	HoursWorked   float64
	OvertimeHours float64
	Status        string
	WorkType      string
	Activity      string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Holiday is a company-wide non-working day.
type Holiday struct {
	ID        uuid.UUID
	Name      string
	Date      time.Time
	CreatedAt time.Time
}

// ActivityLog is an append-only audit record.
type ActivityLog struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Action    string
	Detail    *string
	CreatedAt time.Time
}

// Setting is a persisted key/value application setting.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
