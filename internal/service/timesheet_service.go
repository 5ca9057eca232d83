package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/settings"
)

var (
	// ErrForbidden indicates the caller may not act on this record.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition indicates a lifecycle move the record cannot make.
	ErrInvalidTransition = errors.New("invalid status transition")
)

type timesheetRepository interface {
	GetTimesheetByID(ctx context.Context, id uuid.UUID) (repo.Timesheet, error)
	InsertTimesheet(ctx context.Context, arg repo.InsertTimesheetParams) (repo.Timesheet, error)
	UpdateTimesheet(ctx context.Context, id uuid.UUID, arg repo.UpdateTimesheetParams) (repo.Timesheet, error)
	SetTimesheetStatus(ctx context.Context, id uuid.UUID, status string) error
	SoftDeleteTimesheet(ctx context.Context, id uuid.UUID) error
	ListTimesheets(ctx context.Context, filter repo.TimesheetFilter) ([]repo.Timesheet, error)
	InsertActivityLog(ctx context.Context, id uuid.UUID, userID *uuid.UUID, action string, detail *string) error
}

type settingsReader interface {
	GetBool(ctx context.Context, key string, def bool) bool
	GetFloat(ctx context.Context, key string, def float64) float64
}

// TimesheetService runs the timesheet lifecycle: a record is created pending,
// submitted by its owner, then approved or rejected by a manager. Persisted
// settings tune the lifecycle; a nil reader leaves every default in place.
type TimesheetService struct {
	repo     timesheetRepository
	settings settingsReader
}

// NewTimesheetService creates the service.
func NewTimesheetService(r timesheetRepository, s settingsReader) *TimesheetService {
	return &TimesheetService{repo: r, settings: s}
}

// CreateTimesheetInput carries a new record.
type CreateTimesheetInput struct {
	ProjectID     *uuid.UUID
	Date          time.Time
	HoursWorked   float64
	OvertimeHours float64
	WorkType      string
	Activity      string
}

// Create registers a pending timesheet for owner. When no hours are entered
// the configured default work day applies.
func (s *TimesheetService) Create(ctx context.Context, owner uuid.UUID, in CreateTimesheetInput) (repo.Timesheet, error) {
	if in.HoursWorked == 0 && s.settings != nil {
		in.HoursWorked = s.settings.GetFloat(ctx, settings.KeyDefaultWorkHours, 0)
	}
	return s.repo.InsertTimesheet(ctx, repo.InsertTimesheetParams{
		ID:            uuid.New(),
		UserID:        owner,
		ProjectID:     in.ProjectID,
		Date:          in.Date,
		HoursWorked:   in.HoursWorked,
		OvertimeHours: in.OvertimeHours,
		Status:        repo.TimesheetPending,
		WorkType:      in.WorkType,
		Activity:      in.Activity,
	})
}

// Update edits a record. Only the owner may edit, and only before approval.
func (s *TimesheetService) Update(ctx context.Context, caller repo.User, id uuid.UUID, in CreateTimesheetInput) (repo.Timesheet, error) {
	sheet, err := s.repo.GetTimesheetByID(ctx, id)
	if err != nil {
		return repo.Timesheet{}, err
	}
	if sheet.UserID != caller.ID && !auth.Satisfies(caller.Role, auth.RoleManager) {
		return repo.Timesheet{}, ErrForbidden
	}
	if sheet.Status == repo.TimesheetApproved {
		return repo.Timesheet{}, ErrInvalidTransition
	}

	return s.repo.UpdateTimesheet(ctx, id, repo.UpdateTimesheetParams{
		ProjectID:     in.ProjectID,
		Date:          in.Date,
		HoursWorked:   in.HoursWorked,
		OvertimeHours: in.OvertimeHours,
		WorkType:      in.WorkType,
		Activity:      in.Activity,
	})
}

// Submit moves a pending record into review.
func (s *TimesheetService) Submit(ctx context.Context, caller repo.User, id uuid.UUID) (repo.Timesheet, error) {
	sheet, err := s.repo.GetTimesheetByID(ctx, id)
	if err != nil {
		return repo.Timesheet{}, err
	}
	if sheet.UserID != caller.ID {
		return repo.Timesheet{}, ErrForbidden
	}
	if sheet.Status != repo.TimesheetPending && sheet.Status != repo.TimesheetRejected {
		return repo.Timesheet{}, ErrInvalidTransition
	}

	if err := s.repo.SetTimesheetStatus(ctx, id, repo.TimesheetSubmitted); err != nil {
		return repo.Timesheet{}, err
	}

	if s.settings != nil && auth.Satisfies(caller.Role, auth.RoleAdmin) &&
		s.settings.GetBool(ctx, settings.KeyAutoApproveAdmins, false) {
		if err := s.repo.SetTimesheetStatus(ctx, id, repo.TimesheetApproved); err != nil {
			return repo.Timesheet{}, err
		}
		detail := "timesheet=" + id.String()
		if err := s.repo.InsertActivityLog(ctx, uuid.New(), &caller.ID, "timesheet.auto_approved", &detail); err != nil {
			log.Warn().Err(err).Str("action", "timesheet.auto_approved").Msg("activity log write failed")
		}
	}

	return s.repo.GetTimesheetByID(ctx, id)
}

// Review approves or rejects a submitted record.
func (s *TimesheetService) Review(ctx context.Context, reviewer repo.User, id uuid.UUID, approve bool) (repo.Timesheet, error) {
	sheet, err := s.repo.GetTimesheetByID(ctx, id)
	if err != nil {
		return repo.Timesheet{}, err
	}
	if sheet.Status != repo.TimesheetSubmitted {
		return repo.Timesheet{}, ErrInvalidTransition
	}

	status := repo.TimesheetRejected
	action := "timesheet.rejected"
	if approve {
		status = repo.TimesheetApproved
		action = "timesheet.approved"
	}

	if err := s.repo.SetTimesheetStatus(ctx, id, status); err != nil {
		return repo.Timesheet{}, err
	}

	detail := "timesheet=" + id.String()
	if err := s.repo.InsertActivityLog(ctx, uuid.New(), &reviewer.ID, action, &detail); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("activity log write failed")
	}

	return s.repo.GetTimesheetByID(ctx, id)
}

// Delete soft-deletes a record. Owners may delete their own unapproved
// records; managers may delete any.
func (s *TimesheetService) Delete(ctx context.Context, caller repo.User, id uuid.UUID) error {
	sheet, err := s.repo.GetTimesheetByID(ctx, id)
	if err != nil {
		return err
	}
	isManager := auth.Satisfies(caller.Role, auth.RoleManager)
	if sheet.UserID != caller.ID && !isManager {
		return ErrForbidden
	}
	if sheet.Status == repo.TimesheetApproved && !isManager {
		return ErrInvalidTransition
	}
	return s.repo.SoftDeleteTimesheet(ctx, id)
}

// List returns records matching the filter. Non-managers only ever see their
// own records regardless of the requested filter.
func (s *TimesheetService) List(ctx context.Context, caller repo.User, filter repo.TimesheetFilter) ([]repo.Timesheet, error) {
	if !auth.Satisfies(caller.Role, auth.RoleManager) {
		filter.UserID = &caller.ID
	}
	return s.repo.ListTimesheets(ctx, filter)
}

// Get loads a single record with the same visibility rule as List.
func (s *TimesheetService) Get(ctx context.Context, caller repo.User, id uuid.UUID) (repo.Timesheet, error) {
	sheet, err := s.repo.GetTimesheetByID(ctx, id)
	if err != nil {
		return repo.Timesheet{}, err
	}
	if sheet.UserID != caller.ID && !auth.Satisfies(caller.Role, auth.RoleManager) {
		return repo.Timesheet{}, ErrForbidden
	}
	return sheet, nil
}
