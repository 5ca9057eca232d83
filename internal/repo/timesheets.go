package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const timesheetColumns = `id, user_id, project_id, date, hours_worked, overtime_hours, status, work_type, activity, is_active, created_at, updated_at`

// TimesheetFilter enumerates the valid filter combinations for listing.
type TimesheetFilter struct {
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
	Statuses  []string
	From      *time.Time
	To        *time.Time
}

func scanTimesheet(row pgx.Row) (Timesheet, error) {
	var t Timesheet
	err := row.Scan(&t.ID, &t.UserID, &t.ProjectID, &t.Date, &t.HoursWorked, &t.OvertimeHours,
		&t.Status, &t.WorkType, &t.Activity, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Timesheet{}, ErrNotFound
		}
		return Timesheet{}, err
	}
	return t, nil
}

// GetTimesheetByID fetches a single timesheet, soft-deleted ones included.
func (q *Queries) GetTimesheetByID(ctx context.Context, id uuid.UUID) (Timesheet, error) {
	row := q.db.QueryRow(ctx, `SELECT `+timesheetColumns+` FROM timesheets WHERE id = $1`, id)
	return scanTimesheet(row)
}

// InsertTimesheetParams carries a new timesheet record.
type InsertTimesheetParams struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	ProjectID     *uuid.UUID
	Date          time.Time
	HoursWorked   float64
	OvertimeHours float64
	Status        string
	WorkType      string
	Activity      string
}

// InsertTimesheet creates an active timesheet.
func (q *Queries) InsertTimesheet(ctx context.Context, arg InsertTimesheetParams) (Timesheet, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO timesheets (id, user_id, project_id, date, hours_worked, overtime_hours, status, work_type, activity, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
        RETURNING `+timesheetColumns,
		arg.ID, arg.UserID, arg.ProjectID, arg.Date, arg.HoursWorked, arg.OvertimeHours, arg.Status, arg.WorkType, arg.Activity)
	return scanTimesheet(row)
}

// UpdateTimesheetParams carries editable fields.
type UpdateTimesheetParams struct {
	ProjectID     *uuid.UUID
	Date          time.Time
	HoursWorked   float64
	OvertimeHours float64
	WorkType      string
	Activity      string
}

// UpdateTimesheet rewrites the editable fields of a record.
func (q *Queries) UpdateTimesheet(ctx context.Context, id uuid.UUID, arg UpdateTimesheetParams) (Timesheet, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE timesheets
        SET project_id = $2, date = $3, hours_worked = $4, overtime_hours = $5, work_type = $6, activity = $7, updated_at = now()
        WHERE id = $1
        RETURNING `+timesheetColumns,
		id, arg.ProjectID, arg.Date, arg.HoursWorked, arg.OvertimeHours, arg.WorkType, arg.Activity)
	return scanTimesheet(row)
}

// SetTimesheetStatus moves a record through its lifecycle.
func (q *Queries) SetTimesheetStatus(ctx context.Context, id uuid.UUID, status string) error {
	cmd, err := q.db.Exec(ctx, `UPDATE timesheets SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteTimesheet hides a record without removing the row.
func (q *Queries) SoftDeleteTimesheet(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `UPDATE timesheets SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTimesheets returns active records matching the filter, oldest first.
func (q *Queries) ListTimesheets(ctx context.Context, filter TimesheetFilter) ([]Timesheet, error) {
	sql := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE is_active = TRUE`
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		sql += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		sql += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, filter.Statuses)
		sql += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		sql += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		sql += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	sql += " ORDER BY date ASC, created_at ASC"

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []Timesheet
	for rows.Next() {
		var t Timesheet
		if err := rows.Scan(&t.ID, &t.UserID, &t.ProjectID, &t.Date, &t.HoursWorked, &t.OvertimeHours,
			&t.Status, &t.WorkType, &t.Activity, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		sheets = append(sheets, t)
	}
	return sheets, rows.Err()
}
