package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `id, name, description, status, owner_id, start_date, end_date, is_active, created_at, updated_at`

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID, &p.StartDate, &p.EndDate,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

// GetProjectByID fetches a project by primary key.
func (q *Queries) GetProjectByID(ctx context.Context, id uuid.UUID) (Project, error) {
	row := q.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

// ListProjects returns active projects, newest first.
func (q *Queries) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := q.db.Query(ctx, `SELECT `+projectColumns+` FROM projects WHERE is_active = TRUE ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.OwnerID, &p.StartDate, &p.EndDate,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// InsertProjectParams carries a new project.
type InsertProjectParams struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Status      string
	OwnerID     *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

// InsertProject creates an active project.
func (q *Queries) InsertProject(ctx context.Context, arg InsertProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO projects (id, name, description, status, owner_id, start_date, end_date, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
        RETURNING `+projectColumns,
		arg.ID, arg.Name, arg.Description, arg.Status, arg.OwnerID, arg.StartDate, arg.EndDate)
	return scanProject(row)
}

// UpdateProjectParams carries editable project fields.
type UpdateProjectParams struct {
	Name        string
	Description *string
	Status      string
	OwnerID     *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProject rewrites a project's editable fields.
func (q *Queries) UpdateProject(ctx context.Context, id uuid.UUID, arg UpdateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, `
        UPDATE projects
        SET name = $2, description = $3, status = $4, owner_id = $5, start_date = $6, end_date = $7, updated_at = now()
        WHERE id = $1
        RETURNING `+projectColumns,
		id, arg.Name, arg.Description, arg.Status, arg.OwnerID, arg.StartDate, arg.EndDate)
	return scanProject(row)
}

// SoftDeleteProject hides a project without removing the row.
func (q *Queries) SoftDeleteProject(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `UPDATE projects SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasksByProject returns a project's tasks in creation order.
func (q *Queries) ListTasksByProject(ctx context.Context, projectID uuid.UUID) ([]ProjectTask, error) {
	rows, err := q.db.Query(ctx, `
        SELECT id, project_id, title, status, priority, assignee_id, created_at, updated_at
        FROM project_tasks WHERE project_id = $1 ORDER BY created_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []ProjectTask
	for rows.Next() {
		var t ProjectTask
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &t.Priority, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// InsertTaskParams carries a new project task.
type InsertTaskParams struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Title      string
	Status     string
	Priority   int
	AssigneeID *uuid.UUID
}

// InsertTask creates a task under a project.
func (q *Queries) InsertTask(ctx context.Context, arg InsertTaskParams) (ProjectTask, error) {
	var t ProjectTask
	err := q.db.QueryRow(ctx, `
        INSERT INTO project_tasks (id, project_id, title, status, priority, assignee_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, project_id, title, status, priority, assignee_id, created_at, updated_at`,
		arg.ID, arg.ProjectID, arg.Title, arg.Status, arg.Priority, arg.AssigneeID).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &t.Priority, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return ProjectTask{}, err
	}
	return t, nil
}

// UpdateTask rewrites a task's fields.
func (q *Queries) UpdateTask(ctx context.Context, id uuid.UUID, title, status string, priority int, assigneeID *uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `
        UPDATE project_tasks SET title = $2, status = $3, priority = $4, assignee_id = $5, updated_at = now()
        WHERE id = $1`, id, title, status, priority, assigneeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task.
func (q *Queries) DeleteTask(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM project_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProgressEntries returns a project's manual progress log, oldest first.
func (q *Queries) ListProgressEntries(ctx context.Context, projectID uuid.UUID) ([]ProgressEntry, error) {
	rows, err := q.db.Query(ctx, `
        SELECT id, project_id, date, progress, planned, actual, status, milestone, reported_by, created_at
        FROM progress_entries WHERE project_id = $1 ORDER BY date ASC, created_at ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ProgressEntry
	for rows.Next() {
		var e ProgressEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Date, &e.Progress, &e.Planned, &e.Actual, &e.Status,
			&e.Milestone, &e.ReportedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertProgressEntryParams carries a new manual progress report.
type InsertProgressEntryParams struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Date       time.Time
	Progress   float64
	Planned    *float64
	Actual     *float64
	Status     string
	Milestone  *string
	ReportedBy uuid.UUID
}

// InsertProgressEntry appends to the progress log.
func (q *Queries) InsertProgressEntry(ctx context.Context, arg InsertProgressEntryParams) (ProgressEntry, error) {
	var e ProgressEntry
	err := q.db.QueryRow(ctx, `
        INSERT INTO progress_entries (id, project_id, date, progress, planned, actual, status, milestone, reported_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, project_id, date, progress, planned, actual, status, milestone, reported_by, created_at`,
		arg.ID, arg.ProjectID, arg.Date, arg.Progress, arg.Planned, arg.Actual, arg.Status, arg.Milestone, arg.ReportedBy).
		Scan(&e.ID, &e.ProjectID, &e.Date, &e.Progress, &e.Planned, &e.Actual, &e.Status, &e.Milestone, &e.ReportedBy, &e.CreatedAt)
	if err != nil {
		return ProgressEntry{}, err
	}
	return e, nil
}

// UpdateProgressEntry rewrites an existing report.
func (q *Queries) UpdateProgressEntry(ctx context.Context, id uuid.UUID, date time.Time, progress float64, planned, actual *float64, status string, milestone *string) error {
	cmd, err := q.db.Exec(ctx, `
        UPDATE progress_entries SET date = $2, progress = $3, planned = $4, actual = $5, status = $6, milestone = $7
        WHERE id = $1`, id, date, progress, planned, actual, status, milestone)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProgressEntry removes a report from the log.
func (q *Queries) DeleteProgressEntry(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM progress_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
