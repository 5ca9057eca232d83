package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/report"
	"github.com/painai/api/internal/util"
)

type projectRepository interface {
	GetProjectByID(ctx context.Context, id uuid.UUID) (repo.Project, error)
	ListProjects(ctx context.Context) ([]repo.Project, error)
	InsertProject(ctx context.Context, arg repo.InsertProjectParams) (repo.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, arg repo.UpdateProjectParams) (repo.Project, error)
	SoftDeleteProject(ctx context.Context, id uuid.UUID) error
	ListTasksByProject(ctx context.Context, projectID uuid.UUID) ([]repo.ProjectTask, error)
	InsertTask(ctx context.Context, arg repo.InsertTaskParams) (repo.ProjectTask, error)
	UpdateTask(ctx context.Context, id uuid.UUID, title, status string, priority int, assigneeID *uuid.UUID) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ListProgressEntries(ctx context.Context, projectID uuid.UUID) ([]repo.ProgressEntry, error)
	InsertProgressEntry(ctx context.Context, arg repo.InsertProgressEntryParams) (repo.ProgressEntry, error)
	UpdateProgressEntry(ctx context.Context, id uuid.UUID, date time.Time, progress float64, planned, actual *float64, status string, milestone *string) error
	DeleteProgressEntry(ctx context.Context, id uuid.UUID) error
}

// ProjectService handles projects, their tasks and their progress log.
type ProjectService struct {
	repo projectRepository
}

// NewProjectService creates the service.
func NewProjectService(r projectRepository) *ProjectService {
	return &ProjectService{repo: r}
}

// List returns active projects.
func (s *ProjectService) List(ctx context.Context) ([]repo.Project, error) {
	return s.repo.ListProjects(ctx)
}

// Get loads one project.
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (repo.Project, error) {
	return s.repo.GetProjectByID(ctx, id)
}

// CreateProjectInput carries a new project.
type CreateProjectInput struct {
	Name        string
	Description *string
	Status      string
	OwnerID     *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
}

// Create registers a project.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (repo.Project, error) {
	return s.repo.InsertProject(ctx, repo.InsertProjectParams{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		OwnerID:     in.OwnerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	})
}

// Update rewrites a project.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, in CreateProjectInput) (repo.Project, error) {
	return s.repo.UpdateProject(ctx, id, repo.UpdateProjectParams{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		OwnerID:     in.OwnerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	})
}

// Delete soft-deletes a project.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDeleteProject(ctx, id)
}

// Tasks returns a project's tasks.
func (s *ProjectService) Tasks(ctx context.Context, projectID uuid.UUID) ([]repo.ProjectTask, error) {
	if _, err := s.repo.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListTasksByProject(ctx, projectID)
}

// CreateTaskInput carries a new task.
type CreateTaskInput struct {
	Title      string
	Status     string
	Priority   int
	AssigneeID *uuid.UUID
}

// CreateTask adds a task to a project.
func (s *ProjectService) CreateTask(ctx context.Context, projectID uuid.UUID, in CreateTaskInput) (repo.ProjectTask, error) {
	if _, err := s.repo.GetProjectByID(ctx, projectID); err != nil {
		return repo.ProjectTask{}, err
	}
	if in.Priority <= 0 {
		in.Priority = 1
	}
	if in.Status == "" {
		in.Status = repo.TaskTodo
	}
	return s.repo.InsertTask(ctx, repo.InsertTaskParams{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Title:      in.Title,
		Status:     in.Status,
		Priority:   in.Priority,
		AssigneeID: in.AssigneeID,
	})
}

// UpdateTask rewrites a task.
func (s *ProjectService) UpdateTask(ctx context.Context, taskID uuid.UUID, in CreateTaskInput) error {
	if in.Priority <= 0 {
		in.Priority = 1
	}
	return s.repo.UpdateTask(ctx, taskID, in.Title, in.Status, in.Priority, in.AssigneeID)
}

// DeleteTask removes a task.
func (s *ProjectService) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return s.repo.DeleteTask(ctx, taskID)
}

// CreateProgressInput carries a manual progress report.
type CreateProgressInput struct {
	Date      time.Time
	Progress  float64
	Planned   *float64
	Actual    *float64
	Status    string
	Milestone *string
}

// AddProgress appends to a project's progress log.
func (s *ProjectService) AddProgress(ctx context.Context, projectID, reporter uuid.UUID, in CreateProgressInput) (repo.ProgressEntry, error) {
	if _, err := s.repo.GetProjectByID(ctx, projectID); err != nil {
		return repo.ProgressEntry{}, err
	}
	if in.Status == "" {
		in.Status = repo.ProgressOnTrack
	}
	return s.repo.InsertProgressEntry(ctx, repo.InsertProgressEntryParams{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Date:       in.Date,
		Progress:   in.Progress,
		Planned:    in.Planned,
		Actual:     in.Actual,
		Status:     in.Status,
		Milestone:  in.Milestone,
		ReportedBy: reporter,
	})
}

// UpdateProgress rewrites an existing report.
func (s *ProjectService) UpdateProgress(ctx context.Context, entryID uuid.UUID, in CreateProgressInput) error {
	return s.repo.UpdateProgressEntry(ctx, entryID, in.Date, in.Progress, in.Planned, in.Actual, in.Status, in.Milestone)
}

// DeleteProgress removes a report.
func (s *ProjectService) DeleteProgress(ctx context.Context, entryID uuid.UUID) error {
	return s.repo.DeleteProgressEntry(ctx, entryID)
}

// ProgressReport is the combined derived view of a project's pacing.
type ProgressReport struct {
	Project       repo.Project              `json:"project"`
	TaskProgress  report.TaskProgressResult `json:"task_progress"`
	SCurve        []report.SCurvePoint      `json:"s_curve"`
	DaysRemaining *int                      `json:"days_remaining"`
}

// Progress computes the derived progress view of a project.
func (s *ProjectService) Progress(ctx context.Context, projectID uuid.UUID) (*ProgressReport, error) {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListProgressEntries(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return &ProgressReport{
		Project:       project,
		TaskProgress:  report.TaskProgress(tasks),
		SCurve:        report.SCurve(entries),
		DaysRemaining: report.DaysRemaining(project.EndDate, util.Now()),
	}, nil
}
