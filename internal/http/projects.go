package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/painai/api/internal/http/middleware"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/service"
	"github.com/painai/api/internal/util"
)

type projectPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	OwnerID     *string `json:"owner_id"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (p projectPayload) toInput() (service.CreateProjectInput, util.Issues) {
	var issues util.Issues
	issues.CheckRequired("name", p.Name)

	in := service.CreateProjectInput{
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
	}
	if in.Status == "" {
		in.Status = "ACTIVE"
	}

	if p.OwnerID != nil && *p.OwnerID != "" {
		id, err := uuid.Parse(*p.OwnerID)
		if err != nil {
			issues.Add("owner_id", "invalid id")
		} else {
			in.OwnerID = &id
		}
	}
	if p.StartDate != nil && *p.StartDate != "" {
		d, err := time.Parse("2006-01-02", *p.StartDate)
		if err != nil {
			issues.Add("start_date", "expected YYYY-MM-DD")
		} else {
			in.StartDate = &d
		}
	}
	if p.EndDate != nil && *p.EndDate != "" {
		d, err := time.Parse("2006-01-02", *p.EndDate)
		if err != nil {
			issues.Add("end_date", "expected YYYY-MM-DD")
		} else {
			in.EndDate = &d
		}
	}

	return in, issues
}

// ListProjects returns active projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		h.internalError(w, err, "could not list projects")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// GetProject returns one project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		h.projectError(w, err, "could not load project")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"project": project})
}

// CreateProject registers a project (manager only).
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	project, err := h.projects.Create(r.Context(), in)
	if err != nil {
		h.internalError(w, err, "could not create project")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"project": project})
}

// UpdateProject rewrites a project (manager only).
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var payload projectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	project, err := h.projects.Update(r.Context(), id, in)
	if err != nil {
		h.projectError(w, err, "could not update project")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"project": project})
}

// DeleteProject soft-deletes a project (manager only).
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), id); err != nil {
		h.projectError(w, err, "could not delete project")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListProjectTasks returns a project's tasks.
func (h *Handler) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	tasks, err := h.projects.Tasks(r.Context(), id)
	if err != nil {
		h.projectError(w, err, "could not list tasks")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

type taskPayload struct {
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Priority   int     `json:"priority"`
	AssigneeID *string `json:"assignee_id"`
}

func (p taskPayload) toInput() (service.CreateTaskInput, util.Issues) {
	var issues util.Issues
	issues.CheckRequired("title", p.Title)

	in := service.CreateTaskInput{Title: p.Title, Status: p.Status, Priority: p.Priority}
	if p.Status != "" && p.Status != repo.TaskTodo && p.Status != repo.TaskInProgress && p.Status != repo.TaskCompleted {
		issues.Add("status", "unknown status")
	}
	if p.AssigneeID != nil && *p.AssigneeID != "" {
		id, err := uuid.Parse(*p.AssigneeID)
		if err != nil {
			issues.Add("assignee_id", "invalid id")
		} else {
			in.AssigneeID = &id
		}
	}
	return in, issues
}

// CreateProjectTask adds a task (manager only).
func (h *Handler) CreateProjectTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	task, err := h.projects.CreateTask(r.Context(), id, in)
	if err != nil {
		h.projectError(w, err, "could not create task")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"task": task})
}

// UpdateProjectTask rewrites a task (manager only).
func (h *Handler) UpdateProjectTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid task id", nil)
		return
	}

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	if err := h.projects.UpdateTask(r.Context(), taskID, in); err != nil {
		h.projectError(w, err, "could not update task")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteProjectTask removes a task (manager only).
func (h *Handler) DeleteProjectTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid task id", nil)
		return
	}

	if err := h.projects.DeleteTask(r.Context(), taskID); err != nil {
		h.projectError(w, err, "could not delete task")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type progressPayload struct {
	Date      string   `json:"date"`
	Progress  float64  `json:"progress"`
	Planned   *float64 `json:"planned"`
	Actual    *float64 `json:"actual"`
	Status    string   `json:"status"`
	Milestone *string  `json:"milestone"`
}

func (p progressPayload) toInput() (service.CreateProgressInput, util.Issues) {
	var issues util.Issues

	in := service.CreateProgressInput{
		Progress:  p.Progress,
		Planned:   p.Planned,
		Actual:    p.Actual,
		Status:    p.Status,
		Milestone: p.Milestone,
	}

	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		issues.Add("date", "expected YYYY-MM-DD")
	}
	in.Date = date

	issues.CheckRange("progress", p.Progress, 0, 100)

	return in, issues
}

// AddProjectProgress appends a manual progress report (manager only).
func (h *Handler) AddProjectProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	var payload progressPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	entry, err := h.projects.AddProgress(r.Context(), id, caller.ID, in)
	if err != nil {
		h.projectError(w, err, "could not record progress")
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

// UpdateProjectProgress rewrites a progress report (manager only).
func (h *Handler) UpdateProjectProgress(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid entry id", nil)
		return
	}

	var payload progressPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	if err := h.projects.UpdateProgress(r.Context(), entryID, in); err != nil {
		h.projectError(w, err, "could not update progress entry")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteProjectProgress removes a progress report (manager only).
func (h *Handler) DeleteProjectProgress(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid entry id", nil)
		return
	}

	if err := h.projects.DeleteProgress(r.Context(), entryID); err != nil {
		h.projectError(w, err, "could not delete progress entry")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetProjectProgress returns the derived progress view.
func (h *Handler) GetProjectProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	progress, err := h.projects.Progress(r.Context(), id)
	if err != nil {
		h.projectError(w, err, "could not compute progress")
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid project id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) projectError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, repo.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "project not found", nil)
		return
	}
	h.internalError(w, err, fallback)
}
