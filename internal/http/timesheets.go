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

type timesheetPayload struct {
	ProjectID     *string `json:"project_id"`
	Date          string  `json:"date"`
	HoursWorked   float64 `json:"hours_worked"`
	OvertimeHours float64 `json:"overtime_hours"`
	WorkType      string  `json:"work_type"`
	Activity      string  `json:"activity"`
}

func (p timesheetPayload) toInput() (service.CreateTimesheetInput, util.Issues) {
	var issues util.Issues
	in := service.CreateTimesheetInput{
		HoursWorked:   p.HoursWorked,
		OvertimeHours: p.OvertimeHours,
		WorkType:      p.WorkType,
		Activity:      p.Activity,
	}

	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		issues.Add("date", "expected YYYY-MM-DD")
	}
	in.Date = date

	if p.ProjectID != nil && *p.ProjectID != "" {
		id, err := uuid.Parse(*p.ProjectID)
		if err != nil {
			issues.Add("project_id", "invalid id")
		} else {
			in.ProjectID = &id
		}
	}

	issues.CheckRange("hours_worked", p.HoursWorked, 0, 24)
	issues.CheckRange("overtime_hours", p.OvertimeHours, 0, 24)
	issues.CheckRequired("work_type", p.WorkType)

	return in, issues
}

// CreateTimesheet registers a pending record for the caller.
func (h *Handler) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	var payload timesheetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	sheet, err := h.timesheets.Create(r.Context(), caller.ID, in)
	if err != nil {
		h.internalError(w, err, "could not create timesheet")
		return
	}

	h.reports.InvalidateWorkload()
	WriteJSON(w, http.StatusCreated, map[string]any{"timesheet": sheet})
}

// ListTimesheets returns records matching the query filter.
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	filter, issues := timesheetFilterFromQuery(r)
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	sheets, err := h.timesheets.List(r.Context(), caller, filter)
	if err != nil {
		h.internalError(w, err, "could not list timesheets")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"timesheets": sheets})
}

// GetTimesheet returns one record.
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid timesheet id", nil)
		return
	}

	sheet, err := h.timesheets.Get(r.Context(), caller, id)
	if err != nil {
		h.timesheetError(w, err, "could not load timesheet")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"timesheet": sheet})
}

// UpdateTimesheet edits an unapproved record.
func (h *Handler) UpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid timesheet id", nil)
		return
	}

	var payload timesheetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	in, issues := payload.toInput()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	sheet, err := h.timesheets.Update(r.Context(), caller, id, in)
	if err != nil {
		h.timesheetError(w, err, "could not update timesheet")
		return
	}

	h.reports.InvalidateWorkload()
	WriteJSON(w, http.StatusOK, map[string]any{"timesheet": sheet})
}

// SubmitTimesheet moves a record into review.
func (h *Handler) SubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid timesheet id", nil)
		return
	}

	sheet, err := h.timesheets.Submit(r.Context(), caller, id)
	if err != nil {
		h.timesheetError(w, err, "could not submit timesheet")
		return
	}

	h.reports.InvalidateWorkload()
	WriteJSON(w, http.StatusOK, map[string]any{"timesheet": sheet})
}

// ApproveTimesheet approves a submitted record (manager only).
func (h *Handler) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	h.reviewTimesheet(w, r, true)
}

// RejectTimesheet rejects a submitted record (manager only).
func (h *Handler) RejectTimesheet(w http.ResponseWriter, r *http.Request) {
	h.reviewTimesheet(w, r, false)
}

func (h *Handler) reviewTimesheet(w http.ResponseWriter, r *http.Request, approve bool) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid timesheet id", nil)
		return
	}

	sheet, err := h.timesheets.Review(r.Context(), caller, id, approve)
	if err != nil {
		h.timesheetError(w, err, "could not review timesheet")
		return
	}

	h.reports.InvalidateWorkload()
	WriteJSON(w, http.StatusOK, map[string]any{"timesheet": sheet})
}

// DeleteTimesheet soft-deletes a record.
func (h *Handler) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid timesheet id", nil)
		return
	}

	if err := h.timesheets.Delete(r.Context(), caller, id); err != nil {
		h.timesheetError(w, err, "could not delete timesheet")
		return
	}

	h.reports.InvalidateWorkload()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) timesheetError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "timesheet not found", nil)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "not allowed for this record", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		WriteError(w, http.StatusBadRequest, "VALIDATION", "record status does not allow this action", nil)
	default:
		h.internalError(w, err, fallback)
	}
}

func timesheetFilterFromQuery(r *http.Request) (repo.TimesheetFilter, util.Issues) {
	var (
		filter repo.TimesheetFilter
		issues util.Issues
	)
	q := r.URL.Query()

	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			issues.Add("user_id", "invalid id")
		} else {
			filter.UserID = &id
		}
	}
	if raw := q.Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			issues.Add("project_id", "invalid id")
		} else {
			filter.ProjectID = &id
		}
	}
	if raw := q.Get("status"); raw != "" {
		filter.Statuses = []string{raw}
	}
	if raw := q.Get("start_date"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			issues.Add("start_date", "expected YYYY-MM-DD")
		} else {
			filter.From = &from
		}
	}
	if raw := q.Get("end_date"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			issues.Add("end_date", "expected YYYY-MM-DD")
		} else {
			filter.To = &to
		}
	}

	return filter, issues
}
