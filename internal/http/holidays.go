package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/util"
)

const holidaysCacheKey = "holidays_all"

type holidayPayload struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

func (p holidayPayload) parse() (string, time.Time, util.Issues) {
	var issues util.Issues
	issues.CheckRequired("name", p.Name)

	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		issues.Add("date", "expected YYYY-MM-DD")
	}
	return p.Name, date, issues
}

// ListHolidays returns the holiday calendar. Reads are cached since the
// calendar changes rarely and every timesheet screen loads it.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	value, err := h.cache.GetOrSet(r.Context(), holidaysCacheKey, 0, func(ctx context.Context) (any, error) {
		return h.repo.ListHolidays(ctx)
	})
	if err != nil {
		h.internalError(w, err, "could not list holidays")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"holidays": value})
}

// CreateHoliday registers a non-working day (admin only).
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	name, date, issues := payload.parse()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	holiday, err := h.repo.InsertHoliday(r.Context(), uuid.New(), name, date)
	if err != nil {
		h.internalError(w, err, "could not create holiday")
		return
	}

	h.cache.Invalidate("holidays_")
	WriteJSON(w, http.StatusCreated, map[string]any{"holiday": holiday})
}

// UpdateHoliday rewrites a holiday (admin only).
func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid holiday id", nil)
		return
	}

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	name, date, issues := payload.parse()
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	if err := h.repo.UpdateHoliday(r.Context(), id, name, date); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "holiday not found", nil)
			return
		}
		h.internalError(w, err, "could not update holiday")
		return
	}

	h.cache.Invalidate("holidays_")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteHoliday removes a holiday (admin only).
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid holiday id", nil)
		return
	}

	if err := h.repo.DeleteHoliday(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "holiday not found", nil)
			return
		}
		h.internalError(w, err, "could not delete holiday")
		return
	}

	h.cache.Invalidate("holidays_")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
