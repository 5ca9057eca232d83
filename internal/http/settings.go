package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/painai/api/internal/settings"
	"github.com/painai/api/internal/util"
)

// ListSettings returns every persisted setting (admin only).
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All(r.Context())
	if err != nil {
		h.internalError(w, err, "could not list settings")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"settings": all})
}

// GetSetting returns one setting value (admin only).
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := h.settings.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "setting not found", nil)
			return
		}
		h.internalError(w, err, "could not load setting")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// PutSetting writes a setting value (admin only).
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	var issues util.Issues
	issues.CheckRequired("value", payload.Value)
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	if err := h.settings.Set(r.Context(), key, payload.Value); err != nil {
		h.internalError(w, err, "could not save setting")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": payload.Value})
}
