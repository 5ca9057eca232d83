package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/painai/api/internal/auth"
	httpmiddleware "github.com/painai/api/internal/http/middleware"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/service"
	"github.com/painai/api/internal/util"
)

// ListUsers returns every account (admin only).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.internalError(w, err, "could not list users")
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": views})
}

// GetUser returns one account (admin only).
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid user id", nil)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		h.internalError(w, err, "could not load user")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}

// UpdateProfile lets the caller edit their own name and e-mail.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	var issues util.Issues
	issues.CheckRequired("name", payload.Name)
	issues.CheckEmail("email", payload.Email)
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), caller.ID, payload.Name, payload.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			WriteError(w, http.StatusConflict, "CONFLICT", "e-mail already registered", nil)
			return
		}
		h.internalError(w, err, "could not update profile")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}

// UpdateUserRole changes an account's role (admin only).
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid user id", nil)
		return
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	role := auth.NormalizeRole(payload.Role)
	if auth.Rank(role) == 0 {
		var issues util.Issues
		issues.Add("role", "unknown role")
		WriteValidation(w, issues)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), caller.ID, id, role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		h.internalError(w, err, "could not change role")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}

// DeactivateUser disables an account (admin only). Accounts are never
// physically deleted.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid user id", nil)
		return
	}

	if err := h.users.Deactivate(r.Context(), caller.ID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		h.internalError(w, err, "could not deactivate user")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// ActivateUser re-enables an account (admin only).
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := httpmiddleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid user id", nil)
		return
	}

	if err := h.users.Activate(r.Context(), caller.ID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		h.internalError(w, err, "could not activate user")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}
