package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/painai/api/internal/auth"
	httpmiddleware "github.com/painai/api/internal/http/middleware"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/service"
	"github.com/painai/api/internal/util"
)

type userView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func toUserView(u repo.User) userView {
	return userView{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}

type sessionView struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         userView `json:"user"`
}

func toSessionView(s *service.Session) sessionView {
	return sessionView{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         toUserView(s.User),
	}
}

// Register creates a new USER account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	var issues util.Issues
	issues.CheckEmail("email", payload.Email)
	issues.CheckRequired("name", payload.Name)
	issues.CheckPassword("password", payload.Password)
	if !issues.Empty() {
		WriteValidation(w, issues)
		return
	}

	user, err := h.authService.Register(r.Context(), payload.Email, payload.Name, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			WriteError(w, http.StatusConflict, "CONFLICT", "e-mail already registered", nil)
			return
		}
		h.internalError(w, err, "could not register")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{"user": toUserView(user)})
}

// Login authenticates and issues a token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	session, err := h.authService.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			WriteError(w, http.StatusUnauthorized, "AUTH", "invalid credentials", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			WriteError(w, http.StatusUnauthorized, "AUTH", "account disabled", nil)
		default:
			h.internalError(w, err, "could not log in")
		}
		return
	}

	WriteJSON(w, http.StatusOK, toSessionView(session))
}

// Refresh exchanges a refresh token for a new pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	session, err := h.authService.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshInvalid):
			WriteError(w, http.StatusUnauthorized, "AUTH", "invalid refresh token", nil)
		case errors.Is(err, auth.ErrUserInactive):
			WriteError(w, http.StatusUnauthorized, "AUTH", "account disabled", nil)
		default:
			h.internalError(w, err, "could not refresh session")
		}
		return
	}

	WriteJSON(w, http.StatusOK, toSessionView(session))
}

// Logout revokes the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	jti := ""
	expiry := time.Time{}
	if claims, ok := httpmiddleware.GetClaims(r.Context()); ok {
		jti = claims.ID
		if claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
	}

	if err := h.authService.Logout(r.Context(), payload.RefreshToken, jti, expiry); err != nil {
		h.internalError(w, err, "could not log out")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := httpmiddleware.GetIdentity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "authentication required", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": toUserView(user)})
}
