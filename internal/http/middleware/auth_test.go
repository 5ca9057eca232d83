package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/repo"
)

type stubLookup struct {
	users map[uuid.UUID]repo.User
}

func (s *stubLookup) GetUserByID(_ context.Context, id uuid.UUID) (repo.User, error) {
	u, ok := s.users[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	return u, nil
}

type stubRevocation struct {
	revoked map[string]bool
}

func (s *stubRevocation) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}
	return envelope.Error.Code
}

func TestAuthPipeline(t *testing.T) {
	mgr := auth.NewJWTManager("0123456789abcdef0123456789abcdef", 15*time.Minute)
	expiredMgr := auth.NewJWTManager("0123456789abcdef0123456789abcdef", -time.Minute)

	active := repo.User{ID: uuid.New(), Email: "ana@example.com", Role: auth.RoleUser, IsActive: true}
	inactive := repo.User{ID: uuid.New(), Email: "bob@example.com", Role: auth.RoleUser, IsActive: false}
	lookup := &stubLookup{users: map[uuid.UUID]repo.User{active.ID: active, inactive.ID: inactive}}
	revocation := &stubRevocation{revoked: map[string]bool{}}

	validToken, _, err := mgr.Issue(active.ID.String(), active.Email, active.Role, "Ana")
	if err != nil {
		t.Fatal(err)
	}
	expiredToken, _, err := expiredMgr.Issue(active.ID.String(), active.Email, active.Role, "Ana")
	if err != nil {
		t.Fatal(err)
	}
	revokedToken, revokedJTI, err := mgr.Issue(active.ID.String(), active.Email, active.Role, "Ana")
	if err != nil {
		t.Fatal(err)
	}
	revocation.revoked[revokedJTI] = true
	inactiveToken, _, err := mgr.Issue(inactive.ID.String(), inactive.Email, inactive.Role, "Bob")
	if err != nil {
		t.Fatal(err)
	}
	ghostToken, _, err := mgr.Issue(uuid.NewString(), "ghost@example.com", auth.RoleUser, "Ghost")
	if err != nil {
		t.Fatal(err)
	}
	badSubjectToken, _, err := mgr.Issue("not-a-uuid", active.Email, active.Role, "Ana")
	if err != nil {
		t.Fatal(err)
	}

	handler := Auth(mgr, lookup, revocation)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetIdentity(r.Context())
		if !ok {
			t.Error("identity missing downstream")
		}
		if _, ok := GetClaims(r.Context()); !ok {
			t.Error("claims missing downstream")
		}
		if user.ID != active.ID {
			t.Errorf("wrong identity attached: %v", user.ID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"no header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"malformed header", "Token abc", http.StatusUnauthorized, "MALFORMED_HEADER"},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized, "TOKEN_INVALID"},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"revoked token", "Bearer " + revokedToken, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"bad subject", "Bearer " + badSubjectToken, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"unknown user", "Bearer " + ghostToken, http.StatusUnauthorized, "USER_NOT_FOUND"},
		{"inactive user", "Bearer " + inactiveToken, http.StatusUnauthorized, "USER_NOT_FOUND"},
		{"valid token", "Bearer " + validToken, http.StatusOK, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantCode != "" {
				if got := errorCode(t, rec.Body.Bytes()); got != tc.wantCode {
					t.Errorf("code = %q, want %q", got, tc.wantCode)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name       string
		userRole   string
		required   string
		wantStatus int
	}{
		{"vp passes admin gate", auth.RoleVP, auth.RoleAdmin, http.StatusOK},
		{"admin passes admin gate", auth.RoleAdmin, auth.RoleAdmin, http.StatusOK},
		{"manager fails admin gate", auth.RoleManager, auth.RoleAdmin, http.StatusForbidden},
		{"admin passes manager gate", auth.RoleAdmin, auth.RoleManager, http.StatusOK},
		{"manager passes manager gate", auth.RoleManager, auth.RoleManager, http.StatusOK},
		{"user fails manager gate", auth.RoleUser, auth.RoleManager, http.StatusForbidden},
		{"user passes user gate", auth.RoleUser, auth.RoleUser, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(tc.required)(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			user := repo.User{ID: uuid.New(), Role: tc.userRole, IsActive: true}
			req = req.WithContext(context.WithValue(req.Context(), ContextKeyIdentity, user))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusForbidden {
				if got := errorCode(t, rec.Body.Bytes()); got != "INSUFFICIENT_PERMISSIONS" {
					t.Errorf("code = %q", got)
				}
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	handler := RequireRole(auth.RoleUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errorCode(t, rec.Body.Bytes()); got != "AUTHENTICATION_REQUIRED" {
		t.Errorf("code = %q", got)
	}
}
