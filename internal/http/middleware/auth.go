package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/repo"
)

type contextKey string

const (
	// ContextKeyIdentity holds the authenticated repo.User.
	ContextKeyIdentity contextKey = "identity"
	// ContextKeyClaims holds the verified token claims.
	ContextKeyClaims contextKey = "claims"
)

// IdentityLookup is the user-lookup collaborator of the auth pipeline.
type IdentityLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (repo.User, error)
}

// RevocationChecker answers whether an access token id has been denylisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth verifies the bearer token, loads the identity and attaches it to the
// request context. Exactly one identity lookup happens per request.
func Auth(jwtManager *auth.JWTManager, users IdentityLookup, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrMissingToken) {
					writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "authorization header required")
					return
				}
				writeError(w, http.StatusUnauthorized, "MALFORMED_HEADER", "expected Bearer token")
				return
			}

			claims, err := jwtManager.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
					return
				}
				writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "invalid token")
				return
			}

			if isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID); err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", "revocation check failed")
				return
			} else if isRevoked {
				writeError(w, http.StatusUnauthorized, "TOKEN_REVOKED", "token revoked")
				return
			}

			subject, err := uuid.Parse(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "TOKEN_INVALID", "invalid subject")
				return
			}

			user, err := users.GetUserByID(r.Context(), subject)
			if err != nil || !user.IsActive {
				writeError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "account not found or inactive")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyIdentity, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity recovers the authenticated user from the context.
func GetIdentity(ctx context.Context) (repo.User, bool) {
	user, ok := ctx.Value(ContextKeyIdentity).(repo.User)
	return user, ok
}

// GetClaims recovers verified token claims from the context.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return claims, ok
}

// RequireRole gates a route on a minimum role. Gates compose, so one path can
// demand different roles per method. The check is auth.Allows, not a rank
// comparison; VP passes unconditionally.
func RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetIdentity(r.Context())
			if !ok {
				// Defensive: only reachable if the gate runs without Auth.
				writeError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "authentication required")
				return
			}

			if !auth.Allows(user.Role, requiredRole) {
				writeError(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "role not allowed for this route")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
