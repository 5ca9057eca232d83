package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/repo"
)

type stubAuthRepo struct {
	users  map[uuid.UUID]repo.User
	tokens map[string]repo.RefreshToken
	logs   []string
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		users:  map[uuid.UUID]repo.User{},
		tokens: map[string]repo.RefreshToken{},
	}
}

func (s *stubAuthRepo) GetUserByEmail(_ context.Context, email string) (repo.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repo.User{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetUserByID(_ context.Context, id uuid.UUID) (repo.User, error) {
	u, ok := s.users[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubAuthRepo) InsertUser(_ context.Context, arg repo.InsertUserParams) (repo.User, error) {
	u := repo.User{
		ID:       arg.ID,
		Email:    arg.Email,
		Name:     arg.Name,
		Role:     arg.Role,
		PassHash: arg.PassHash,
		IsActive: true,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubAuthRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.LastLogin = &at
	s.users[id] = u
	return nil
}

func (s *stubAuthRepo) GetRefreshTokenByHash(_ context.Context, tokenHash string) (repo.RefreshToken, error) {
	token, ok := s.tokens[tokenHash]
	if !ok {
		return repo.RefreshToken{}, repo.ErrNotFound
	}
	return token, nil
}

func (s *stubAuthRepo) InsertRefreshToken(_ context.Context, arg repo.InsertRefreshTokenParams) (repo.RefreshToken, error) {
	token := repo.RefreshToken{
		ID:        arg.ID,
		UserID:    arg.UserID,
		TokenHash: arg.TokenHash,
		ExpiresAt: arg.ExpiresAt,
	}
	s.tokens[token.TokenHash] = token
	return token, nil
}

func (s *stubAuthRepo) DeleteRefreshToken(_ context.Context, tokenHash string) error {
	if _, ok := s.tokens[tokenHash]; !ok {
		return repo.ErrNotFound
	}
	delete(s.tokens, tokenHash)
	return nil
}

func (s *stubAuthRepo) DeleteRefreshTokensByUser(_ context.Context, userID uuid.UUID) error {
	for hash, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, hash)
		}
	}
	return nil
}

func (s *stubAuthRepo) InsertActivityLog(_ context.Context, _ uuid.UUID, _ *uuid.UUID, action string, _ *string) error {
	s.logs = append(s.logs, action)
	return nil
}

type stubRedis struct {
	values map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: map[string]string{}}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	s.values[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := s.values[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(n)
	return cmd
}

type stubRevoker struct {
	revoked []string
}

func (s *stubRevoker) Revoke(_ context.Context, jti string, _ time.Time) error {
	s.revoked = append(s.revoked, jti)
	return nil
}

func newTestAuthService() (*AuthService, *stubAuthRepo, *stubRedis, *stubRevoker) {
	r := newStubAuthRepo()
	rd := newStubRedis()
	rv := &stubRevoker{}
	jwtMgr := auth.NewJWTManager("0123456789abcdef0123456789abcdef", 15*time.Minute)
	svc := NewAuthService(r, nil, rd, jwtMgr, rv, 24*time.Hour)
	return svc, r, rd, rv
}

func TestRegisterAndLogin(t *testing.T) {
	svc, r, _, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ana@Example.com", "Ana", "secret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != auth.RoleUser {
		t.Errorf("new accounts must start as USER, got %q", user.Role)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("email not lowered: %q", user.Email)
	}

	if _, err := svc.Register(ctx, "ana@example.com", "Ana", "secret-pass"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register = %v, want ErrEmailTaken", err)
	}

	session, err := svc.Login(ctx, "ana@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
	if r.users[user.ID].LastLogin == nil {
		t.Error("last_login not touched")
	}

	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, r, _, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob@example.com", "Bob", "secret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	u := r.users[user.ID]
	u.IsActive = false
	r.users[user.ID] = u

	if _, err := svc.Login(ctx, "bob@example.com", "secret-pass"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("Login = %v, want ErrAccountDisabled", err)
	}
}

func TestRefreshIsSingleUse(t *testing.T) {
	svc, _, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "Ana", "secret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	first, err := svc.Login(ctx, "ana@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// Replaying the consumed token must fail.
	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, auth.ErrRefreshInvalid) {
		t.Errorf("replay = %v, want ErrRefreshInvalid", err)
	}

	// The rotated token still works.
	if _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Errorf("rotated token rejected: %v", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Refresh(context.Background(), "made-up"); !errors.Is(err, auth.ErrRefreshInvalid) {
		t.Errorf("Refresh = %v, want ErrRefreshInvalid", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, auth.ErrRefreshInvalid) {
		t.Errorf("Refresh(empty) = %v, want ErrRefreshInvalid", err)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, r, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "Ana", "secret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := svc.Login(ctx, "ana@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	hash := auth.HashRefreshToken(session.RefreshToken)
	token := r.tokens[hash]
	token.ExpiresAt = time.Now().Add(-time.Hour)
	r.tokens[hash] = token

	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, auth.ErrRefreshInvalid) {
		t.Errorf("Refresh(expired) = %v, want ErrRefreshInvalid", err)
	}
	if _, ok := r.tokens[hash]; ok {
		t.Error("expired record must be cleaned up on detection")
	}
}

func TestRefreshDeactivatedUserForcesLogout(t *testing.T) {
	svc, r, _, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "ana@example.com", "Ana", "secret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := svc.Login(ctx, "ana@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	u := r.users[user.ID]
	u.IsActive = false
	r.users[user.ID] = u

	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, auth.ErrUserInactive) {
		t.Errorf("Refresh = %v, want ErrUserInactive", err)
	}
	if len(r.tokens) != 0 {
		t.Errorf("expected every session of the user to be dropped, %d left", len(r.tokens))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, r, rd, rv := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ana@example.com", "Ana", "secret-pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	session, err := svc.Login(ctx, "ana@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := svc.JWT().Verify(session.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if err := svc.Logout(ctx, session.RefreshToken, claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	hash := auth.HashRefreshToken(session.RefreshToken)
	if _, ok := r.tokens[hash]; ok {
		t.Error("refresh record not deleted")
	}
	if _, ok := rd.values[auth.RefreshRedisKey(hash)]; ok {
		t.Error("redis marker not deleted")
	}
	if len(rv.revoked) != 1 || rv.revoked[0] != claims.ID {
		t.Errorf("access token jti not denylisted: %v", rv.revoked)
	}

	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, auth.ErrRefreshInvalid) {
		t.Errorf("post-logout refresh = %v, want ErrRefreshInvalid", err)
	}
}
