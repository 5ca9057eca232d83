package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/db"
	"github.com/painai/api/internal/repo"
	"github.com/painai/api/internal/util"
)

var (
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates a deactivated account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrEmailTaken indicates a registration conflict.
	ErrEmailTaken = errors.New("email already registered")
)

type authRepository interface {
	GetUserByEmail(ctx context.Context, email string) (repo.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (repo.User, error)
	InsertUser(ctx context.Context, arg repo.InsertUserParams) (repo.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.RefreshToken, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, tokenHash string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) error
	InsertActivityLog(ctx context.Context, id uuid.UUID, userID *uuid.UUID, action string, detail *string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type tokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// AuthService concentrates authentication and session rules.
type AuthService struct {
	repo       authRepository
	pool       *pgxpool.Pool
	redis      redisCommander
	jwt        *auth.JWTManager
	denylist   tokenRevoker
	refreshTTL time.Duration
}

// NewAuthService creates the service. pool may be nil in tests; refresh
// rotation then runs without an explicit transaction.
func NewAuthService(r authRepository, pool *pgxpool.Pool, redisClient redisCommander, jwtMgr *auth.JWTManager, denylist tokenRevoker, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, pool: pool, redis: redisClient, jwt: jwtMgr, denylist: denylist, refreshTTL: refreshTTL}
}

// JWT exposes the token manager (used by middleware).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Session is the result of a successful login or refresh.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         repo.User `json:"-"`
}

// Register creates a new account with the USER role.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (repo.User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return repo.User{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return repo.User{}, err
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return repo.User{}, err
	}

	user, err := s.repo.InsertUser(ctx, repo.InsertUserParams{
		ID:       uuid.New(),
		Email:    strings.ToLower(email),
		Name:     name,
		Role:     auth.RoleUser,
		PassHash: hash,
	})
	if err != nil {
		return repo.User{}, err
	}

	s.logActivity(ctx, &user.ID, "user.registered", nil)
	return user, nil
}

// Login authenticates by e-mail and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: user not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.PassHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: password verify failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, util.Now()); err != nil {
		log.Warn().Err(err).Msg("login: touch last_login failed")
	}

	session, err := s.issueSession(ctx, user, "")
	if err != nil {
		return nil, err
	}

	s.logActivity(ctx, &user.ID, "auth.login", nil)
	return session, nil
}

// Refresh exchanges a refresh token for a new pair. Refresh tokens are
// single-use: the consumed record is deleted in the same transaction that
// persists the replacement, so a replayed token fails lookup.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*Session, error) {
	if rawToken == "" {
		return nil, auth.ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, auth.ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revoked || util.Now().After(record.ExpiresAt) {
		s.cleanupRefresh(ctx, hash)
		return nil, auth.ErrRefreshInvalid
	}

	if status, err := s.redis.Get(ctx, auth.RefreshRedisKey(hash)).Result(); err == redis.Nil || (err == nil && status != "active") {
		s.cleanupRefresh(ctx, hash)
		return nil, auth.ErrRefreshInvalid
	} else if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.cleanupRefresh(ctx, hash)
			return nil, auth.ErrRefreshInvalid
		}
		return nil, err
	}

	if !user.IsActive {
		// Forced logout: a deactivated account loses every session lineage.
		if err := s.repo.DeleteRefreshTokensByUser(ctx, user.ID); err != nil {
			log.Warn().Err(err).Msg("refresh: forced logout cleanup failed")
		}
		if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
			log.Warn().Err(err).Msg("refresh: redis cleanup failed")
		}
		return nil, auth.ErrUserInactive
	}

	session, err := s.issueSession(ctx, user, hash)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return session, nil
}

// Logout revokes the current session: the refresh token is deleted and the
// access token's jti goes on the denylist until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, rawRefresh, jti string, accessExpiry time.Time) error {
	if rawRefresh != "" {
		hash := auth.HashRefreshToken(rawRefresh)
		if err := s.repo.DeleteRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
			return err
		}
	}

	if jti != "" {
		if err := s.denylist.Revoke(ctx, jti, accessExpiry); err != nil {
			return err
		}
	}

	return nil
}

// GetUserByID loads a profile.
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (repo.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// issueSession creates the access/refresh pair. When consumedHash is set the
// consumed record is deleted atomically with the insert of its replacement.
func (s *AuthService) issueSession(ctx context.Context, user repo.User, consumedHash string) (*Session, error) {
	accessToken, _, err := s.jwt.Issue(user.ID.String(), user.Email, user.Role, user.Name)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	params := repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: expires,
	}

	if s.pool != nil && consumedHash != "" {
		err = db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
			q := repo.New(tx)
			if err := q.DeleteRefreshToken(ctx, consumedHash); err != nil && !errors.Is(err, repo.ErrNotFound) {
				return err
			}
			_, err := q.InsertRefreshToken(ctx, params)
			return err
		})
	} else {
		if consumedHash != "" {
			if derr := s.repo.DeleteRefreshToken(ctx, consumedHash); derr != nil && !errors.Is(derr, repo.ErrNotFound) {
				return nil, derr
			}
		}
		_, err = s.repo.InsertRefreshToken(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, auth.RefreshRedisKey(refreshHash), "active", time.Until(expires)).Err(); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// cleanupRefresh deletes a stale or revoked record on detection.
func (s *AuthService) cleanupRefresh(ctx context.Context, hash string) {
	if err := s.repo.DeleteRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		log.Warn().Err(err).Msg("refresh: stale token cleanup failed")
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		log.Warn().Err(err).Msg("refresh: redis cleanup failed")
	}
}

func (s *AuthService) logActivity(ctx context.Context, userID *uuid.UUID, action string, detail *string) {
	if err := s.repo.InsertActivityLog(ctx, uuid.New(), userID, action, detail); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("activity log write failed")
	}
}
