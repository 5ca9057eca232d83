package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetRefreshTokenByHash looks up a persisted refresh token.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	var t RefreshToken
	err := q.db.QueryRow(ctx, `
        SELECT id, user_id, token_hash, expires_at, revoked, created_at
        FROM refresh_tokens WHERE token_hash = $1`, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, ErrNotFound
		}
		return RefreshToken{}, err
	}
	return t, nil
}

// InsertRefreshTokenParams carries a new session record.
type InsertRefreshTokenParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

// InsertRefreshToken persists the hash of a freshly issued refresh token.
func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (RefreshToken, error) {
	var t RefreshToken
	err := q.db.QueryRow(ctx, `
        INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, user_id, token_hash, expires_at, revoked, created_at`,
		arg.ID, arg.UserID, arg.TokenHash, arg.ExpiresAt).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return RefreshToken{}, err
	}
	return t, nil
}

// DeleteRefreshToken removes a token by hash. Consumed and stale tokens are
// deleted rather than flagged so reuse cannot succeed.
func (q *Queries) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRefreshTokensByUser removes every session for a user (forced logout).
func (q *Queries) DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
