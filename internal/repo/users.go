package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, role, pass_hash, is_active, created_at, updated_at, last_login`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PassHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by e-mail (case-insensitive).
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, strings.ToLower(email))
	return scanUser(row)
}

// InsertUserParams carries the fields required at registration.
type InsertUserParams struct {
	ID       uuid.UUID
	Email    string
	Name     string
	Role     string
	PassHash string
}

// InsertUser creates a new active user.
func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
        INSERT INTO users (id, email, name, role, pass_hash, is_active)
        VALUES ($1, lower($2), $3, $4, $5, TRUE)
        RETURNING `+userColumns,
		arg.ID, arg.Email, arg.Name, arg.Role, arg.PassHash)
	return scanUser(row)
}

// UpdateUserProfile changes name and e-mail.
func (q *Queries) UpdateUserProfile(ctx context.Context, id uuid.UUID, name, email string) error {
	cmd, err := q.db.Exec(ctx, `
        UPDATE users SET name = $2, email = lower($3), updated_at = now()
        WHERE id = $1`, id, name, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUserRole changes a user's role.
func (q *Queries) UpdateUserRole(ctx context.Context, id uuid.UUID, role string) error {
	cmd, err := q.db.Exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserActive activates or deactivates an account.
func (q *Queries) SetUserActive(ctx context.Context, id uuid.UUID, active bool) error {
	cmd, err := q.db.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login.
func (q *Queries) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

// ListUsers returns all users, active first, newest first.
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, `
        SELECT `+userColumns+` FROM users
        ORDER BY is_active DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PassHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
