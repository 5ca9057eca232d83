package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetSetting fetches one persisted setting.
func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	var s Setting
	err := q.db.QueryRow(ctx, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	return s, nil
}

// UpsertSetting writes a setting, replacing any previous value.
func (q *Queries) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := q.db.Exec(ctx, `
        INSERT INTO settings (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	return err
}

// ListSettings returns every persisted setting.
func (q *Queries) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := q.db.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
