package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListHolidays returns all holidays ordered by date.
func (q *Queries) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, date, created_at FROM holidays ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// InsertHoliday registers a non-working day.
func (q *Queries) InsertHoliday(ctx context.Context, id uuid.UUID, name string, date time.Time) (Holiday, error) {
	var h Holiday
	err := q.db.QueryRow(ctx, `
        INSERT INTO holidays (id, name, date) VALUES ($1, $2, $3)
        RETURNING id, name, date, created_at`, id, name, date).
		Scan(&h.ID, &h.Name, &h.Date, &h.CreatedAt)
	if err != nil {
		return Holiday{}, err
	}
	return h, nil
}

// UpdateHoliday rewrites a holiday.
func (q *Queries) UpdateHoliday(ctx context.Context, id uuid.UUID, name string, date time.Time) error {
	cmd, err := q.db.Exec(ctx, `UPDATE holidays SET name = $2, date = $3 WHERE id = $1`, id, name, date)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHoliday removes a holiday.
func (q *Queries) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	cmd, err := q.db.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetHolidayByID fetches a holiday by primary key.
func (q *Queries) GetHolidayByID(ctx context.Context, id uuid.UUID) (Holiday, error) {
	var h Holiday
	err := q.db.QueryRow(ctx, `SELECT id, name, date, created_at FROM holidays WHERE id = $1`, id).
		Scan(&h.ID, &h.Name, &h.Date, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Holiday{}, ErrNotFound
		}
		return Holiday{}, err
	}
	return h, nil
}
