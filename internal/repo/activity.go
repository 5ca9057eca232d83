package repo

import (
	"context"

	"github.com/google/uuid"
)

// InsertActivityLog appends an audit record.
func (q *Queries) InsertActivityLog(ctx context.Context, id uuid.UUID, userID *uuid.UUID, action string, detail *string) error {
	_, err := q.db.Exec(ctx, `
        INSERT INTO activity_logs (id, user_id, action, detail) VALUES ($1, $2, $3, $4)`,
		id, userID, action, detail)
	return err
}

// ListActivityLogs returns a page of audit records, newest first.
func (q *Queries) ListActivityLogs(ctx context.Context, page, limit int) ([]ActivityLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	rows, err := q.db.Query(ctx, `
        SELECT id, user_id, action, detail, created_at
        FROM activity_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []ActivityLog
	for rows.Next() {
		var l ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
