package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"manoLogAPI/internal/store"
	"manoLogAPI/internal/types/mood"
)

func (d *DB) InsertMoodLog(ctx context.Context, e mood.Entry) error {
	query := `
	INSERT INTO mood_logs (id, user_id, mood_type, intensity, note, logged_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := d.pool.Exec(ctx, query, e.ID, e.UserID, string(e.MoodType), e.Intensity, e.Note, e.LoggedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert mood log: %w", err)
	}
	return nil
}

func (d *DB) DeleteMoodLog(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := d.pool.Exec(ctx, `DELETE FROM mood_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete mood log: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (d *DB) ListMoodLogs(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]mood.Entry, error) {
	query := `
	SELECT id, user_id, mood_type, intensity, note, logged_at
	FROM mood_logs
	WHERE user_id = $1
		AND logged_at >= $2
		AND logged_at < $3
	ORDER BY logged_at, created_at
	`

	rows, err := d.pool.Query(ctx, query, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mood logs: %w", err)
	}
	return scanEntries(rows)
}

func (d *DB) ListRecentMoodLogs(ctx context.Context, userID uuid.UUID, limit int) ([]mood.Entry, error) {
	query := `
	SELECT id, user_id, mood_type, intensity, note, logged_at
	FROM mood_logs
	WHERE user_id = $1
	ORDER BY logged_at DESC, created_at DESC
	LIMIT $2
	`

	rows, err := d.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent mood logs: %w", err)
	}
	return scanEntries(rows)
}

func (d *DB) MoodLogSummary(ctx context.Context, userID uuid.UUID) (store.Summary, error) {
	var s store.Summary
	err := d.pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(logged_at) FROM mood_logs WHERE user_id = $1`, userID,
	).Scan(&s.Total, &s.FirstLoggedAt)
	if err != nil {
		return store.Summary{}, fmt.Errorf("failed to summarize mood logs: %w", err)
	}
	return s, nil
}

func scanEntries(rows pgx.Rows) ([]mood.Entry, error) {
	defer rows.Close()

	var out []mood.Entry
	for rows.Next() {
		var e mood.Entry
		var moodType string
		if err := rows.Scan(&e.ID, &e.UserID, &moodType, &e.Intensity, &e.Note, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.MoodType = mood.Type(moodType)
		e.LoggedAt = e.LoggedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
