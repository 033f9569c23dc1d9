package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/streak"
)

func (d *DB) GetStreak(ctx context.Context, userID uuid.UUID) (streak.Streak, error) {
	query := `
	SELECT u.id, s.current_streak, s.longest_streak, s.last_logged_date, s.version, s.updated_at
	FROM users u
	LEFT JOIN mood_streaks s ON s.user_id = u.id
	WHERE u.id = $1
	`

	var (
		st        streak.Streak
		current   *int
		longest   *int
		lastDate  *time.Time
		version   *int64
		updatedAt *time.Time
	)
	err := d.pool.QueryRow(ctx, query, userID).Scan(&st.UserID, &current, &longest, &lastDate, &version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return streak.Streak{}, apperrors.ErrUserNotFound
		}
		return streak.Streak{}, fmt.Errorf("failed to get streak: %w", err)
	}

	if version == nil {
		return st, nil
	}
	st.CurrentStreak = *current
	st.LongestStreak = *longest
	st.Version = *version
	st.UpdatedAt = *updatedAt
	if lastDate != nil {
		day := dates.UTC().DayOf(time.Date(lastDate.Year(), lastDate.Month(), lastDate.Day(), 0, 0, 0, 0, time.UTC))
		st.LastLoggedDate = &day
	}
	return st, nil
}

func (d *DB) CompareAndSwapStreak(ctx context.Context, next streak.Streak, expected int64) error {
	var lastDate *time.Time
	if next.LastLoggedDate != nil {
		y, m, dd := next.LastLoggedDate.Date()
		t := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
		lastDate = &t
	}

	var query string
	if expected == 0 {
		query = `
		INSERT INTO mood_streaks (user_id, current_streak, longest_streak, last_logged_date, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (user_id) DO NOTHING
		`
	} else {
		query = `
		UPDATE mood_streaks
		SET current_streak = $2,
			longest_streak = $3,
			last_logged_date = $4,
			version = version + 1,
			updated_at = $5
		WHERE user_id = $1 AND version = $6
		`
	}

	args := []any{next.UserID, next.CurrentStreak, next.LongestStreak, lastDate, next.UpdatedAt.UTC()}
	if expected != 0 {
		args = append(args, expected)
	}

	tag, err := d.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to write streak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConcurrentUpdate
	}
	return nil
}

func (d *DB) ListActiveStreakUsers(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT user_id
	FROM mood_streaks
	WHERE current_streak > 0 AND user_id > $1
	ORDER BY user_id
	LIMIT $2
	`

	rows, err := d.pool.Query(ctx, query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active streaks: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
