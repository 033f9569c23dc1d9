package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"manoLogAPI/internal/apperrors"
)

// EnsureUser returns the id for clerkID, creating the user on first sight.
func (d *DB) EnsureUser(ctx context.Context, clerkID string) (uuid.UUID, error) {
	query := `
	INSERT INTO users (id, clerk_id)
	VALUES ($1, $2)
	ON CONFLICT (clerk_id) DO UPDATE SET clerk_id = EXCLUDED.clerk_id
	RETURNING id
	`

	var id uuid.UUID
	if err := d.pool.QueryRow(ctx, query, uuid.New(), clerkID).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return id, nil
}

func (d *DB) UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := d.pool.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperrors.ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("database error: %w", err)
	}
	return id, nil
}

// DeleteUserByClerkID removes the user; logs and streak go with it by cascade.
func (d *DB) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
