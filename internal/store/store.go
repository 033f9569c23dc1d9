// Package store declares the storage collaborators the mood core reads and
// writes through. Implementations live in store/postgres and store/memory.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"manoLogAPI/internal/types/mood"
	"manoLogAPI/internal/types/streak"
)

// Summary is the lifetime totals for one user.
type Summary struct {
	Total         int
	FirstLoggedAt *time.Time
}

// MoodLogs is the append-only mood log.
type MoodLogs interface {
	InsertMoodLog(ctx context.Context, e mood.Entry) error
	DeleteMoodLog(ctx context.Context, userID, id uuid.UUID) (bool, error)
	// ListMoodLogs returns entries with start <= loggedAt < end, ascending.
	ListMoodLogs(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]mood.Entry, error)
	ListRecentMoodLogs(ctx context.Context, userID uuid.UUID, limit int) ([]mood.Entry, error)
	MoodLogSummary(ctx context.Context, userID uuid.UUID) (Summary, error)
}

// Streaks holds one streak record per user.
type Streaks interface {
	// GetStreak returns apperrors.ErrUserNotFound for unknown users and a
	// zero record (Version 0) for known users that never logged.
	GetStreak(ctx context.Context, userID uuid.UUID) (streak.Streak, error)
	// CompareAndSwapStreak stores next only if the stored version still
	// equals expected; otherwise it returns apperrors.ErrConcurrentUpdate.
	// next.UpdatedAt is stored as given.
	CompareAndSwapStreak(ctx context.Context, next streak.Streak, expected int64) error
	// ListActiveStreakUsers pages through users with a current streak above
	// zero, ordered by id, starting after the given id.
	ListActiveStreakUsers(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

// Users maps identity-provider subjects to internal user ids.
type Users interface {
	EnsureUser(ctx context.Context, clerkID string) (uuid.UUID, error)
	UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

// Store is everything a storage backend provides.
type Store interface {
	MoodLogs
	Streaks
	Users
	Ping(ctx context.Context) error
	Close()
}
