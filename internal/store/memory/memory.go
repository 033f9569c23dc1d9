// Package memory implements the store in process memory, for development
// and tests.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/store"
	"manoLogAPI/internal/types/mood"
	"manoLogAPI/internal/types/streak"
)

// DB is an in-memory store guarded by a single RWMutex.
type DB struct {
	mu      sync.RWMutex
	users   map[string]uuid.UUID
	logs    map[uuid.UUID][]mood.Entry
	streaks map[uuid.UUID]streak.Streak
}

var _ store.Store = (*DB)(nil)

// New creates an empty store.
func New() *DB {
	return &DB{
		users:   make(map[string]uuid.UUID),
		logs:    make(map[uuid.UUID][]mood.Entry),
		streaks: make(map[uuid.UUID]streak.Streak),
	}
}

func (db *DB) Ping(context.Context) error { return nil }

func (db *DB) Close() {}

// --- Users ---

func (db *DB) EnsureUser(_ context.Context, clerkID string) (uuid.UUID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if id, ok := db.users[clerkID]; ok {
		return id, nil
	}
	id := uuid.New()
	db.users[clerkID] = id
	return id, nil
}

func (db *DB) UserIDByClerkID(_ context.Context, clerkID string) (uuid.UUID, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	id, ok := db.users[clerkID]
	if !ok {
		return uuid.Nil, apperrors.ErrUserNotFound
	}
	return id, nil
}

func (db *DB) DeleteUserByClerkID(_ context.Context, clerkID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	id, ok := db.users[clerkID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	delete(db.users, clerkID)
	delete(db.logs, id)
	delete(db.streaks, id)
	return nil
}

func (db *DB) userExists(id uuid.UUID) bool {
	for _, u := range db.users {
		if u == id {
			return true
		}
	}
	return false
}

// --- MoodLogs ---

func (db *DB) InsertMoodLog(_ context.Context, e mood.Entry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.userExists(e.UserID) {
		return apperrors.ErrUserNotFound
	}
	e.LoggedAt = e.LoggedAt.UTC()
	logs := append(db.logs[e.UserID], e)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].LoggedAt.Before(logs[j].LoggedAt) })
	db.logs[e.UserID] = logs
	return nil
}

func (db *DB) DeleteMoodLog(_ context.Context, userID, id uuid.UUID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	logs := db.logs[userID]
	for i, e := range logs {
		if e.ID == id {
			db.logs[userID] = append(logs[:i:i], logs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (db *DB) ListMoodLogs(_ context.Context, userID uuid.UUID, start, end time.Time) ([]mood.Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []mood.Entry
	for _, e := range db.logs[userID] {
		if !e.LoggedAt.Before(start) && e.LoggedAt.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (db *DB) ListRecentMoodLogs(_ context.Context, userID uuid.UUID, limit int) ([]mood.Entry, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	logs := db.logs[userID]
	out := make([]mood.Entry, 0, limit)
	for i := len(logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, logs[i])
	}
	return out, nil
}

func (db *DB) MoodLogSummary(_ context.Context, userID uuid.UUID) (store.Summary, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	logs := db.logs[userID]
	s := store.Summary{Total: len(logs)}
	if len(logs) > 0 {
		first := logs[0].LoggedAt
		s.FirstLoggedAt = &first
	}
	return s, nil
}

// --- Streaks ---

func (db *DB) GetStreak(_ context.Context, userID uuid.UUID) (streak.Streak, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if !db.userExists(userID) {
		return streak.Streak{}, apperrors.ErrUserNotFound
	}
	s, ok := db.streaks[userID]
	if !ok {
		return streak.Streak{UserID: userID}, nil
	}
	if s.LastLoggedDate != nil {
		d := *s.LastLoggedDate
		s.LastLoggedDate = &d
	}
	return s, nil
}

func (db *DB) CompareAndSwapStreak(_ context.Context, next streak.Streak, expected int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !db.userExists(next.UserID) {
		return apperrors.ErrUserNotFound
	}
	cur := db.streaks[next.UserID]
	if cur.Version != expected {
		return apperrors.ErrConcurrentUpdate
	}
	if next.LastLoggedDate != nil {
		d := *next.LastLoggedDate
		next.LastLoggedDate = &d
	}
	next.Version = expected + 1
	next.UpdatedAt = next.UpdatedAt.UTC()
	db.streaks[next.UserID] = next
	return nil
}

func (db *DB) ListActiveStreakUsers(_ context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var ids []uuid.UUID
	for id, s := range db.streaks {
		if s.CurrentStreak > 0 && bytes.Compare(id[:], after[:]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
