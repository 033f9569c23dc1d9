package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/clock"
	"manoLogAPI/internal/metrics"
	"manoLogAPI/internal/store"
	"manoLogAPI/internal/types/mood"
	"manoLogAPI/internal/types/streak"
)

const (
	maxFutureSkew = 5 * time.Minute
	maxNoteLength = 1000
	defaultRecent = 20
	maxRecent     = 100
)

type LogMoodRequest struct {
	MoodType  string     `json:"mood_type"`
	Intensity int        `json:"intensity"`
	Note      *string    `json:"note,omitempty"`
	LoggedAt  *time.Time `json:"logged_at,omitempty"`
}

// LoggedMood is the stored entry plus the streak after it. Streak is nil
// when the entry was stored but neither the advance nor the rebuild went
// through.
type LoggedMood struct {
	Entry  mood.Entry     `json:"entry"`
	Streak *streak.Streak `json:"streak"`
}

// MoodService is the write side of the mood log.
type MoodService struct {
	users   store.Users
	logs    store.MoodLogs
	streaks *StreakService
	clock   clock.Clock
}

func NewMoodService(users store.Users, logs store.MoodLogs, streaks *StreakService, clk clock.Clock) *MoodService {
	return &MoodService{users: users, logs: logs, streaks: streaks, clock: clk}
}

// ResolveUser maps a Clerk subject to the internal user id.
func (s *MoodService) ResolveUser(ctx context.Context, clerkID string) (uuid.UUID, error) {
	return s.users.UserIDByClerkID(ctx, clerkID)
}

// LogMood validates and stores one entry, then advances the streak.
func (s *MoodService) LogMood(ctx context.Context, clerkID string, req *LogMoodRequest) (*LoggedMood, error) {
	t, err := mood.ParseType(req.MoodType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidEntry, err)
	}

	now := s.clock.Now()
	loggedAt := now
	if req.LoggedAt != nil {
		loggedAt = *req.LoggedAt
	}
	if loggedAt.After(now.Add(maxFutureSkew)) {
		return nil, fmt.Errorf("%w: logged_at is in the future", apperrors.ErrInvalidEntry)
	}

	var note *string
	if req.Note != nil {
		n := strings.TrimSpace(*req.Note)
		if len(n) > maxNoteLength {
			return nil, fmt.Errorf("%w: note exceeds %d characters", apperrors.ErrInvalidEntry, maxNoteLength)
		}
		if n != "" {
			note = &n
		}
	}

	e := mood.Entry{
		ID:        uuid.New(),
		MoodType:  t,
		Intensity: req.Intensity,
		Note:      note,
		LoggedAt:  loggedAt.UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidEntry, err)
	}

	userID, err := s.users.EnsureUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	e.UserID = userID

	if err := s.logs.InsertMoodLog(ctx, e); err != nil {
		return nil, err
	}
	metrics.MoodLogsCreated.WithLabelValues(string(t)).Inc()

	out := &LoggedMood{Entry: e}
	st, err := s.streaks.OnMoodLogged(ctx, userID, e.LoggedAt)
	if err != nil {
		// The entry is already stored, so a rebuild from the logs includes it.
		log.Printf("Streak advance failed for user %s, recomputing: %v", userID, err)
		st, err = s.streaks.RecomputeStreak(ctx, userID)
	}
	if err != nil {
		log.Printf("Mood log %s stored but streak update failed for user %s: %v", e.ID, userID, err)
		return out, nil
	}
	out.Streak = &st
	return out, nil
}

// DeleteMoodLog removes one of the user's entries. Streaks are left as they
// are; a recompute reconciles them.
func (s *MoodService) DeleteMoodLog(ctx context.Context, clerkID string, id uuid.UUID) error {
	userID, err := s.users.UserIDByClerkID(ctx, clerkID)
	if err != nil {
		return err
	}
	ok, err := s.logs.DeleteMoodLog(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mood log %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// ListRecent returns the newest entries first. limit is clamped to
// [1, 100]; zero means the default page.
func (s *MoodService) ListRecent(ctx context.Context, clerkID string, limit int) ([]mood.Entry, error) {
	switch {
	case limit <= 0:
		limit = defaultRecent
	case limit > maxRecent:
		limit = maxRecent
	}

	userID, err := s.users.UserIDByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	entries, err := s.logs.ListRecentMoodLogs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []mood.Entry{}
	}
	return entries, nil
}
