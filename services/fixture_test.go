package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"manoLogAPI/internal/clock"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/store/memory"
	"manoLogAPI/internal/types/mood"
)

// 2024-03-20 is a Wednesday; its week starts on Sunday 2024-03-17.
var wednesday = time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

func on(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *memory.DB
	cal dates.Calendar

	mu  sync.Mutex
	now time.Time

	streaks *StreakService
	moods   *MoodService
	trends  *TrendService
	stats   *StatsService
	users   *UserService

	clerkID string
	userID  uuid.UUID
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), db: memory.New(), cal: dates.UTC(), now: now}
	clk := clock.Func(f.clockNow)

	f.streaks = NewStreakService(f.db, f.db, clk, f.cal, StreakConfig{})
	f.moods = NewMoodService(f.db, f.db, f.streaks, clk)
	f.trends = NewTrendService(f.db, clk, f.cal)
	f.stats = NewStatsService(f.db, f.db, clk, f.cal)
	f.users = NewUserService(f.db)

	f.clerkID = "user_" + uuid.NewString()
	id, err := f.users.CreateUser(f.ctx, f.clerkID)
	require.NoError(t, err)
	f.userID = id
	return f
}

func (f *fixture) clockNow() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// log writes an entry through the full LogMood path.
func (f *fixture) log(t mood.Type, intensity int, at time.Time) *LoggedMood {
	f.t.Helper()
	logged, err := f.moods.LogMood(f.ctx, f.clerkID, &LogMoodRequest{MoodType: string(t), Intensity: intensity, LoggedAt: &at})
	require.NoError(f.t, err)
	return logged
}

// insert stores an entry without touching the streak.
func (f *fixture) insert(t mood.Type, intensity int, at time.Time) mood.Entry {
	f.t.Helper()
	e := mood.Entry{ID: uuid.New(), UserID: f.userID, MoodType: t, Intensity: intensity, LoggedAt: at}
	require.NoError(f.t, f.db.InsertMoodLog(f.ctx, e))
	return e
}
