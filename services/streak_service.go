package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/clock"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/metrics"
	"manoLogAPI/internal/store"
	"manoLogAPI/internal/types/streak"
)

type StreakConfig struct {
	MaxAttempts      int
	SweepBatchSize   int
	SweepConcurrency int
}

func (c StreakConfig) withDefaults() StreakConfig {
	if c.MaxAttempts < 2 {
		c.MaxAttempts = 3
	}
	if c.SweepBatchSize < 1 {
		c.SweepBatchSize = 500
	}
	if c.SweepConcurrency < 1 {
		c.SweepConcurrency = 8
	}
	return c
}

// StreakService owns every write to the streak record. Writes go through a
// versioned compare-and-swap so concurrent logs from one user never act on
// a stale read.
type StreakService struct {
	streaks store.Streaks
	logs    store.MoodLogs
	clock   clock.Clock
	cal     dates.Calendar
	cfg     StreakConfig
}

func NewStreakService(streaks store.Streaks, logs store.MoodLogs, clk clock.Clock, cal dates.Calendar, cfg StreakConfig) *StreakService {
	return &StreakService{streaks: streaks, logs: logs, clock: clk, cal: cal, cfg: cfg.withDefaults()}
}

// SweepReport summarizes one repair sweep.
type SweepReport struct {
	UsersChecked  int                     `json:"users_checked"`
	UsersRepaired int                     `json:"users_repaired"`
	Failures      []apperrors.UserFailure `json:"failures"`
	Duration      string                  `json:"duration"`
}

// OnMoodLogged advances the user's streak for a log written at loggedAt. A
// log for a day before the last logged one may close a gap, so the streak
// is rebuilt from the stored logs instead.
func (s *StreakService) OnMoodLogged(ctx context.Context, userID uuid.UUID, loggedAt time.Time) (streak.Streak, error) {
	day := s.cal.DayOf(loggedAt)
	late := false
	st, _, err := s.update(ctx, userID, func(cur streak.Streak) (streak.Streak, bool) {
		late = cur.LastLoggedDate != nil && day.Before(*cur.LastLoggedDate)
		return cur.Advance(day)
	})
	if err != nil {
		return streak.Streak{}, err
	}
	if late {
		return s.RecomputeStreak(ctx, userID)
	}
	return st, nil
}

// GetStreak returns the streak as of today. A lapsed streak reads as zero
// even before the sweep has stored that.
func (s *StreakService) GetStreak(ctx context.Context, userID uuid.UUID) (streak.Streak, error) {
	st, err := s.streaks.GetStreak(ctx, userID)
	if err != nil {
		return streak.Streak{}, err
	}
	return st.Effective(s.cal.DayOf(s.clock.Now())), nil
}

// RecomputeStreak rebuilds the current streak from the full log history.
// The stored longest streak is never lowered.
func (s *StreakService) RecomputeStreak(ctx context.Context, userID uuid.UUID) (streak.Streak, error) {
	if _, err := s.streaks.GetStreak(ctx, userID); err != nil {
		return streak.Streak{}, err
	}

	today := s.cal.DayOf(s.clock.Now())
	entries, err := s.logs.ListMoodLogs(ctx, userID, time.Time{}, s.cal.End(today))
	if err != nil {
		return streak.Streak{}, err
	}
	buckets := aggregation.GroupByDay(entries, s.cal)
	days := make([]dates.Day, len(buckets))
	for i, b := range buckets {
		days[i] = b.Day
	}
	current, longest, last := streak.FromDays(days, today)

	st, changed, err := s.update(ctx, userID, func(cur streak.Streak) (streak.Streak, bool) {
		next := cur
		next.CurrentStreak = current
		next.LastLoggedDate = last
		next.LongestStreak = max(cur.LongestStreak, longest, current)
		same := next.CurrentStreak == cur.CurrentStreak &&
			next.LongestStreak == cur.LongestStreak &&
			sameDay(next.LastLoggedDate, cur.LastLoggedDate)
		return next, !same
	})
	if err != nil {
		return streak.Streak{}, err
	}
	if changed {
		log.Printf("Recomputed streak for user %s: current=%d longest=%d", userID, st.CurrentStreak, st.LongestStreak)
	}
	return st, nil
}

// RunStreakRepairSweep zeroes every current streak whose last log is older
// than yesterday. Users are paged in batches and repaired concurrently
// within a batch; a failed user is recorded and the sweep moves on. When
// any user failed, the report is returned together with a
// *apperrors.RepairError.
func (s *StreakService) RunStreakRepairSweep(ctx context.Context) (*SweepReport, error) {
	started := time.Now()
	today := s.cal.DayOf(s.clock.Now())
	report := &SweepReport{Failures: []apperrors.UserFailure{}}

	var mu sync.Mutex
	after := uuid.Nil
	for {
		ids, err := s.streaks.ListActiveStreakUsers(ctx, after, s.cfg.SweepBatchSize)
		if err != nil {
			return report, fmt.Errorf("failed to list active streaks: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		var g errgroup.Group
		g.SetLimit(s.cfg.SweepConcurrency)
		for _, id := range ids {
			g.Go(func() error {
				repaired, err := s.repair(ctx, id, today)

				mu.Lock()
				defer mu.Unlock()
				report.UsersChecked++
				switch {
				case err != nil:
					report.Failures = append(report.Failures, apperrors.UserFailure{UserID: id, Error: err.Error()})
					metrics.StreakRepairUsers.WithLabelValues("failed").Inc()
					log.Printf("Streak repair failed for user %s: %v", id, err)
				case repaired:
					report.UsersRepaired++
					metrics.StreakRepairUsers.WithLabelValues("repaired").Inc()
				default:
					metrics.StreakRepairUsers.WithLabelValues("unchanged").Inc()
				}
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil || len(ids) < s.cfg.SweepBatchSize {
			break
		}
		after = ids[len(ids)-1]
	}

	elapsed := time.Since(started)
	report.Duration = elapsed.String()
	metrics.StreakSweepDuration.Observe(elapsed.Seconds())

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].UserID.String() < report.Failures[j].UserID.String()
	})

	if err := ctx.Err(); err != nil {
		log.Printf("Streak repair sweep interrupted: %d checked, %d repaired, %d failed in %s: %v",
			report.UsersChecked, report.UsersRepaired, len(report.Failures), elapsed, err)
		return report, fmt.Errorf("streak repair sweep interrupted: %w", err)
	}
	log.Printf("Streak repair sweep finished: %d checked, %d repaired, %d failed in %s",
		report.UsersChecked, report.UsersRepaired, len(report.Failures), elapsed)

	if len(report.Failures) > 0 {
		return report, &apperrors.RepairError{Failures: report.Failures}
	}
	return report, nil
}

func (s *StreakService) repair(ctx context.Context, userID uuid.UUID, today dates.Day) (bool, error) {
	_, changed, err := s.update(ctx, userID, func(cur streak.Streak) (streak.Streak, bool) {
		return cur.Repair(today)
	})
	return changed, err
}

// update runs a read-modify-write on one user's streak, retrying with a
// fresh read when another writer got there first.
func (s *StreakService) update(ctx context.Context, userID uuid.UUID, fn func(streak.Streak) (streak.Streak, bool)) (streak.Streak, bool, error) {
	for attempt := 1; ; attempt++ {
		cur, err := s.streaks.GetStreak(ctx, userID)
		if err != nil {
			return streak.Streak{}, false, err
		}

		next, changed := fn(cur)
		if !changed {
			return cur, false, nil
		}
		next.UserID = userID
		next.UpdatedAt = s.clock.Now().UTC()

		err = s.streaks.CompareAndSwapStreak(ctx, next, cur.Version)
		if err == nil {
			next.Version = cur.Version + 1
			return next, true, nil
		}
		if !errors.Is(err, apperrors.ErrConcurrentUpdate) {
			return streak.Streak{}, false, err
		}

		metrics.StreakAdvanceConflicts.Inc()
		if attempt >= s.cfg.MaxAttempts {
			return streak.Streak{}, false, fmt.Errorf("streak update for user %s gave up after %d attempts: %w", userID, attempt, err)
		}
		log.Printf("Streak write conflict for user %s, retrying (attempt %d/%d)", userID, attempt, s.cfg.MaxAttempts)
	}
}

func sameDay(a, b *dates.Day) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
