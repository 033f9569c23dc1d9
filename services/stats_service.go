package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/clock"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/stats"
	"manoLogAPI/internal/store"
	"manoLogAPI/internal/types/mood"
	"manoLogAPI/internal/types/streak"
)

// StatsService composes the summary screen. It reads streaks but never
// writes them.
type StatsService struct {
	logs    store.MoodLogs
	streaks store.Streaks
	clock   clock.Clock
	cal     dates.Calendar
}

func NewStatsService(logs store.MoodLogs, streaks store.Streaks, clk clock.Clock, cal dates.Calendar) *StatsService {
	return &StatsService{logs: logs, streaks: streaks, clock: clk, cal: cal}
}

func (s *StatsService) GetMoodStatistics(ctx context.Context, userID uuid.UUID, policy aggregation.Policy) (*stats.MoodStatistics, error) {
	p, err := aggregation.ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	today := s.cal.DayOf(s.clock.Now())
	weekStart := dates.WeekStart(today)

	var (
		st      streak.Streak
		week    []mood.Entry
		summary store.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st, err = s.streaks.GetStreak(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		week, err = s.logs.ListMoodLogs(gctx, userID, s.cal.Start(weekStart), s.cal.End(today))
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.logs.MoodLogSummary(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggs, err := aggregation.AggregateBuckets(aggregation.GroupByDay(week, s.cal), p, s.cal)
	if err != nil {
		return nil, err
	}
	st = st.Effective(today)

	out := &stats.MoodStatistics{
		Policy:                p,
		Today:                 today,
		CurrentStreak:         st.CurrentStreak,
		LongestStreak:         st.LongestStreak,
		LastLoggedDate:        st.LastLoggedDate,
		AllMoodCountsThisWeek: aggregation.Count(week),
		ThisWeek: stats.WeekSummary{
			Start:      weekStart,
			End:        today,
			DaysLogged: len(aggs),
		},
		Overall: s.overall(summary, today),
	}

	if len(aggs) > 0 {
		reps := make([]mood.Entry, len(aggs))
		var sumIntensity, sumValence int
		for i, a := range aggs {
			reps[i] = a.Representative
			sumIntensity += a.Representative.Intensity
			sumValence += valenceOf(a.Representative)
		}
		dominant, err := p.Reduce(reps, s.cal)
		if err != nil {
			return nil, err
		}
		out.DominantMoodThisWeek = &dominant
		out.ThisWeek.DominantMood = &dominant
		out.ThisWeek.AverageIntensity = round2(float64(sumIntensity) / float64(len(aggs)))
		out.ThisWeek.AverageValence = round2(float64(sumValence) / float64(len(aggs)))
	}

	return out, nil
}

func (s *StatsService) overall(sum store.Summary, today dates.Day) stats.OverallStats {
	o := stats.OverallStats{TotalEntries: sum.Total}
	if sum.FirstLoggedAt == nil {
		return o
	}
	first := sum.FirstLoggedAt.UTC()
	o.FirstEntryAt = &first
	o.DaysSinceFirstEntry = max(dates.Between(s.cal.DayOf(first), today), 0)
	o.DaysTracked = o.DaysSinceFirstEntry + 1
	o.AverageEntriesPerDay = round2(float64(sum.Total) / float64(o.DaysTracked))
	return o
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
