package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/clock"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/store"
	"manoLogAPI/internal/types/calendar"
	"manoLogAPI/internal/types/mood"
	"manoLogAPI/internal/weekly_stats"
)

const (
	weeksInRollup   = 12
	weeksAlwaysKept = 4
	monthsInRollup  = 6
)

// TrendService builds the read-time views over a user's mood log. Nothing
// it derives is stored.
type TrendService struct {
	logs  store.MoodLogs
	clock clock.Clock
	cal   dates.Calendar
}

func NewTrendService(logs store.MoodLogs, clk clock.Clock, cal dates.Calendar) *TrendService {
	return &TrendService{logs: logs, clock: clk, cal: cal}
}

func (s *TrendService) checkRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", apperrors.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if start.After(s.clock.Now()) {
		return fmt.Errorf("%w: range starts in the future", apperrors.ErrInvalidRange)
	}
	return nil
}

// GetDailyAggregates reduces every day in [start, end) under policy.
func (s *TrendService) GetDailyAggregates(ctx context.Context, userID uuid.UUID, start, end time.Time, policy aggregation.Policy) (map[dates.Day]aggregation.DayAggregate, error) {
	p, err := aggregation.ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}
	if err := s.checkRange(start, end); err != nil {
		return nil, err
	}

	entries, err := s.logs.ListMoodLogs(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return aggregation.Aggregate(entries, p, s.cal)
}

// GetPeriodMoodCounts tallies every raw entry in [start, end).
func (s *TrendService) GetPeriodMoodCounts(ctx context.Context, userID uuid.UUID, start, end time.Time) (aggregation.Counts, error) {
	if err := s.checkRange(start, end); err != nil {
		return aggregation.Counts{}, err
	}

	entries, err := s.logs.ListMoodLogs(ctx, userID, start, end)
	if err != nil {
		return aggregation.Counts{}, err
	}
	return aggregation.Count(entries), nil
}

// GetWeeklyRollup returns up to twelve Sunday–Saturday weeks ending with the
// current one, oldest first. The four most recent weeks are always present;
// older weeks only when they hold at least one log.
func (s *TrendService) GetWeeklyRollup(ctx context.Context, userID uuid.UUID, policy aggregation.Policy) (*weekly_stats.WeeklyRollup, error) {
	p, err := aggregation.ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	today := s.cal.DayOf(s.clock.Now())
	first := dates.WeekStart(today).AddDays(-7 * (weeksInRollup - 1))

	buckets, aggs, err := s.loadDays(ctx, userID, first, today, p)
	if err != nil {
		return nil, err
	}

	rollup := &weekly_stats.WeeklyRollup{Policy: p, Today: today, Weeks: []weekly_stats.WeekPeriod{}}
	for w := 0; w < weeksInRollup; w++ {
		start := first.AddDays(7 * w)
		if start.After(today) {
			break
		}
		end := dates.Min(start.AddDays(6), today)
		lo, hi := span(buckets, start, end)

		week := weekly_stats.WeekPeriod{
			Start:         start,
			End:           end,
			IsCurrent:     w == weeksInRollup-1,
			DaysLogged:    hi - lo,
			Bars:          make([]weekly_stats.DayBar, 0, hi-lo),
			AllMoodCounts: aggregation.Count(flatten(buckets[lo:hi])),
		}
		for i := lo; i < hi; i++ {
			week.Bars = append(week.Bars, bar(buckets[i], aggs[i]))
		}

		recent := w >= weeksInRollup-weeksAlwaysKept
		if recent || week.DaysLogged > 0 {
			rollup.Weeks = append(rollup.Weeks, week)
		}
	}
	return rollup, nil
}

// GetMonthlyRollup returns the six calendar months ending with the current
// one, oldest first. Each month carries one calendar slot per day and, next
// to it, the raw tally for the month.
func (s *TrendService) GetMonthlyRollup(ctx context.Context, userID uuid.UUID, policy aggregation.Policy) (*calendar.MonthlyRollup, error) {
	p, err := aggregation.ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	today := s.cal.DayOf(s.clock.Now())
	first := dates.AddMonths(today, -(monthsInRollup - 1))

	buckets, aggs, err := s.loadDays(ctx, userID, first, today, p)
	if err != nil {
		return nil, err
	}
	byDay := make(map[dates.Day]aggregation.DayAggregate, len(aggs))
	for _, a := range aggs {
		byDay[a.Day] = a
	}

	rollup := &calendar.MonthlyRollup{Policy: p, Today: today, Months: make([]calendar.MonthPeriod, 0, monthsInRollup)}
	for m := 0; m < monthsInRollup; m++ {
		start := dates.AddMonths(first, m)
		year, month, _ := start.Date()
		n := dates.DaysIn(year, month)
		end := dates.Min(start.AddDays(n-1), today)

		period := calendar.MonthPeriod{
			Year:      year,
			Month:     int(month),
			Start:     start,
			End:       end,
			Days:      make([]int, n),
			IsCurrent: m == monthsInRollup-1,
		}
		for i := range period.Days {
			period.Days[i] = calendar.NoData
			if a, ok := byDay[start.AddDays(i)]; ok {
				period.Days[i] = valenceOf(a.Representative)
				period.DaysLogged++
			}
		}
		lo, hi := span(buckets, start, end)
		period.MoodCounts = aggregation.Count(flatten(buckets[lo:hi]))

		rollup.Months = append(rollup.Months, period)
	}
	return rollup, nil
}

// loadDays reads [from, to] in one query and returns the day buckets with
// their aggregates, index-aligned.
func (s *TrendService) loadDays(ctx context.Context, userID uuid.UUID, from, to dates.Day, p aggregation.Policy) ([]aggregation.DayBucket, []aggregation.DayAggregate, error) {
	entries, err := s.logs.ListMoodLogs(ctx, userID, s.cal.Start(from), s.cal.End(to))
	if err != nil {
		return nil, nil, err
	}
	buckets := aggregation.GroupByDay(entries, s.cal)
	aggs, err := aggregation.AggregateBuckets(buckets, p, s.cal)
	if err != nil {
		return nil, nil, err
	}
	return buckets, aggs, nil
}

// span returns the index range of buckets whose day lies in [start, end].
func span(buckets []aggregation.DayBucket, start, end dates.Day) (int, int) {
	lo := sort.Search(len(buckets), func(i int) bool { return !buckets[i].Day.Before(start) })
	hi := sort.Search(len(buckets), func(i int) bool { return buckets[i].Day.After(end) })
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func flatten(buckets []aggregation.DayBucket) []mood.Entry {
	var out []mood.Entry
	for _, b := range buckets {
		out = append(out, b.Entries...)
	}
	return out
}

func bar(b aggregation.DayBucket, a aggregation.DayAggregate) weekly_stats.DayBar {
	return weekly_stats.DayBar{
		Day:            b.Day,
		Weekday:        b.Day.Weekday().String(),
		Representative: a.Representative,
		Valence:        valenceOf(a.Representative),
		Entries:        b.Entries,
		DayStats:       a.Stats,
	}
}

func valenceOf(e mood.Entry) int {
	v, ok := e.MoodType.Valence()
	if !ok {
		v, _ = mood.Neutral.Valence()
	}
	return v
}
