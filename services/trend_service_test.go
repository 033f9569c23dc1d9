package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/calendar"
	"manoLogAPI/internal/types/mood"
)

func TestDailyAggregatesScenario(t *testing.T) {
	f := newFixture(t, on(3, 6, 12))
	f.insert(mood.Happy, 8, on(3, 4, 9))
	f.insert(mood.Sad, 3, on(3, 4, 21))
	f.insert(mood.Happy, 9, on(3, 6, 8))
	start, end := f.cal.Start("2024-03-04"), f.cal.End("2024-03-06")

	latest, err := f.trends.GetDailyAggregates(f.ctx, f.userID, start, end, aggregation.Latest)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, mood.Sad, latest["2024-03-04"].Representative.MoodType)
	assert.Equal(t, 3, latest["2024-03-04"].Representative.Intensity)

	frequent, err := f.trends.GetDailyAggregates(f.ctx, f.userID, start, end, aggregation.MostFrequent)
	require.NoError(t, err)
	assert.Equal(t, mood.Happy, frequent["2024-03-04"].Representative.MoodType)
	assert.Equal(t, 8, frequent["2024-03-04"].Representative.Intensity)

	counts, err := f.trends.GetPeriodMoodCounts(f.ctx, f.userID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 2, counts.Of(mood.Happy))
	assert.Equal(t, 1, counts.Of(mood.Sad))
}

func TestDailyAggregatesErrors(t *testing.T) {
	f := newFixture(t, wednesday)

	_, err := f.trends.GetDailyAggregates(f.ctx, f.userID, on(3, 1, 0), on(3, 2, 0), aggregation.Policy("mean"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPolicy)

	_, err = f.trends.GetDailyAggregates(f.ctx, f.userID, on(3, 5, 0), on(3, 2, 0), aggregation.Latest)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRange)

	_, err = f.trends.GetDailyAggregates(f.ctx, f.userID, on(3, 25, 0), on(3, 26, 0), aggregation.Latest)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRange)

	_, err = f.trends.GetPeriodMoodCounts(f.ctx, f.userID, on(3, 5, 0), on(3, 2, 0))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRange)
}

func TestPeriodCountsMatchDailySourceCounts(t *testing.T) {
	f := newFixture(t, wednesday)
	for i := 0; i < 30; i++ {
		f.insert(mood.Types[i%mood.Count], 1+i%10, on(3, 1+i%19, i%24))
	}
	start, end := on(3, 1, 0), on(3, 20, 0)

	counts, err := f.trends.GetPeriodMoodCounts(f.ctx, f.userID, start, end)
	require.NoError(t, err)

	for _, p := range aggregation.Policies() {
		days, err := f.trends.GetDailyAggregates(f.ctx, f.userID, start, end, p)
		require.NoError(t, err)
		sum := 0
		for _, d := range days {
			sum += d.SourceCount
		}
		assert.Equal(t, counts.Total, sum, p)
	}
}

func TestWeeklyRollupWithoutData(t *testing.T) {
	f := newFixture(t, wednesday)

	rollup, err := f.trends.GetWeeklyRollup(f.ctx, f.userID, aggregation.Latest)
	require.NoError(t, err)

	require.Len(t, rollup.Weeks, 4, "recent weeks are kept even when empty")
	assert.Equal(t, dates.Day("2024-02-25"), rollup.Weeks[0].Start)
	current := rollup.Weeks[3]
	assert.True(t, current.IsCurrent)
	assert.Equal(t, dates.Day("2024-03-17"), current.Start)
	assert.Equal(t, dates.Day("2024-03-20"), current.End, "clamped to today")
	assert.Empty(t, current.Bars)
	assert.NotNil(t, current.Bars)
	assert.Zero(t, current.AllMoodCounts.Total)
}

func TestWeeklyRollup(t *testing.T) {
	f := newFixture(t, wednesday)
	f.insert(mood.Calm, 5, on(12, 1, 9).AddDate(-1, 0, 0)) // before the window
	old := f.insert(mood.Anxious, 6, on(1, 10, 9))
	f.insert(mood.Happy, 8, on(3, 18, 9))
	f.insert(mood.Sad, 3, on(3, 18, 21))
	f.insert(mood.Happy, 7, on(3, 20, 8))

	rollup, err := f.trends.GetWeeklyRollup(f.ctx, f.userID, aggregation.Latest)
	require.NoError(t, err)
	assert.Equal(t, aggregation.Latest, rollup.Policy)
	assert.Equal(t, dates.Day("2024-03-20"), rollup.Today)

	require.Len(t, rollup.Weeks, 5)
	older := rollup.Weeks[0]
	assert.Equal(t, dates.Day("2024-01-07"), older.Start)
	assert.Equal(t, dates.Day("2024-01-13"), older.End)
	require.Len(t, older.Bars, 1)
	assert.Equal(t, old.ID, older.Bars[0].Representative.ID)

	for i := 1; i < len(rollup.Weeks); i++ {
		assert.True(t, rollup.Weeks[i-1].Start.Before(rollup.Weeks[i].Start), "oldest first")
	}

	current := rollup.Weeks[4]
	require.Len(t, current.Bars, 2, "one bar per day with data")
	monday := current.Bars[0]
	assert.Equal(t, dates.Day("2024-03-18"), monday.Day)
	assert.Equal(t, "Monday", monday.Weekday)
	assert.Equal(t, mood.Sad, monday.Representative.MoodType)
	assert.Equal(t, 1, monday.Valence)
	assert.Len(t, monday.Entries, 2)
	assert.Equal(t, 2, monday.DayStats.EntryCount)
	assert.Equal(t, 12*60, monday.DayStats.TimeSpanMinutes)

	assert.Equal(t, 2, current.DaysLogged)
	assert.Equal(t, 3, current.AllMoodCounts.Total, "raw entries, not days")
	assert.Equal(t, 2, current.AllMoodCounts.Of(mood.Happy))
}

func TestWeeklyRollupExcludesFutureLogs(t *testing.T) {
	f := newFixture(t, wednesday)
	f.insert(mood.Happy, 8, on(3, 22, 9))

	rollup, err := f.trends.GetWeeklyRollup(f.ctx, f.userID, aggregation.Latest)
	require.NoError(t, err)

	for _, w := range rollup.Weeks {
		assert.False(t, w.End.After("2024-03-20"))
		assert.Zero(t, w.AllMoodCounts.Total)
	}
}

func TestMonthlyRollup(t *testing.T) {
	f := newFixture(t, wednesday)
	f.insert(mood.Angry, 9, on(1, 31, 22))
	f.insert(mood.Happy, 8, on(3, 18, 9))
	f.insert(mood.Happy, 6, on(3, 18, 12))
	f.insert(mood.Calm, 4, on(3, 18, 21))

	rollup, err := f.trends.GetMonthlyRollup(f.ctx, f.userID, aggregation.MostFrequent)
	require.NoError(t, err)
	require.Len(t, rollup.Months, 6)

	first := rollup.Months[0]
	assert.Equal(t, 2023, first.Year)
	assert.Equal(t, 10, first.Month)
	assert.Len(t, first.Days, 31)
	for _, v := range first.Days {
		assert.Equal(t, calendar.NoData, v)
	}

	feb := rollup.Months[4]
	assert.Len(t, feb.Days, 29)
	assert.Equal(t, dates.Day("2024-02-29"), feb.End)

	jan := rollup.Months[3]
	assert.Equal(t, 0, jan.Days[30])
	assert.Equal(t, 1, jan.DaysLogged)

	march := rollup.Months[5]
	assert.True(t, march.IsCurrent)
	assert.Len(t, march.Days, 31)
	assert.Equal(t, dates.Day("2024-03-20"), march.End)
	happy, _ := mood.Happy.Valence()
	assert.Equal(t, happy, march.Days[17])
	assert.Equal(t, calendar.NoData, march.Days[18])
	assert.Equal(t, 1, march.DaysLogged)
	assert.Equal(t, 3, march.MoodCounts.Total, "tally kept apart from the calendar")
	assert.Equal(t, 2, march.MoodCounts.Of(mood.Happy))
	assert.Equal(t, 1, march.MoodCounts.Of(mood.Calm))
}

func TestMonthlyRollupInvalidPolicy(t *testing.T) {
	f := newFixture(t, wednesday)
	_, err := f.trends.GetMonthlyRollup(f.ctx, f.userID, aggregation.Policy(""))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPolicy)
	_, err = f.trends.GetWeeklyRollup(f.ctx, f.userID, aggregation.Policy("nope"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidPolicy)
}

func TestRollupsFollowCalendarLocation(t *testing.T) {
	f := newFixture(t, wednesday)
	// 01:00 UTC on the 18th is still the 17th at UTC-5
	f.insert(mood.Sad, 4, time.Date(2024, time.March, 18, 1, 0, 0, 0, time.UTC))
	f.trends = NewTrendService(f.db, f.trends.clock, dates.NewCalendar(time.FixedZone("UTC-5", -5*3600)))

	rollup, err := f.trends.GetWeeklyRollup(f.ctx, f.userID, aggregation.Latest)
	require.NoError(t, err)

	current := rollup.Weeks[len(rollup.Weeks)-1]
	require.Len(t, current.Bars, 1)
	assert.Equal(t, dates.Day("2024-03-17"), current.Bars[0].Day)
	assert.Equal(t, "Sunday", current.Bars[0].Weekday)
}
