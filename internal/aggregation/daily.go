package aggregation

import (
	"fmt"
	"sort"
	"time"

	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/mood"
)

// DayStats describes the raw activity behind one day's representative.
type DayStats struct {
	EntryCount      int       `json:"entry_count"`
	MoodChanges     int       `json:"mood_changes"`
	FirstLoggedAt   time.Time `json:"first_logged_at"`
	LastLoggedAt    time.Time `json:"last_logged_at"`
	TimeSpanMinutes int       `json:"time_span_minutes"`
}

// DayAggregate is the derived view of one calendar day. It is recomputed on
// every read and never stored.
type DayAggregate struct {
	Day             dates.Day  `json:"day"`
	Representative  mood.Entry `json:"representative"`
	SourceCount     int        `json:"source_count"`
	MoodChangeCount int        `json:"mood_change_count"`
	Stats           DayStats   `json:"day_stats"`
}

// DayBucket holds one day's raw entries in chronological order.
type DayBucket struct {
	Day     dates.Day
	Entries []mood.Entry
}

// GroupByDay partitions entries by calendar day. Buckets come back in day
// order; entries within a bucket are chronological, with equal timestamps
// kept in input order. The input slice is not modified.
func GroupByDay(entries []mood.Entry, cal dates.Calendar) []DayBucket {
	sorted := make([]mood.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LoggedAt.Before(sorted[j].LoggedAt)
	})

	var buckets []DayBucket
	for _, e := range sorted {
		d := cal.DayOf(e.LoggedAt)
		if n := len(buckets); n > 0 && buckets[n-1].Day == d {
			buckets[n-1].Entries = append(buckets[n-1].Entries, e)
			continue
		}
		buckets = append(buckets, DayBucket{Day: d, Entries: []mood.Entry{e}})
	}
	return buckets
}

// AggregateDay reduces one bucket under policy.
func AggregateDay(b DayBucket, policy Policy, cal dates.Calendar) (DayAggregate, error) {
	rep, err := policy.Reduce(b.Entries, cal)
	if err != nil {
		return DayAggregate{}, fmt.Errorf("aggregate %s: %w", b.Day, err)
	}
	stats := statsOf(b.Entries)
	return DayAggregate{
		Day:             b.Day,
		Representative:  rep,
		SourceCount:     stats.EntryCount,
		MoodChangeCount: stats.MoodChanges,
		Stats:           stats,
	}, nil
}

// AggregateBuckets reduces every bucket, preserving bucket order.
func AggregateBuckets(buckets []DayBucket, policy Policy, cal dates.Calendar) ([]DayAggregate, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	out := make([]DayAggregate, 0, len(buckets))
	for _, b := range buckets {
		agg, err := AggregateDay(b, policy, cal)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

// Aggregate groups entries by day and reduces each day under policy.
func Aggregate(entries []mood.Entry, policy Policy, cal dates.Calendar) (map[dates.Day]DayAggregate, error) {
	aggs, err := AggregateBuckets(GroupByDay(entries, cal), policy, cal)
	if err != nil {
		return nil, err
	}
	out := make(map[dates.Day]DayAggregate, len(aggs))
	for _, a := range aggs {
		out[a.Day] = a
	}
	return out, nil
}

func statsOf(entries []mood.Entry) DayStats {
	s := DayStats{EntryCount: len(entries)}
	if len(entries) == 0 {
		return s
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].MoodType != entries[i-1].MoodType {
			s.MoodChanges++
		}
	}
	s.FirstLoggedAt = entries[0].LoggedAt
	s.LastLoggedAt = entries[len(entries)-1].LoggedAt
	s.TimeSpanMinutes = int(s.LastLoggedAt.Sub(s.FirstLoggedAt).Minutes())
	return s
}
