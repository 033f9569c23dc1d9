package stats

import (
	"time"

	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/mood"
)

type OverallStats struct {
	TotalEntries         int        `json:"total_entries"`
	FirstEntryAt         *time.Time `json:"first_entry_at"`
	DaysSinceFirstEntry  int        `json:"days_since_first_entry"`
	DaysTracked          int        `json:"days_tracked"`
	AverageEntriesPerDay float64    `json:"average_entries_per_day"`
}

type WeekSummary struct {
	Start            dates.Day   `json:"week_start"`
	End              dates.Day   `json:"week_end"`
	DaysLogged       int         `json:"days_logged"`
	DominantMood     *mood.Entry `json:"dominant_mood"`
	AverageIntensity float64     `json:"average_intensity"`
	AverageValence   float64     `json:"average_valence"`
}

// MoodStatistics is the summary screen payload. Policy names the reducer
// behind DominantMoodThisWeek; AllMoodCountsThisWeek does not depend on it.
type MoodStatistics struct {
	Policy                aggregation.Policy `json:"policy"`
	Today                 dates.Day          `json:"today"`
	CurrentStreak         int                `json:"current_streak"`
	LongestStreak         int                `json:"longest_streak"`
	LastLoggedDate        *dates.Day         `json:"last_logged_date"`
	DominantMoodThisWeek  *mood.Entry        `json:"dominant_mood_this_week"`
	AllMoodCountsThisWeek aggregation.Counts `json:"all_mood_counts_this_week"`
	ThisWeek              WeekSummary        `json:"this_week"`
	Overall               OverallStats       `json:"overall"`
}
