package weekly_stats

import (
	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/mood"
)

// DayBar is one charted day inside a week. Only days with logs get a bar.
type DayBar struct {
	Day            dates.Day            `json:"day"`
	Weekday        string               `json:"weekday"`
	Representative mood.Entry           `json:"representative"`
	Valence        int                  `json:"valence"`
	Entries        []mood.Entry         `json:"entries"`
	DayStats       aggregation.DayStats `json:"day_stats"`
}

// WeekPeriod is a Sunday–Saturday window. End is clamped to today for the
// week in progress.
type WeekPeriod struct {
	Start         dates.Day          `json:"week_start"`
	End           dates.Day          `json:"week_end"`
	IsCurrent     bool               `json:"is_current"`
	DaysLogged    int                `json:"days_logged"`
	Bars          []DayBar           `json:"bars"`
	AllMoodCounts aggregation.Counts `json:"all_mood_counts"`
}

type WeeklyRollup struct {
	Policy aggregation.Policy `json:"policy"`
	Today  dates.Day          `json:"today"`
	Weeks  []WeekPeriod       `json:"weeks"`
}
