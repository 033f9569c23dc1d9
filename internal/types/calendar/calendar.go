package calendar

import (
	"manoLogAPI/internal/aggregation"
	"manoLogAPI/internal/dates"
)

// NoData marks a calendar slot for a day without logs.
const NoData = -1

// MonthPeriod is one month of the trailing calendar. Days[i] is the valence
// index of day i+1's representative entry, or NoData. MoodCounts is the raw
// tally for the month and must not be recomputed from Days.
type MonthPeriod struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Start      dates.Day          `json:"start"`
	End        dates.Day          `json:"end"`
	Days       []int              `json:"days"`
	DaysLogged int                `json:"days_logged"`
	IsCurrent  bool               `json:"is_current"`
	MoodCounts aggregation.Counts `json:"mood_counts"`
}

type MonthlyRollup struct {
	Policy aggregation.Policy `json:"policy"`
	Today  dates.Day          `json:"today"`
	Months []MonthPeriod      `json:"months"`
}
