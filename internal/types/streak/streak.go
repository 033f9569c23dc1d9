package streak

import (
	"time"

	"github.com/google/uuid"

	"manoLogAPI/internal/dates"
)

// Streak is the per-user streak record. Version backs the compare-and-swap
// write; a zero Version means no row has been stored yet.
type Streak struct {
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak  int        `json:"current_streak" db:"current_streak"`
	LongestStreak  int        `json:"longest_streak" db:"longest_streak"`
	LastLoggedDate *dates.Day `json:"last_logged_date" db:"last_logged_date"`
	Version        int64      `json:"-" db:"version"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Advance applies a log event that fell on day. It reports false when the
// state does not change: a repeat on the same day, or a late event for a
// day before the last logged one.
func (s Streak) Advance(day dates.Day) (Streak, bool) {
	next := s
	switch {
	case s.LastLoggedDate == nil:
		next.CurrentStreak = 1
	case day == *s.LastLoggedDate, day.Before(*s.LastLoggedDate):
		return s, false
	case dates.Between(*s.LastLoggedDate, day) == 1:
		next.CurrentStreak++
	default:
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	d := day
	next.LastLoggedDate = &d
	return next, true
}

// Repair zeroes the current streak when the last log is older than
// yesterday. Applying it twice is the same as applying it once.
func (s Streak) Repair(today dates.Day) (Streak, bool) {
	if s.CurrentStreak == 0 {
		return s, false
	}
	if s.LastLoggedDate != nil && dates.Between(*s.LastLoggedDate, today) <= 1 {
		return s, false
	}
	next := s
	next.CurrentStreak = 0
	return next, true
}

// Effective is the state as of today without writing anything back.
func (s Streak) Effective(today dates.Day) Streak {
	r, _ := s.Repair(today)
	return r
}

// FromDays rebuilds a streak from ascending, distinct logged days.
func FromDays(days []dates.Day, today dates.Day) (current, longest int, last *dates.Day) {
	if len(days) == 0 {
		return 0, 0, nil
	}
	run := 0
	for i, d := range days {
		if i > 0 && dates.Between(days[i-1], d) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	l := days[len(days)-1]
	if dates.Between(l, today) <= 1 {
		current = run
	}
	return current, longest, &l
}
