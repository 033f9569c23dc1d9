// Package dates maps instants onto calendar days under one reference
// location. Day keys are civil dates; arithmetic on them is done at UTC
// midnight so DST transitions in the reference zone never skew a count.
package dates

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Day is a calendar date in "YYYY-MM-DD" form.
type Day string

// ParseDay validates a "YYYY-MM-DD" string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(t.Format(layout)), nil
}

func dayOf(t time.Time) Day {
	return Day(t.Format(layout))
}

func (d Day) String() string { return string(d) }

// anchor returns the day at UTC midnight. Day keys are always produced by
// this package so the parse cannot fail.
func (d Day) anchor() time.Time {
	t, _ := time.Parse(layout, string(d))
	return t
}

// AddDays returns d shifted by n days.
func (d Day) AddDays(n int) Day {
	return dayOf(d.anchor().AddDate(0, 0, n))
}

// Before reports whether d is earlier than o.
func (d Day) Before(o Day) bool { return d < o }

// After reports whether d is later than o.
func (d Day) After(o Day) bool { return d > o }

// Weekday returns the day of the week of d.
func (d Day) Weekday() time.Weekday { return d.anchor().Weekday() }

// Date returns the year, month and day of d.
func (d Day) Date() (int, time.Month, int) { return d.anchor().Date() }

// Between returns the number of days from a to b (negative when b is before a).
func Between(a, b Day) int {
	return int(b.anchor().Sub(a.anchor()).Hours() / 24)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Calendar derives day keys and day boundaries in a fixed location.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc. A nil location means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// UTC is the default calendar.
func UTC() Calendar { return NewCalendar(time.UTC) }

// Location returns the reference location.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayOf returns the calendar day t falls into.
func (c Calendar) DayOf(t time.Time) Day {
	return Day(t.In(c.Location()).Format(layout))
}

// Hour returns the hour of day of t in the reference location.
func (c Calendar) Hour(t time.Time) int {
	return t.In(c.Location()).Hour()
}

// Start returns the first instant of d.
func (c Calendar) Start(d Day) time.Time {
	y, m, dd := d.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, c.Location())
}

// End returns the first instant after d.
func (c Calendar) End(d Day) time.Time {
	return c.Start(d.AddDays(1))
}

// WeekStart returns the Sunday on or before d.
func WeekStart(d Day) Day {
	return d.AddDays(-int(d.Weekday()))
}

// MonthStart returns the first day of d's month.
func MonthStart(d Day) Day {
	y, m, _ := d.Date()
	return dayOf(time.Date(y, m, 1, 0, 0, 0, 0, time.UTC))
}

// AddMonths returns the first day of the month n months after d's month.
func AddMonths(d Day, n int) Day {
	y, m, _ := d.Date()
	return dayOf(time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Min returns the earlier of a and b.
func Min(a, b Day) Day {
	if a.Before(b) {
		return a
	}
	return b
}
