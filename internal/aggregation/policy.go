// Package aggregation reduces raw mood logs to per-day representatives and
// tallies raw counts. Everything here is pure: no I/O, no shared state.
package aggregation

import (
	"fmt"
	"strings"

	"manoLogAPI/internal/apperrors"
	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/mood"
)

// Policy names one way of reducing a day's entries to a single entry.
type Policy string

const (
	Latest          Policy = "latest"
	MostFrequent    Policy = "most_frequent"
	WeightedAverage Policy = "weighted_average"
	DominantMood    Policy = "dominant_mood"
	TimeWeighted    Policy = "time_weighted"
)

// reducer receives a non-empty, chronologically ordered day. It must not
// mutate entries.
type reducer func(entries []mood.Entry, cal dates.Calendar) mood.Entry

var reducers = map[Policy]reducer{
	Latest:          latest,
	MostFrequent:    mostFrequent,
	WeightedAverage: weightedAverage,
	DominantMood:    dominantMood,
	TimeWeighted:    timeWeighted,
}

// Policies lists every registered policy in a stable order.
func Policies() []Policy {
	return []Policy{Latest, MostFrequent, WeightedAverage, DominantMood, TimeWeighted}
}

// ParsePolicy resolves a policy name. Unknown names are an error; there is
// no default substitution.
func ParsePolicy(name string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := reducers[p]; !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPolicy, name)
	}
	return p, nil
}

// Reduce applies p to one day's entries.
func (p Policy) Reduce(entries []mood.Entry, cal dates.Calendar) (mood.Entry, error) {
	r, ok := reducers[p]
	if !ok {
		return mood.Entry{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidPolicy, string(p))
	}
	switch len(entries) {
	case 0:
		return mood.Entry{}, fmt.Errorf("reduce %s: no entries", p)
	case 1:
		return entries[0], nil
	}
	return r(entries, cal), nil
}

func (p Policy) String() string { return string(p) }
