package aggregation

import "manoLogAPI/internal/types/mood"

// Counts tallies every raw entry in a range by mood type. Slot i belongs to
// mood.Types[i]. It is never derived from day aggregates.
type Counts struct {
	ByMood [mood.Count]int `json:"counts"`
	Total  int             `json:"total"`
}

// Count tallies entries.
func Count(entries []mood.Entry) Counts {
	var c Counts
	for _, e := range entries {
		c.ByMood[valence(e)]++
		c.Total++
	}
	return c
}

// Of returns the tally for t.
func (c Counts) Of(t mood.Type) int {
	v, ok := t.Valence()
	if !ok {
		return 0
	}
	return c.ByMood[v]
}

// ByType returns the non-zero tallies keyed by mood label.
func (c Counts) ByType() map[mood.Type]int {
	out := make(map[mood.Type]int)
	for i, n := range c.ByMood {
		if n > 0 {
			out[mood.Types[i]] = n
		}
	}
	return out
}
