package aggregation

import (
	"math"
	"sort"

	"manoLogAPI/internal/dates"
	"manoLogAPI/internal/types/mood"
)

const (
	recencyDecay = 0.9

	// Hours in [dayHourFrom, dayHourTo] count as daytime for TimeWeighted.
	dayHourFrom = 6
	dayHourTo   = 22
)

// tally accumulates one mood type's occurrences within a day. Scores are
// kept as scaled integers so ties compare exactly.
type tally struct {
	count        int
	sumIntensity int
	score        int
	maxIntensity int
	maxIdx       int
	latestIdx    int
}

func newTallies() [mood.Count]tally {
	var t [mood.Count]tally
	for i := range t {
		t[i].maxIdx = -1
		t[i].latestIdx = -1
	}
	return t
}

// newer reports whether entries[i] is more recent than entries[j]. Equal
// timestamps resolve to the later input position.
func newer(entries []mood.Entry, i, j int) bool {
	if j < 0 {
		return true
	}
	a, b := entries[i].LoggedAt, entries[j].LoggedAt
	if a.Equal(b) {
		return i > j
	}
	return a.After(b)
}

// valence maps an entry to its valence index. Entries are validated at
// write time; an unknown label counts as neutral so reducers stay total.
func valence(e mood.Entry) int {
	if v, ok := e.MoodType.Valence(); ok {
		return v
	}
	v, _ := mood.Neutral.Valence()
	return v
}

func (t *tally) add(entries []mood.Entry, i, score int) {
	e := entries[i]
	t.count++
	t.sumIntensity += e.Intensity
	t.score += score
	if t.latestIdx < 0 || newer(entries, i, t.latestIdx) {
		t.latestIdx = i
	}
	if t.maxIdx < 0 || e.Intensity > t.maxIntensity || (e.Intensity == t.maxIntensity && newer(entries, i, t.maxIdx)) {
		t.maxIntensity = e.Intensity
		t.maxIdx = i
	}
}

func latest(entries []mood.Entry, _ dates.Calendar) mood.Entry {
	best := 0
	for i := 1; i < len(entries); i++ {
		if !entries[i].LoggedAt.Before(entries[best].LoggedAt) {
			best = i
		}
	}
	return entries[best]
}

func mostFrequent(entries []mood.Entry, _ dates.Calendar) mood.Entry {
	t := newTallies()
	for i, e := range entries {
		t[valence(e)].add(entries, i, 0)
	}

	win := -1
	for v := range t {
		if t[v].count == 0 {
			continue
		}
		if win < 0 {
			win = v
			continue
		}
		a, b := t[v], t[win]
		switch {
		case a.count != b.count:
			if a.count > b.count {
				win = v
			}
		// counts are equal here, so the larger sum is the larger average
		case a.sumIntensity != b.sumIntensity:
			if a.sumIntensity > b.sumIntensity {
				win = v
			}
		case newer(entries, a.latestIdx, b.latestIdx):
			win = v
		}
	}
	return entries[t[win].latestIdx]
}

// recencyOrder returns entry indices from most to least recent.
func recencyOrder(entries []mood.Entry) []int {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = len(entries) - 1 - i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return entries[idx[a]].LoggedAt.After(entries[idx[b]].LoggedAt)
	})
	return idx
}

func weightedAverage(entries []mood.Entry, _ dates.Calendar) mood.Entry {
	order := recencyOrder(entries)

	var wSum, vSum, iSum float64
	for rank, i := range order {
		e := entries[i]
		w := math.Pow(recencyDecay, float64(rank)) * (0.5 + 0.5*float64(e.Intensity)/10)
		wSum += w
		vSum += w * float64(valence(e))
		iSum += w * float64(e.Intensity)
	}

	out := entries[order[0]]
	out.MoodType = mood.AtValence(int(math.Round(vSum / wSum)))
	out.Intensity = clampIntensity(int(math.Round(iSum / wSum)))
	out.Aggregated = true
	out.OriginalCount = len(entries)
	return out
}

func dominantMood(entries []mood.Entry, _ dates.Calendar) mood.Entry {
	t := newTallies()
	for i, e := range entries {
		// 1 + intensity/10, scaled by 10
		t[valence(e)].add(entries, i, 10+e.Intensity)
	}
	return entries[t[bestScore(entries, t)].maxIdx]
}

func timeWeighted(entries []mood.Entry, cal dates.Calendar) mood.Entry {
	t := newTallies()
	for i, e := range entries {
		// 1 + m*intensity/10 with m in {1.2, 0.8}, scaled by 100
		m := 8
		if h := cal.Hour(e.LoggedAt); h >= dayHourFrom && h <= dayHourTo {
			m = 12
		}
		t[valence(e)].add(entries, i, 100+m*e.Intensity)
	}
	return entries[t[bestScore(entries, t)].latestIdx]
}

// bestScore picks the highest score, then the highest single intensity,
// then the most recent occurrence.
func bestScore(entries []mood.Entry, t [mood.Count]tally) int {
	win := -1
	for v := range t {
		if t[v].count == 0 {
			continue
		}
		if win < 0 {
			win = v
			continue
		}
		a, b := t[v], t[win]
		switch {
		case a.score != b.score:
			if a.score > b.score {
				win = v
			}
		case a.maxIntensity != b.maxIntensity:
			if a.maxIntensity > b.maxIntensity {
				win = v
			}
		case newer(entries, a.latestIdx, b.latestIdx):
			win = v
		}
	}
	return win
}

func clampIntensity(i int) int {
	if i < mood.MinIntensity {
		return mood.MinIntensity
	}
	if i > mood.MaxIntensity {
		return mood.MaxIntensity
	}
	return i
}
