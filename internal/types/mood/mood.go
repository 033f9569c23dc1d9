package mood

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type is one of the six mood categories. Its position in Types is its
// valence index, from most negative to most positive.
type Type string

const (
	Angry   Type = "angry"
	Sad     Type = "sad"
	Anxious Type = "anxious"
	Neutral Type = "neutral"
	Calm    Type = "calm"
	Happy   Type = "happy"
)

// Types is the canonical valence ordering. Numeric policies and the period
// counter both index into this table.
var Types = [Count]Type{Angry, Sad, Anxious, Neutral, Calm, Happy}

// Count is the size of the closed mood set.
const Count = 6

const (
	MinIntensity = 1
	MaxIntensity = 10
)

// ParseType normalizes and validates a mood label.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := t.Valence(); !ok {
		return "", fmt.Errorf("unknown mood type %q", s)
	}
	return t, nil
}

// Valence returns the index of t in Types.
func (t Type) Valence() (int, bool) {
	for i, v := range Types {
		if v == t {
			return i, true
		}
	}
	return -1, false
}

// AtValence returns the mood at index i, clamped to the valid range.
func AtValence(i int) Type {
	if i < 0 {
		i = 0
	}
	if i >= Count {
		i = Count - 1
	}
	return Types[i]
}

// Entry is a single mood log. Aggregated and OriginalCount are only set on
// synthetic entries produced by the weighted-average policy.
type Entry struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	MoodType      Type      `json:"mood_type"`
	Intensity     int       `json:"intensity"`
	Note          *string   `json:"note,omitempty"`
	LoggedAt      time.Time `json:"logged_at"`
	Aggregated    bool      `json:"aggregated,omitempty"`
	OriginalCount int       `json:"original_count,omitempty"`
}

// Validate checks the rules enforced at write time.
func (e Entry) Validate() error {
	if _, ok := e.MoodType.Valence(); !ok {
		return fmt.Errorf("unknown mood type %q", e.MoodType)
	}
	if e.Intensity < MinIntensity || e.Intensity > MaxIntensity {
		return fmt.Errorf("intensity %d out of range [%d, %d]", e.Intensity, MinIntensity, MaxIntensity)
	}
	if e.LoggedAt.IsZero() {
		return fmt.Errorf("logged_at is required")
	}
	return nil
}

// TypeInfo describes one catalog entry for clients.
type TypeInfo struct {
	Type    Type `json:"type"`
	Valence int  `json:"valence"`
}

// Catalog lists every mood type with its valence index.
func Catalog() []TypeInfo {
	out := make([]TypeInfo, 0, Count)
	for i, t := range Types {
		out = append(out, TypeInfo{Type: t, Valence: i})
	}
	return out
}
