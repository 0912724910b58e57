package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Minute is a time of day expressed as minutes from midnight.
// It is stored as an integer and travels as "HH:MM" in JSON.
type Minute int

// MinutesPerDay bounds every Minute value; 1440 itself means end of day.
const MinutesPerDay Minute = 24 * 60

// ParseMinute parses "HH:MM" (or "24:00" for end of day).
func ParseMinute(s string) (Minute, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Minute(t.Hour()*60 + t.Minute()), nil
}

// String formats the value as "HH:MM".
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// MarshalJSON renders the minute as "HH:MM".
func (m Minute) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts "HH:MM".
func (m *Minute) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	v, err := ParseMinute(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Interval is a half-open time range [Start, End) within one day.
type Interval struct {
	Start Minute `json:"start"`
	End   Minute `json:"end"`
}

// Valid reports whether the interval is non-empty and inside one day.
func (iv Interval) Valid() bool {
	return iv.Start >= 0 && iv.End <= MinutesPerDay && iv.Start < iv.End
}

// Duration returns the length of the interval in minutes.
func (iv Interval) Duration() int {
	return int(iv.End - iv.Start)
}

// Overlaps reports whether the two half-open ranges intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other lies entirely within iv.
func (iv Interval) Contains(other Interval) bool {
	return other.Start >= iv.Start && other.End <= iv.End
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}
