package matcher

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock HH:MM without a date.
type TimeOfDay struct {
	hour, minute int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{hour: hour, minute: minute}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return TimeOfDay{hour: t.Hour(), minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

func (t TimeOfDay) Minutes() int {
	return t.hour*60 + t.minute
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Rule selects lessons of Type starting at Time on Weekday (0=Monday..6=Sunday).
type Rule struct {
	Type    string    `toml:"type"`
	Weekday int       `toml:"weekday"`
	Time    TimeOfDay `toml:"time"`
}

func (r Rule) Validate() error {
	if r.Type == "" {
		return fmt.Errorf("rule has no lesson type")
	}
	if r.Weekday < 0 || r.Weekday > 6 {
		return fmt.Errorf("rule %q: weekday %d out of range 0..6", r.Type, r.Weekday)
	}
	return nil
}

func (r Rule) String() string {
	return fmt.Sprintf("%s on %s at %s", r.Type, weekdayNames[r.Weekday%7], r.Time)
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
