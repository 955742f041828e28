package lesson

import (
	"fmt"
	"time"
)

// Window describes when the platform accepts bookings relative to a lesson's
// start. Bookings open OpenHours before start; attempts begin BufferMinutes
// around that instant (negative means early) and the aggressive retry
// cadence lasts until AggressiveEndHours before start.
type Window struct {
	OpenHours          int
	BufferMinutes      int
	AggressiveEndHours int
}

func (w Window) Validate() error {
	if w.OpenHours <= 0 {
		return fmt.Errorf("window open hours must be > 0, got %d", w.OpenHours)
	}
	if w.AggressiveEndHours >= w.OpenHours {
		return fmt.Errorf("aggressive window end (%dh) must be closer to start than the open (%dh)", w.AggressiveEndHours, w.OpenHours)
	}
	return nil
}

func (w Window) OpensAt(l Lesson) time.Time {
	return l.Start.Add(-time.Duration(w.OpenHours) * time.Hour)
}

func (w Window) TargetAt(l Lesson) time.Time {
	return w.OpensAt(l).Add(time.Duration(w.BufferMinutes) * time.Minute)
}

func (w Window) AggressiveEnd(l Lesson) time.Time {
	return l.Start.Add(-time.Duration(w.AggressiveEndHours) * time.Hour)
}

// Bookable reports whether now is inside [OpensAt, Start).
func (w Window) Bookable(l Lesson, now time.Time) bool {
	return !now.Before(w.OpensAt(l)) && now.Before(l.Start)
}

// Aggressive reports whether now is inside [TargetAt, AggressiveEnd].
func (w Window) Aggressive(l Lesson, now time.Time) bool {
	return !now.Before(w.TargetAt(l)) && !now.After(w.AggressiveEnd(l))
}
