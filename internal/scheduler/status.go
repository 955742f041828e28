package scheduler

import (
	"time"

	"github.com/example/lessonsched/internal/retry"
)

// Status is a point-in-time view of the scheduler for the status endpoint.
type Status struct {
	Booked      []string       `json:"booked"`
	Attempted   []string       `json:"attempted"`
	Retries     []retry.Record `json:"retries"`
	LastCycleAt *time.Time     `json:"last_cycle_at,omitempty"`
	LastCycle   Stats          `json:"last_cycle"`
	NextSleep   string         `json:"next_sleep,omitempty"`
	NextWindow  *time.Time     `json:"next_window,omitempty"`
}

func (s *Scheduler) Status() Status {
	booked, attempted := s.state.Snapshot()
	st := Status{
		Booked:    booked,
		Attempted: attempted,
		Retries:   s.tracker.Snapshot(),
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if !last.at.IsZero() {
		at := last.at
		st.LastCycleAt = &at
		st.LastCycle = last.stats
		st.NextSleep = last.nextSleep.String()
	}
	if !last.nextWindow.IsZero() {
		nw := last.nextWindow
		st.NextWindow = &nw
	}
	return st
}
