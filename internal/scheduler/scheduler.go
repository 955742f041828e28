// Package scheduler runs the booking loop: each cycle it lists upcoming
// lessons, picks the targeted ones whose booking window is open, and tries
// to book them one at a time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/lessonsched/internal/journal"
	"github.com/example/lessonsched/internal/lesson"
	"github.com/example/lessonsched/internal/matcher"
	"github.com/example/lessonsched/internal/pkg/clock"
	"github.com/example/lessonsched/internal/pkg/errs"
	"github.com/example/lessonsched/internal/retry"
)

type Intervals struct {
	// Retry is the sleep while a lesson is in its aggressive window or
	// any retry is tracked.
	Retry time.Duration
	// Poll is the ordinary sleep between cycles.
	Poll time.Duration
	// Recovery is the sleep after a failed cycle.
	Recovery time.Duration
	// Pause separates consecutive booking calls within a cycle.
	Pause time.Duration
	// Lookahead bounds how far ahead listings are fetched.
	Lookahead time.Duration
}

type Config struct {
	Remote    Remote
	Notifier  Notifier
	Journal   Journal
	Matcher   *matcher.Matcher
	Window    lesson.Window
	Tracker   *retry.Tracker
	Clock     clock.Clock
	Logger    *slog.Logger
	Intervals Intervals
}

// Stats summarises one cycle.
type Stats struct {
	Matched int `json:"matched"`
	Checked int `json:"checked"`
	Booked  int `json:"booked"`
	Failed  int `json:"failed"`
}

type Scheduler struct {
	remote    Remote
	notifier  Notifier
	journal   Journal
	matcher   *matcher.Matcher
	window    lesson.Window
	tracker   *retry.Tracker
	clock     clock.Clock
	logger    *slog.Logger
	intervals Intervals
	state     *State

	// sleep blocks for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	last cycleReport
}

type cycleReport struct {
	at         time.Time
	stats      Stats
	nextSleep  time.Duration
	nextWindow time.Time
}

func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	return &Scheduler{
		remote:    cfg.Remote,
		notifier:  cfg.Notifier,
		journal:   cfg.Journal,
		matcher:   cfg.Matcher,
		window:    cfg.Window,
		tracker:   cfg.Tracker,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		intervals: cfg.Intervals,
		state:     NewState(),
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run cycles until ctx is cancelled and then returns ctx.Err(). A cycle that
// panics is logged and followed by the recovery interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting booking scheduler",
		"window_open", fmt.Sprintf("%dh before start", s.window.OpenHours),
		"aggressive_window", fmt.Sprintf("%dm before open until %dh before start", -s.window.BufferMinutes, s.window.AggressiveEndHours),
		"retry_interval", s.intervals.Retry,
		"poll_interval", s.intervals.Poll,
	)

	for {
		d := s.safeCycle(ctx)
		if err := s.sleep(ctx, d); err != nil {
			s.logger.Info("scheduler stopped")
			return err
		}
	}
}

func (s *Scheduler) safeCycle(ctx context.Context) (next time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			err := errs.Newf("booking cycle panicked: %v", r)
			s.logger.Error("error in booking cycle",
				"error", err,
				"stack", errs.ExtractStackLines(err, 12),
				"retry_in", s.intervals.Recovery)
			next = s.intervals.Recovery
		}
	}()

	stats, next := s.Cycle(ctx)
	s.logger.Info("booking cycle complete",
		"booked", stats.Booked, "failed", stats.Failed, "checked", stats.Checked)
	if n := s.tracker.Len(); n > 0 {
		s.logger.Info("tracking lessons with retries", "count", n)
	}
	if next == s.intervals.Retry {
		s.logger.Info("active booking window, checking again soon", "sleep", next)
	} else {
		s.logger.Info("sleeping", "sleep", next)
	}
	return next
}

// Cycle runs one booking pass and returns its stats and the time to sleep
// before the next pass.
func (s *Scheduler) Cycle(ctx context.Context) (Stats, time.Duration) {
	now := s.clock.Now()

	records, err := s.remote.Listings(ctx, now, now.Add(s.intervals.Lookahead))
	if err != nil {
		s.logger.Warn("failed to fetch lesson listings", "error", err)
		records = nil
	}

	matched := s.matcher.Filter(now, records, s.state.Handled(s.tracker.Tracked))

	var ready []lesson.Lesson
	for _, l := range matched {
		if !s.window.Bookable(l, now) {
			continue
		}
		if s.tracker.Tracked(l.ID) && !s.tracker.ShouldRetry(l, now) {
			s.logger.Debug("retry not due", "lesson", l.String())
			continue
		}
		ready = append(ready, l)
	}
	s.logger.Info("found lessons ready for booking", "count", len(ready))

	stats := Stats{Matched: len(matched), Checked: len(ready)}
	called := make(map[string]bool, len(ready))
	for _, l := range ready {
		if ctx.Err() != nil {
			break
		}
		if called[l.ID] {
			continue
		}
		called[l.ID] = true

		if len(called) > 1 {
			if err := s.sleep(ctx, s.intervals.Pause); err != nil {
				break
			}
		}

		if s.book(ctx, l) {
			stats.Booked++
		} else {
			stats.Failed++
		}
	}

	end := s.clock.Now()
	next := s.nextSleep(matched, end)
	nextWindow, ok := s.NextWindow(matched)
	if ok {
		s.logger.Info("next booking window", "at", nextWindow, "in", nextWindow.Sub(end).Round(time.Second))
	}

	s.mu.Lock()
	s.last = cycleReport{at: now, stats: stats, nextSleep: next, nextWindow: nextWindow}
	s.mu.Unlock()

	return stats, next
}

// book makes one booking attempt on l and reports whether l ended up booked.
func (s *Scheduler) book(ctx context.Context, l lesson.Lesson) bool {
	s.state.MarkAttempted(l.ID)

	detail, err := s.remote.LessonDetail(ctx, l.ID)
	if err != nil {
		s.logger.Warn("failed to fetch lesson detail", "lesson", l.String(), "error", err)
		detail = nil
	}

	if detail != nil {
		st := detail.Status()
		switch st.Kind() {
		case lesson.StatusReserved:
			s.logger.Info("lesson already booked", "lesson", l.String(), "status", st.Raw())
			s.booked(ctx, l, journal.OutcomeAlreadyBooked)
			return true
		case lesson.StatusCancelledByCustomer:
			s.logger.Info("lesson was cancelled, will attempt to re-book", "lesson", l.String())
		case lesson.StatusOther:
			s.logger.Info("lesson has unexpected status, will attempt to book", "lesson", l.String(), "status", st.Raw())
		case lesson.StatusNone:
		}

		if detail.Full && l.AvailableSpots <= 0 {
			s.logger.Warn("lesson is full, will retry later", "lesson", l.String())
			s.failed(ctx, l, journal.OutcomeFull, "")
			return false
		}
	}

	if err := s.remote.Join(ctx, l.ID, l.StartUTCISO()); err != nil {
		s.logger.Warn("failed to book", "lesson", l.String(), "error", err)
		s.failed(ctx, l, journal.OutcomeFailed, err.Error())
		return false
	}

	s.logger.Info("booked", "lesson", l.String(), "instructor", l.Instructor)
	s.booked(ctx, l, journal.OutcomeBooked)
	return true
}

func (s *Scheduler) booked(ctx context.Context, l lesson.Lesson, outcome journal.Outcome) {
	s.state.MarkBooked(l.ID)
	s.notifier.NotifySuccess(ctx, l)
	s.record(ctx, l, outcome, 0, "")
}

func (s *Scheduler) failed(ctx context.Context, l lesson.Lesson, outcome journal.Outcome, detail string) {
	rec := s.tracker.Record(l, s.clock.Now())
	s.logger.Info("retry tracking", "lesson", l.String(), "attempt", rec.Attempts)
	s.notifier.NotifyStillTrying(ctx, l, rec.Attempts)
	s.record(ctx, l, outcome, rec.Attempts, detail)
}

func (s *Scheduler) record(ctx context.Context, l lesson.Lesson, outcome journal.Outcome, attempts int, detail string) {
	err := s.journal.Record(ctx, journal.Attempt{
		LessonID:    l.ID,
		LessonType:  l.TypeName,
		LessonStart: l.Start,
		Outcome:     outcome,
		Attempts:    attempts,
		Detail:      detail,
		At:          s.clock.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to journal attempt", "lesson_id", l.ID, "error", err)
	}
}

func (s *Scheduler) nextSleep(matched []lesson.Lesson, now time.Time) time.Duration {
	if s.tracker.Len() > 0 {
		return s.intervals.Retry
	}
	for _, l := range matched {
		if s.state.IsBooked(l.ID) {
			continue
		}
		if s.window.Aggressive(l, now) {
			return s.intervals.Retry
		}
	}
	return s.intervals.Poll
}

// NextWindow returns the earliest target booking time among matched lessons
// that have been neither booked nor attempted.
func (s *Scheduler) NextWindow(matched []lesson.Lesson) (time.Time, bool) {
	var next time.Time
	for _, l := range matched {
		if s.state.IsBooked(l.ID) || s.state.IsAttempted(l.ID) {
			continue
		}
		t := s.window.TargetAt(l)
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next, !next.IsZero()
}
