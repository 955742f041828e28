// Package retry decides when a lesson that was full, or whose booking
// failed, is worth another attempt.
package retry

import (
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/example/lessonsched/internal/lesson"
)

type Policy struct {
	// MaxDailyRetries caps attempts per lesson. The counter is never reset.
	MaxDailyRetries int
	// RetryHours are local hours of the day that grant one extra attempt each.
	RetryHours []int
	// Interval is the minimum spacing of attempts inside the aggressive window.
	Interval time.Duration
	Window   lesson.Window
	Location *time.Location
}

// Record is the attempt history of one lesson.
type Record struct {
	LessonID       string    `json:"lesson_id"`
	Attempts       int       `json:"attempts"`
	LastAttemptAt  time.Time `json:"last_attempt_at"`
	HoursAttempted []int     `json:"hours_attempted"`
}

func (r Record) attemptedHour(h int) bool {
	return slices.Contains(r.HoursAttempted, h)
}

// Tracker keeps retry records in memory for the lifetime of the process.
type Tracker struct {
	policy Policy
	logger *slog.Logger

	mu      sync.Mutex
	records map[string]*Record
}

func NewTracker(policy Policy, logger *slog.Logger) *Tracker {
	if policy.Location == nil {
		policy.Location = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		policy:  policy,
		logger:  logger,
		records: make(map[string]*Record),
	}
}

// Record notes a failed or full attempt on l at now and returns the updated
// record.
func (t *Tracker) Record(l lesson.Lesson, now time.Time) Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[l.ID]
	if !ok {
		rec = &Record{LessonID: l.ID}
		t.records[l.ID] = rec
	}
	rec.Attempts++
	rec.LastAttemptAt = now
	hour := now.In(t.policy.Location).Hour()
	if !rec.attemptedHour(hour) {
		rec.HoursAttempted = append(rec.HoursAttempted, hour)
	}
	return cloneRecord(rec)
}

// ShouldRetry reports whether l may be attempted at now. Lessons without a
// record always qualify.
func (t *Tracker) ShouldRetry(l lesson.Lesson, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[l.ID]
	if !ok {
		return true
	}
	if rec.Attempts >= t.policy.MaxDailyRetries {
		t.logger.Debug("max retries reached", "lesson", l.String(), "attempts", rec.Attempts)
		return false
	}

	hour := now.In(t.policy.Location).Hour()
	if slices.Contains(t.policy.RetryHours, hour) && !rec.attemptedHour(hour) {
		t.logger.Info("retry hour reached", "hour", hour, "lesson", l.String())
		return true
	}

	if t.policy.Window.Aggressive(l, now) {
		if rec.LastAttemptAt.IsZero() {
			return true
		}
		return now.Sub(rec.LastAttemptAt) >= t.policy.Interval
	}
	return false
}

func (t *Tracker) Tracked(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.records[id]
	return ok
}

func (t *Tracker) Get(id string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok {
		return Record{}, false
	}
	return cloneRecord(rec), true
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Snapshot returns copies of all records ordered by lesson id.
func (t *Tracker) Snapshot() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonID < out[j].LessonID })
	return out
}

func cloneRecord(rec *Record) Record {
	c := *rec
	c.HoursAttempted = slices.Clone(rec.HoursAttempted)
	return c
}
