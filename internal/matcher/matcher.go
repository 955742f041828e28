// Package matcher narrows the platform's lesson listing down to the lessons
// the operator asked to book.
package matcher

import (
	"log/slog"
	"time"

	"github.com/example/lessonsched/internal/lesson"
)

// IDSet is a set of lesson ids.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

type Config struct {
	Types []string
	Rules []Rule
	// Tolerance relaxes the HH:MM comparison. Zero means exact match.
	Tolerance time.Duration
}

type Matcher struct {
	types     map[string]struct{}
	rules     []Rule
	tolerance time.Duration
	loc       *time.Location
	logger    *slog.Logger
}

func New(cfg Config, loc *time.Location, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	types := make(map[string]struct{}, len(cfg.Types))
	for _, t := range cfg.Types {
		types[t] = struct{}{}
	}
	return &Matcher{
		types:     types,
		rules:     cfg.Rules,
		tolerance: cfg.Tolerance,
		loc:       loc,
		logger:    logger,
	}
}

func (m *Matcher) Location() *time.Location { return m.loc }

// Filter returns, in listing order, the future lessons matching a rule that
// are not in handled and carry no booking status from the platform.
// Records that fail to parse are logged and skipped.
func (m *Matcher) Filter(now time.Time, raw []lesson.Record, handled IDSet) []lesson.Lesson {
	var out []lesson.Lesson
	for _, rec := range raw {
		if st := rec.Status(); st.IsSet() {
			m.logger.Debug("skipping lesson with booking status",
				"lesson_id", string(rec.ID), "type", rec.Description, "status", st.Raw())
			continue
		}
		if handled.Has(string(rec.ID)) {
			continue
		}
		l, err := lesson.Parse(rec, m.loc)
		if err != nil {
			m.logger.Error("error parsing lesson", "lesson_id", string(rec.ID), "error", err)
			continue
		}
		if !l.Start.After(now) {
			continue
		}
		if _, ok := m.types[l.TypeName]; !ok {
			continue
		}
		if !m.matchesRule(l) {
			continue
		}
		m.logger.Debug("target lesson found", "lesson", l.String(), "lesson_id", l.ID)
		out = append(out, l)
	}
	return out
}

func (m *Matcher) matchesRule(l lesson.Lesson) bool {
	start := l.Start.In(m.loc)
	local := lesson.Lesson{Start: start}
	for _, r := range m.rules {
		if r.Type != l.TypeName || r.Weekday != local.Weekday() {
			continue
		}
		if m.tolerance == 0 {
			if r.Time.String() == local.ClockTime() {
				return true
			}
			continue
		}
		diff := time.Duration(start.Hour()*60+start.Minute()-r.Time.Minutes()) * time.Minute
		if diff < 0 {
			diff = -diff
		}
		if diff <= m.tolerance {
			return true
		}
	}
	return false
}
