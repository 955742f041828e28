// Package journal keeps an append-only audit trail of booking attempts.
// Nothing in it is read back into scheduling decisions.
package journal

import (
	"context"
	"time"

	"github.com/example/lessonsched/internal/db"
	"github.com/example/lessonsched/internal/pkg/errs"
)

type Outcome string

const (
	OutcomeBooked        Outcome = "booked"
	OutcomeAlreadyBooked Outcome = "already_booked"
	OutcomeFull          Outcome = "full"
	OutcomeFailed        Outcome = "failed"
)

type Attempt struct {
	ID          int64
	LessonID    string
	LessonType  string
	LessonStart time.Time
	Outcome     Outcome
	// Attempts is the retry counter after this attempt, zero on success.
	Attempts int
	Detail   string
	At       time.Time
}

// Store is implemented by Repo and Nop.
type Store interface {
	Record(ctx context.Context, a Attempt) error
	Recent(ctx context.Context, limit int) ([]Attempt, error)
}

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) Record(ctx context.Context, a Attempt) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	err := r.db.Exec(ctx, `
INSERT INTO booking_attempts(lesson_id,lesson_type,lesson_start,outcome,attempts,detail,attempted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.LessonID, a.LessonType, a.LessonStart, string(a.Outcome), a.Attempts, a.Detail, a.At,
	)
	return errs.Wrap(err, "insert booking attempt")
}

// Recent returns up to limit attempts, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
SELECT id,lesson_id,lesson_type,lesson_start,outcome,attempts,detail,attempted_at
FROM booking_attempts
ORDER BY attempted_at DESC, id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, errs.Wrap(err, "query booking attempts")
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var outcome string
		if err := rows.Scan(&a.ID, &a.LessonID, &a.LessonType, &a.LessonStart, &outcome, &a.Attempts, &a.Detail, &a.At); err != nil {
			return nil, errs.Wrap(err, "scan booking attempt")
		}
		a.Outcome = Outcome(outcome)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Nop discards attempts. Used when DATABASE_URL is not set.
type Nop struct{}

func (Nop) Record(context.Context, Attempt) error { return nil }

func (Nop) Recent(context.Context, int) ([]Attempt, error) { return nil, nil }
