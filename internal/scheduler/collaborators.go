package scheduler

import (
	"context"
	"time"

	"github.com/example/lessonsched/internal/journal"
	"github.com/example/lessonsched/internal/lesson"
)

//go:generate mockgen -source=collaborators.go -destination=../mocks/scheduler.go -package=mocks

// Remote is the lesson platform as seen by the scheduler.
type Remote interface {
	// Listings returns raw lessons starting between from and to.
	Listings(ctx context.Context, from, to time.Time) ([]lesson.Record, error)
	// LessonDetail returns the current record for id, or nil when the
	// platform does not know it.
	LessonDetail(ctx context.Context, id string) (*lesson.Record, error)
	// Join books id. startUTC is the lesson start in the platform's UTC form.
	Join(ctx context.Context, id, startUTC string) error
}

// Notifier reports outcomes to the operator. Implementations never fail the
// caller.
type Notifier interface {
	NotifySuccess(ctx context.Context, l lesson.Lesson)
	NotifyStillTrying(ctx context.Context, l lesson.Lesson, attempts int)
}

type Journal interface {
	Record(ctx context.Context, a journal.Attempt) error
}
