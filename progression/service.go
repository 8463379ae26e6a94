package progression

import (
	"context"

	"github.com/google/uuid"
)

// Snapshot is a stored progress row as last read. Version is the
// compare-and-swap key; Exists is false for learners without a row yet.
type Snapshot struct {
	Progress
	Version int64
	Exists  bool
}

// EventMeta describes why a progress write happened. Stores record it next to
// the counters.
type EventMeta struct {
	LessonID  *uint
	LeveledUp bool
	Source    string
	Details   map[string]string
}

const (
	SourceLearner   = "learner"
	SourceReconcile = "reconcile"
)

// Store persists learner progress. SaveProgress must only write when the
// stored row still matches prev (same version, or still absent when
// prev.Exists is false) and report false otherwise.
type Store interface {
	LoadProgress(ctx context.Context, userID uuid.UUID) (Snapshot, error)
	SaveProgress(ctx context.Context, userID uuid.UUID, prev Snapshot, next Progress, meta EventMeta) (bool, error)
}

// Outcome is the result of an advancement attempt.
type Outcome struct {
	Previous  Progress `json:"previous"`
	Progress  Progress `json:"progress"`
	Advanced  bool     `json:"advanced"`
	LeveledUp bool     `json:"leveled_up"`
}

// Service performs advancement as read, compute, conditional write.
type Service struct {
	store       Store
	maxAttempts int
}

// NewService returns a Service that re-reads and retries a lost
// compare-and-swap up to maxAttempts times in total.
func NewService(store Store, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{store: store, maxAttempts: maxAttempts}
}

type lessonGuard struct {
	id          uint
	moduleLevel int
	orderIndex  int
}

type advanceOptions struct {
	lesson  *lessonGuard
	details map[string]string
}

// AdvanceOption customizes Advance.
type AdvanceOption func(*advanceOptions)

// ForLesson ties the advancement to a specific lesson. The lesson is checked
// against the counters read in each attempt: a lesson already completed turns
// the call into a no-op and a locked lesson fails with ErrLessonLocked.
func ForLesson(lessonID uint, moduleLevel, orderIndex int) AdvanceOption {
	return func(o *advanceOptions) {
		o.lesson = &lessonGuard{id: lessonID, moduleLevel: moduleLevel, orderIndex: orderIndex}
	}
}

// WithDetails attaches request metadata to the recorded event.
func WithDetails(details map[string]string) AdvanceOption {
	return func(o *advanceOptions) {
		o.details = details
	}
}

// Advance commits one finished lesson of the learner's current module.
func (s *Service) Advance(ctx context.Context, userID uuid.UUID, totalLessons int, opts ...AdvanceOption) (Outcome, error) {
	if userID == uuid.Nil {
		return Outcome{}, ErrUnauthorized
	}
	if totalLessons <= 0 {
		return Outcome{}, ErrInvalidArgument
	}

	var o advanceOptions
	for _, opt := range opts {
		opt(&o)
	}

	meta := EventMeta{Source: SourceLearner, Details: o.details}
	if o.lesson != nil {
		id := o.lesson.id
		meta.LessonID = &id
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		snap, err := s.load(ctx, userID)
		if err != nil {
			return Outcome{}, err
		}
		current := snap.Progress

		if o.lesson != nil {
			state := LessonFor(o.lesson.moduleLevel, o.lesson.orderIndex, current)
			if state.Completed {
				return Outcome{Previous: current, Progress: current}, nil
			}
			if !state.IsUnlocked {
				return Outcome{}, ErrLessonLocked
			}
		}

		next, leveledUp, err := Next(current, totalLessons)
		if err != nil {
			return Outcome{}, err
		}
		meta.LeveledUp = leveledUp

		saved, err := s.store.SaveProgress(ctx, userID, snap, next, meta)
		if err != nil {
			return Outcome{}, err
		}
		if saved {
			return Outcome{Previous: current, Progress: next, Advanced: true, LeveledUp: leveledUp}, nil
		}
	}
	return Outcome{}, ErrConflict
}

// Current returns the learner's counters, defaulting when no row exists.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (Progress, error) {
	if userID == uuid.Nil {
		return Progress{}, ErrUnauthorized
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	return snap.Progress, nil
}

// ReconcileSnapshot applies Reconcile to a row the caller already read and
// writes it conditionally. A lost race returns ErrConflict without retrying.
func (s *Service) ReconcileSnapshot(ctx context.Context, userID uuid.UUID, snap Snapshot, totalLessons int) (Outcome, error) {
	next, changed := Reconcile(snap.Progress, totalLessons)
	if !changed {
		return Outcome{Previous: snap.Progress, Progress: snap.Progress}, nil
	}
	saved, err := s.store.SaveProgress(ctx, userID, snap, next, EventMeta{LeveledUp: true, Source: SourceReconcile})
	if err != nil {
		return Outcome{}, err
	}
	if !saved {
		return Outcome{}, ErrConflict
	}
	return Outcome{Previous: snap.Progress, Progress: next, Advanced: true, LeveledUp: true}, nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	snap, err := s.store.LoadProgress(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if !snap.Exists {
		snap.Progress = DefaultProgress()
		snap.Version = 0
	}
	return snap, nil
}
