package progression

import "errors"

var (
	ErrUnauthorized    = errors.New("learner identity missing")
	ErrInvalidArgument = errors.New("total lessons in module must be positive")
	ErrNotFound        = errors.New("module or lesson not found")
	ErrConflict        = errors.New("progress changed concurrently")
	ErrLessonLocked    = errors.New("lesson is locked")
)
