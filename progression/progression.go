// Package progression decides which modules and lessons a learner may open and
// how finishing a lesson moves the learner's (level, level_lesson) counters.
//
// Everything here except Service is a pure function of its arguments.
package progression

import "math"

// Progress is a learner's position: the module level being worked on and the
// number of lessons already finished inside that module.
type Progress struct {
	Level       int `json:"level"`
	LevelLesson int `json:"level_lesson"`
}

// DefaultProgress is used for learners without a stored record and for
// anonymous requests.
func DefaultProgress() Progress {
	return Progress{Level: 1, LevelLesson: 0}
}

// ModuleState is the unlock decision for one module.
type ModuleState struct {
	Level      int  `json:"level"`
	IsUnlocked bool `json:"is_unlocked"`
}

// LessonState is the unlock decision for one lesson.
type LessonState struct {
	IsUnlocked bool `json:"is_unlocked"`
	Completed  bool `json:"completed"`
}

// Display is the read-model behind the progress sidebar.
type Display struct {
	DisplayLevel   int     `json:"display_level"`
	ModuleProgress float64 `json:"module_progress"`
}

// ModuleLevels resolves the effective level of every module in the given
// order. A module without a level (nil or non-positive) takes its 1-based
// position. This is the only place the fallback is applied.
func ModuleLevels(levels []*int) []int {
	resolved := make([]int, len(levels))
	for i, level := range levels {
		if level == nil || *level <= 0 {
			resolved[i] = i + 1
			continue
		}
		resolved[i] = *level
	}
	return resolved
}

// ResolveModuleUnlocks marks each module unlocked iff its level is at or below
// the learner's level. Input order is preserved.
func ResolveModuleUnlocks(levels []*int, learnerLevel int) []ModuleState {
	resolved := ModuleLevels(levels)
	states := make([]ModuleState, len(resolved))
	for i, level := range resolved {
		states[i] = ModuleState{
			Level:      level,
			IsUnlocked: level <= learnerLevel,
		}
	}
	return states
}

// LessonFor evaluates a single lesson of a module at moduleLevel.
//
// Past modules are fully open and completed. In the current module every
// finished lesson plus the next one is open. Future modules are locked.
func LessonFor(moduleLevel, orderIndex int, p Progress) LessonState {
	switch {
	case moduleLevel < p.Level:
		return LessonState{IsUnlocked: true, Completed: true}
	case moduleLevel == p.Level:
		return LessonState{
			IsUnlocked: orderIndex <= p.LevelLesson+1,
			Completed:  orderIndex <= p.LevelLesson,
		}
	default:
		return LessonState{}
	}
}

// ResolveLessonUnlocks applies LessonFor to every lesson of one module, given
// their order indexes in display order.
func ResolveLessonUnlocks(orderIndexes []int, moduleLevel int, p Progress) []LessonState {
	states := make([]LessonState, len(orderIndexes))
	for i, orderIndex := range orderIndexes {
		states[i] = LessonFor(moduleLevel, orderIndex, p)
	}
	return states
}

// Next returns the counters after one more lesson of the current module is
// finished. Reaching totalLessons rolls over to the next level.
func Next(p Progress, totalLessons int) (Progress, bool, error) {
	if totalLessons <= 0 {
		return p, false, ErrInvalidArgument
	}
	next := Progress{Level: p.Level, LevelLesson: p.LevelLesson + 1}
	if next.LevelLesson >= totalLessons {
		return Progress{Level: p.Level + 1, LevelLesson: 0}, true, nil
	}
	return next, false, nil
}

// Reconcile rolls a learner over when the current module shrank below the
// number of lessons already finished. An empty or missing module (total 0)
// leaves the counters alone.
func Reconcile(p Progress, totalLessons int) (Progress, bool) {
	if totalLessons <= 0 || p.LevelLesson < totalLessons {
		return p, false
	}
	return Progress{Level: p.Level + 1, LevelLesson: 0}, true
}

// ComputeProgressDisplay derives the sidebar numbers. A learner that just
// rolled over is shown as having finished the previous level.
func ComputeProgressDisplay(p Progress, totalLessons int) Display {
	d := Display{DisplayLevel: p.Level}
	if p.LevelLesson == 0 && p.Level > 1 {
		d.DisplayLevel = p.Level - 1
	}
	if totalLessons <= 0 {
		return d
	}
	pct := float64(p.LevelLesson) / float64(totalLessons) * 100
	d.ModuleProgress = math.Round(math.Min(pct, 100)*10) / 10
	return d
}
