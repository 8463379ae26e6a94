package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserProgress stores a learner's level counters. Version is bumped on every
// write and guards concurrent updates.
type UserProgress struct {
	gorm.Model
	UserID      string `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Level       int    `json:"level" gorm:"not null;default:1"`
	LevelLesson int    `json:"level_lesson" gorm:"not null;default:0"`
	Version     int64  `json:"version" gorm:"not null;default:0"`
}

// ProgressEvent is written next to every successful progress update
type ProgressEvent struct {
	gorm.Model
	UserID          string         `json:"user_id" gorm:"type:varchar(36);index;not null"`
	LessonID        *uint          `json:"lesson_id"`
	Source          string         `json:"source" gorm:"type:varchar(16);index"`
	FromLevel       int            `json:"from_level"`
	FromLevelLesson int            `json:"from_level_lesson"`
	ToLevel         int            `json:"to_level"`
	ToLevelLesson   int            `json:"to_level_lesson"`
	LeveledUp       bool           `json:"leveled_up" gorm:"index"`
	Payload         datatypes.JSON `json:"payload"`
}
