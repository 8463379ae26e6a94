package models

import "gorm.io/gorm"

// Module is a level-gated group of lessons
type Module struct {
	gorm.Model
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Level       *int   `json:"level" gorm:"index"` // nil falls back to the module's position
}

// ModuleOrder is the display order of modules: levelled first, then by id
const ModuleOrder = "level IS NULL, level asc, id asc"
