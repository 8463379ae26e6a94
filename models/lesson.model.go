package models

import "gorm.io/gorm"

// Lesson belongs to a module and is unlocked by its order index
type Lesson struct {
	gorm.Model
	ModuleID   uint   `json:"module_id" gorm:"not null;uniqueIndex:idx_lesson_module_order"`
	Title      string `json:"title" gorm:"not null"`
	Intro      string `json:"intro" gorm:"type:text"`
	OrderIndex int    `json:"order_index" gorm:"not null;uniqueIndex:idx_lesson_module_order"`

	Module Module `json:"-" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`
}
