package models

import "gorm.io/gorm"

type QuestionType string

const (
	QuestionTypeMultiple QuestionType = "multiple"
	QuestionTypeLong     QuestionType = "long"
)

// Valid reports whether t is a known question variant
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultiple, QuestionTypeLong:
		return true
	default:
		return false
	}
}

type Question struct {
	gorm.Model
	LessonID     uint         `json:"lesson_id" gorm:"index;not null"`
	QuestionText string       `json:"question_text" gorm:"type:text;not null"`
	QuestionType QuestionType `json:"question_type" gorm:"type:varchar(16);not null"`
	OrderIndex   int          `json:"order_index" gorm:"default:0"`

	Choices     []QuestionChoice     `json:"choices,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	LongAnswers []QuestionLongAnswer `json:"long_answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

// QuestionChoice is an option of a multiple choice question
type QuestionChoice struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	ChoiceText string `json:"choice_text" gorm:"not null"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
}

// QuestionLongAnswer is an accepted answer of a long form question
type QuestionLongAnswer struct {
	gorm.Model
	QuestionID     uint   `json:"question_id" gorm:"index;not null"`
	AcceptedAnswer string `json:"accepted_answer" gorm:"type:text;not null"`
}
