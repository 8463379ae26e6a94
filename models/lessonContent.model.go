package models

import "gorm.io/gorm"

// Video is the optional video link of a lesson
type Video struct {
	gorm.Model
	LessonID uint   `json:"lesson_id" gorm:"not null;uniqueIndex"`
	VideoURL string `json:"video_url"`
}

// Slide is the optional slide file of a lesson, stored in object storage
type Slide struct {
	gorm.Model
	LessonID uint   `json:"lesson_id" gorm:"not null;uniqueIndex"`
	SlideURL string `json:"slide_url"`
	Bucket   string `json:"bucket"`
	FilePath string `json:"file_path"`
}

// FlashcardLinkWord marks the flashcard row that carries the lesson's flashcard link
const FlashcardLinkWord = "Flashcard Link"

// Flashcard holds the lesson's flashcard link in Translation
type Flashcard struct {
	gorm.Model
	LessonID        uint   `json:"lesson_id" gorm:"not null;uniqueIndex"`
	Word            string `json:"word"`
	Translation     string `json:"translation"`
	ExampleSentence string `json:"example_sentence" gorm:"type:text"`
}
