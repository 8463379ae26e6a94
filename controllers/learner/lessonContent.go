package controllers

import (
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/progression"
	"log"

	"github.com/gofiber/fiber/v2"
)

type ChoiceView struct {
	ID         uint   `json:"id"`
	ChoiceText string `json:"choice_text"`
	OrderIndex int    `json:"order_index"`
}

// QuestionView is a question as shown to learners: no correctness flags and
// no accepted answers.
type QuestionView struct {
	ID           uint                `json:"id"`
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`
	OrderIndex   int                 `json:"order_index"`
	Choices      []ChoiceView        `json:"choices,omitempty"`
}

func questionViews(questions []models.Question) []QuestionView {
	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			OrderIndex:   q.OrderIndex,
		}
		if q.QuestionType == models.QuestionTypeMultiple {
			views[i].Choices = make([]ChoiceView, len(q.Choices))
			for j, ch := range q.Choices {
				views[i].Choices[j] = ChoiceView{ID: ch.ID, ChoiceText: ch.ChoiceText, OrderIndex: ch.OrderIndex}
			}
		}
	}
	return views
}

// GetLessonContent returns a lesson with its video, slide, flashcard and
// questions. Locked lessons are refused.
func GetLessonContent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db
	lessonID := c.Locals("lessonID").(uint)

	content, err := database.LoadLessonContent(ctx, db, lessonID)
	if err != nil {
		if database.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		log.Printf("Failed to load content of lesson %d: %v", lessonID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson content!", nil)
	}

	moduleLevel, err := database.ResolvedModuleLevel(ctx, db, content.Lesson.ModuleID)
	if err != nil {
		if database.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		log.Printf("Failed to resolve module %d: %v", content.Lesson.ModuleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson content!", nil)
	}

	state := progression.LessonFor(moduleLevel, content.Lesson.OrderIndex, learnerProgress(c))
	if !state.IsUnlocked {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Lesson is locked!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson content fetched successfully!", fiber.Map{
		"lesson":    content.Lesson,
		"completed": state.Completed,
		"video":     content.Video,
		"slide":     content.Slide,
		"flashcard": content.Flashcard,
		"questions": questionViews(content.Questions),
	})
}
