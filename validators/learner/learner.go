package learnerValidator

import (
	"lexorial/validators"

	"github.com/gofiber/fiber/v2"
)

// CompleteLessonRequest is the body of POST /api/progress. The total is
// checked by the progression engine so that an unauthenticated caller is
// rejected first.
type CompleteLessonRequest struct {
	TotalLessonsInModule int   `json:"total_lessons_in_module"`
	LessonID             *uint `json:"lesson_id"`
}

// ModuleLessons validates GET /api/lessons?moduleId=
func ModuleLessons() fiber.Handler {
	return validators.QueryID("moduleId", "moduleID", "Module", true)
}

// LessonContent validates GET /api/lesson-content?lesson_id=
func LessonContent() fiber.Handler {
	return validators.QueryID("lesson_id", "lessonID", "Lesson", true)
}

// CompleteLesson parses the completion request
func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompleteLessonRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}
