package adminValidator

import (
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/validators"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ============ Module Validators ============

type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Level       *int   `json:"level" validate:"omitempty,gte=1"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Level       *int    `json:"level" validate:"omitempty,gte=1"`
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateModuleRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"title": "title is required!"})
		}
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateModuleRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		if reqData.Title != nil {
			t := strings.TrimSpace(*reqData.Title)
			if t == "" {
				return middleware.ValidationErrorResponse(c, map[string]string{"title": "title must not be empty!"})
			}
			reqData.Title = &t
		}
		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}

func ModuleID() fiber.Handler {
	return validators.ParamID("id", "moduleID", "Module")
}

// ============ Lesson Validators ============

type CreateLessonRequest struct {
	ModuleID   uint   `json:"module_id" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	Intro      string `json:"intro" validate:"max=10000"`
	OrderIndex *int   `json:"order_index" validate:"omitempty,gte=1"`
}

type UpdateLessonRequest struct {
	ModuleID   *uint   `json:"module_id" validate:"omitempty,gte=1"`
	Title      *string `json:"title" validate:"omitempty,min=1,max=200"`
	Intro      *string `json:"intro" validate:"omitempty,max=10000"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,gte=1"`
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateLessonRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"title": "title is required!"})
		}
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateLessonRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

func LessonID() fiber.Handler {
	return validators.ParamID("id", "lessonID", "Lesson")
}

func ListLessons() fiber.Handler {
	return validators.QueryID("module_id", "moduleID", "Module", false)
}

// ============ Lesson Content Validators ============

// LessonContentRequest updates a lesson's links. A nil field is left alone,
// an empty string removes the item.
type LessonContentRequest struct {
	LessonID     uint    `json:"lesson_id" form:"lesson_id" validate:"required"`
	VideoURL     *string `json:"video_url" form:"video_url" validate:"omitempty,url"`
	FlashcardURL *string `json:"flashcard_url" form:"flashcard_url" validate:"omitempty,url"`
}

func LessonContentQuery() fiber.Handler {
	return validators.QueryID("lesson_id", "lessonID", "Lesson", true)
}

// UpdateLessonContent accepts JSON or multipart/form-data. In multipart mode
// an optional "slide_file" file is stored under Locals("slideFile").
func UpdateLessonContent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonContentRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}

		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			if file, err := c.FormFile("slide_file"); err == nil {
				c.Locals("slideFile", file)
			}
		}

		c.Locals("validatedLessonContent", reqData)
		return c.Next()
	}
}

// ============ Question Validators ============

type ChoiceInput struct {
	ChoiceText string `json:"choice_text" validate:"required,max=1000"`
	IsCorrect  bool   `json:"is_correct"`
}

type LongAnswerInput struct {
	AcceptedAnswer string `json:"accepted_answer" validate:"required,max=5000"`
}

type CreateQuestionRequest struct {
	LessonID     uint              `json:"lesson_id" validate:"required"`
	QuestionText string            `json:"question_text" validate:"required,max=5000"`
	QuestionType string            `json:"question_type" validate:"required"`
	OrderIndex   int               `json:"order_index" validate:"gte=0"`
	Choices      []ChoiceInput     `json:"choices" validate:"omitempty,dive"`
	LongAnswers  []LongAnswerInput `json:"long_answers" validate:"omitempty,dive"`
}

// UpdateQuestionRequest replaces the children of the question's variant when
// Choices or LongAnswers is present (even if empty).
type UpdateQuestionRequest struct {
	QuestionText *string           `json:"question_text" validate:"omitempty,min=1,max=5000"`
	QuestionType *string           `json:"question_type"`
	OrderIndex   *int              `json:"order_index" validate:"omitempty,gte=0"`
	Choices      []ChoiceInput     `json:"choices" validate:"omitempty,dive"`
	LongAnswers  []LongAnswerInput `json:"long_answers" validate:"omitempty,dive"`
}

// variantErrors checks that the children sent match the question type
func variantErrors(qt models.QuestionType, choices []ChoiceInput, longAnswers []LongAnswerInput) map[string]string {
	errors := make(map[string]string)
	switch qt {
	case models.QuestionTypeMultiple:
		if len(longAnswers) > 0 {
			errors["long_answers"] = "long_answers are only allowed for long questions!"
		}
	case models.QuestionTypeLong:
		if len(choices) > 0 {
			errors["choices"] = "choices are only allowed for multiple choice questions!"
		}
	default:
		errors["question_type"] = "question_type must be one of: multiple long!"
	}
	if len(errors) == 0 {
		return nil
	}
	return errors
}

func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateQuestionRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		reqData.QuestionText = strings.TrimSpace(reqData.QuestionText)
		reqData.QuestionType = strings.ToLower(strings.TrimSpace(reqData.QuestionType))
		if errs := variantErrors(models.QuestionType(reqData.QuestionType), reqData.Choices, reqData.LongAnswers); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

func UpdateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateQuestionRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		if reqData.QuestionType != nil {
			qt := strings.ToLower(strings.TrimSpace(*reqData.QuestionType))
			if errs := variantErrors(models.QuestionType(qt), reqData.Choices, reqData.LongAnswers); errs != nil {
				return middleware.ValidationErrorResponse(c, errs)
			}
			reqData.QuestionType = &qt
		}
		c.Locals("validatedQuestionUpdate", reqData)
		return c.Next()
	}
}

func QuestionID() fiber.Handler {
	return validators.ParamID("id", "questionID", "Question")
}

func ListQuestions() fiber.Handler {
	return validators.QueryID("lesson_id", "lessonID", "Lesson", true)
}

// ============ Choice / Long Answer Validators ============

type UpdateChoiceRequest struct {
	ChoiceText *string `json:"choice_text" validate:"omitempty,min=1,max=1000"`
	IsCorrect  *bool   `json:"is_correct"`
	OrderIndex *int    `json:"order_index" validate:"omitempty,gte=1"`
}

func CreateChoice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChoiceInput)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedChoice", reqData)
		return c.Next()
	}
}

func UpdateChoice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateChoiceRequest)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedChoiceUpdate", reqData)
		return c.Next()
	}
}

func ChoiceID() fiber.Handler {
	return validators.ParamID("id", "choiceID", "Choice")
}

func CreateLongAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LongAnswerInput)
		if ok, err := validators.ParseBody(c, reqData); !ok {
			return err
		}
		c.Locals("validatedLongAnswer", reqData)
		return c.Next()
	}
}

func LongAnswerID() fiber.Handler {
	return validators.ParamID("id", "longAnswerID", "Long answer")
}
