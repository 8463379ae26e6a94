package controllers

import (
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	adminValidator "lexorial/validators/admin"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func loadQuestion(db *gorm.DB, id uint) (models.Question, error) {
	var q models.Question
	err := db.
		Preload("Choices", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("LongAnswers", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		First(&q, id).Error
	return q, err
}

func choiceRows(questionID uint, inputs []adminValidator.ChoiceInput) []models.QuestionChoice {
	rows := make([]models.QuestionChoice, len(inputs))
	for i, in := range inputs {
		rows[i] = models.QuestionChoice{
			QuestionID: questionID,
			ChoiceText: in.ChoiceText,
			IsCorrect:  in.IsCorrect,
			OrderIndex: i + 1,
		}
	}
	return rows
}

func longAnswerRows(questionID uint, inputs []adminValidator.LongAnswerInput) []models.QuestionLongAnswer {
	rows := make([]models.QuestionLongAnswer, len(inputs))
	for i, in := range inputs {
		rows[i] = models.QuestionLongAnswer{QuestionID: questionID, AcceptedAnswer: in.AcceptedAnswer}
	}
	return rows
}

// replaceChildren swaps the question's children for the given variant and
// drops those of the other variant
func replaceChildren(tx *gorm.DB, q models.Question, choices []adminValidator.ChoiceInput, longAnswers []adminValidator.LongAnswerInput) error {
	switch q.QuestionType {
	case models.QuestionTypeMultiple:
		if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&models.QuestionLongAnswer{}).Error; err != nil {
			return err
		}
		if choices == nil {
			return nil
		}
		if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&models.QuestionChoice{}).Error; err != nil {
			return err
		}
		if len(choices) == 0 {
			return nil
		}
		rows := choiceRows(q.ID, choices)
		return tx.Create(&rows).Error
	case models.QuestionTypeLong:
		if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&models.QuestionChoice{}).Error; err != nil {
			return err
		}
		if longAnswers == nil {
			return nil
		}
		if err := tx.Unscoped().Where("question_id = ?", q.ID).Delete(&models.QuestionLongAnswer{}).Error; err != nil {
			return err
		}
		if len(longAnswers) == 0 {
			return nil
		}
		rows := longAnswerRows(q.ID, longAnswers)
		return tx.Create(&rows).Error
	default:
		return nil
	}
}

// AdminListQuestions lists the questions of a lesson with their children
func AdminListQuestions(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	var questions []models.Question
	err := database.Database.Db.WithContext(c.UserContext()).
		Where("lesson_id = ?", lessonID).
		Preload("Choices", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_index asc, id asc") }).
		Preload("LongAnswers", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Order("order_index asc, id asc").
		Find(&questions).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", fiber.Map{
		"questions": questions,
	})
}

// AdminGetQuestion returns one question with its children
func AdminGetQuestion(c *fiber.Ctx) error {
	q, err := loadQuestion(database.Database.Db.WithContext(c.UserContext()), c.Locals("questionID").(uint))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully!", q)
}

// AdminCreateQuestion creates a question together with its choices or
// accepted answers
func AdminCreateQuestion(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	reqData, ok := c.Locals("validatedQuestion").(*adminValidator.CreateQuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var lesson models.Lesson
	if err := db.First(&lesson, reqData.LessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	question := models.Question{
		LessonID:     lesson.ID,
		QuestionText: reqData.QuestionText,
		QuestionType: models.QuestionType(reqData.QuestionType),
		OrderIndex:   reqData.OrderIndex,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		return replaceChildren(tx, question, reqData.Choices, reqData.LongAnswers)
	})
	if err != nil {
		log.Printf("Failed to create question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	created, err := loadQuestion(db, question.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch question!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully!", created)
}

// AdminUpdateQuestion updates a question. Changing the type drops the
// children of the previous variant.
func AdminUpdateQuestion(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	questionID := c.Locals("questionID").(uint)

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	reqData, ok := c.Locals("validatedQuestionUpdate").(*adminValidator.UpdateQuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.QuestionText != nil {
		question.QuestionText = *reqData.QuestionText
	}
	if reqData.OrderIndex != nil {
		question.OrderIndex = *reqData.OrderIndex
	}
	if reqData.QuestionType != nil {
		question.QuestionType = models.QuestionType(*reqData.QuestionType)
	}

	switch question.QuestionType {
	case models.QuestionTypeMultiple:
		if len(reqData.LongAnswers) > 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"long_answers": "long_answers are only allowed for long questions!"})
		}
	case models.QuestionTypeLong:
		if len(reqData.Choices) > 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"choices": "choices are only allowed for multiple choice questions!"})
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Choices", "LongAnswers").Save(&question).Error; err != nil {
			return err
		}
		return replaceChildren(tx, question, reqData.Choices, reqData.LongAnswers)
	})
	if err != nil {
		log.Printf("Failed to update question %d: %v", questionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	updated, err := loadQuestion(db, question.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch question!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", updated)
}

// AdminDeleteQuestion deletes a question with its children
func AdminDeleteQuestion(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	questionID := c.Locals("questionID").(uint)

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&models.QuestionChoice{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&models.QuestionLongAnswer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&question).Error
	})
	if err != nil {
		log.Printf("Failed to delete question %d: %v", questionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}
