package controllers

import (
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	adminValidator "lexorial/validators/admin"
	"log"

	"github.com/gofiber/fiber/v2"
)

// questionOfType loads the question from Locals("questionID") and checks its
// variant. ok is false when a response has been written.
func questionOfType(c *fiber.Ctx, want models.QuestionType) (q models.Question, ok bool, err error) {
	db := database.Database.Db.WithContext(c.UserContext())
	if err := db.First(&q, c.Locals("questionID").(uint)).Error; err != nil {
		return q, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}
	if q.QuestionType != want {
		return q, false, middleware.ValidationErrorResponse(c, map[string]string{
			"question_type": "question is not of type " + string(want) + "!",
		})
	}
	return q, true, nil
}

// ============ Choices ============

// AdminListChoices lists the choices of a multiple choice question
func AdminListChoices(c *fiber.Ctx) error {
	q, ok, err := questionOfType(c, models.QuestionTypeMultiple)
	if !ok {
		return err
	}

	var choices []models.QuestionChoice
	if err := database.Database.Db.WithContext(c.UserContext()).
		Where("question_id = ?", q.ID).Order("order_index asc, id asc").Find(&choices).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch choices!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Choices fetched successfully!", fiber.Map{"choices": choices})
}

// AdminCreateChoice appends a choice after the existing ones
func AdminCreateChoice(c *fiber.Ctx) error {
	q, ok, err := questionOfType(c, models.QuestionTypeMultiple)
	if !ok {
		return err
	}

	reqData, ok := c.Locals("validatedChoice").(*adminValidator.ChoiceInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())
	var count int64
	if err := db.Model(&models.QuestionChoice{}).Where("question_id = ?", q.ID).Count(&count).Error; err != nil {
		log.Printf("Failed to count choices of question %d: %v", q.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create choice!", nil)
	}

	choice := models.QuestionChoice{
		QuestionID: q.ID,
		ChoiceText: reqData.ChoiceText,
		IsCorrect:  reqData.IsCorrect,
		OrderIndex: int(count) + 1,
	}
	if err := db.Create(&choice).Error; err != nil {
		log.Printf("Failed to create choice: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create choice!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Choice created successfully!", choice)
}

func AdminUpdateChoice(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	var choice models.QuestionChoice
	if err := db.First(&choice, c.Locals("choiceID").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Choice not found!", nil)
	}

	reqData, ok := c.Locals("validatedChoiceUpdate").(*adminValidator.UpdateChoiceRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if reqData.ChoiceText != nil {
		choice.ChoiceText = *reqData.ChoiceText
	}
	if reqData.IsCorrect != nil {
		choice.IsCorrect = *reqData.IsCorrect
	}
	if reqData.OrderIndex != nil {
		choice.OrderIndex = *reqData.OrderIndex
	}

	if err := db.Save(&choice).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update choice!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Choice updated successfully!", choice)
}

func AdminDeleteChoice(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	res := db.Unscoped().Delete(&models.QuestionChoice{}, c.Locals("choiceID").(uint))
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete choice!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Choice not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Choice deleted successfully!", nil)
}

// ============ Long Answers ============

// AdminListLongAnswers lists the accepted answers of a long form question
func AdminListLongAnswers(c *fiber.Ctx) error {
	q, ok, err := questionOfType(c, models.QuestionTypeLong)
	if !ok {
		return err
	}

	var answers []models.QuestionLongAnswer
	if err := database.Database.Db.WithContext(c.UserContext()).
		Where("question_id = ?", q.ID).Order("id asc").Find(&answers).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch long answers!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Long answers fetched successfully!", fiber.Map{"long_answers": answers})
}

func AdminCreateLongAnswer(c *fiber.Ctx) error {
	q, ok, err := questionOfType(c, models.QuestionTypeLong)
	if !ok {
		return err
	}

	reqData, ok := c.Locals("validatedLongAnswer").(*adminValidator.LongAnswerInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	answer := models.QuestionLongAnswer{QuestionID: q.ID, AcceptedAnswer: reqData.AcceptedAnswer}
	if err := database.Database.Db.WithContext(c.UserContext()).Create(&answer).Error; err != nil {
		log.Printf("Failed to create long answer: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create long answer!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Long answer created successfully!", answer)
}

func AdminUpdateLongAnswer(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	var answer models.QuestionLongAnswer
	if err := db.First(&answer, c.Locals("longAnswerID").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Long answer not found!", nil)
	}

	reqData, ok := c.Locals("validatedLongAnswer").(*adminValidator.LongAnswerInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	answer.AcceptedAnswer = reqData.AcceptedAnswer

	if err := db.Save(&answer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update long answer!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Long answer updated successfully!", answer)
}

func AdminDeleteLongAnswer(c *fiber.Ctx) error {
	res := database.Database.Db.WithContext(c.UserContext()).
		Unscoped().Delete(&models.QuestionLongAnswer{}, c.Locals("longAnswerID").(uint))
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete long answer!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Long answer not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Long answer deleted successfully!", nil)
}
