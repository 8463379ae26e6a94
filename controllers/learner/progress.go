package controllers

import (
	"errors"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/progression"
	"lexorial/utils"
	learnerValidator "lexorial/validators/learner"
	"log"

	"github.com/gofiber/fiber/v2"
)

// progressError maps engine errors to responses
func progressError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, progression.ErrUnauthorized):
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	case errors.Is(err, progression.ErrInvalidArgument):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "total_lessons_in_module must be a positive number!", nil)
	case errors.Is(err, progression.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	case errors.Is(err, progression.ErrLessonLocked):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Lesson is locked!", nil)
	case errors.Is(err, progression.ErrConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Progress changed, please retry!", nil)
	default:
		log.Printf("Progress not saved: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Progress not saved!", nil)
	}
}

// CompleteLesson advances the caller past one lesson of their current module
func CompleteLesson(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	reqData, ok := c.Locals("validatedCompletion").(*learnerValidator.CompleteLessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	opts := []progression.AdvanceOption{
		progression.WithDetails(map[string]string{
			"ip":         c.IP(),
			"user_agent": c.Get(fiber.HeaderUserAgent),
		}),
	}

	if reqData.LessonID != nil && reqData.TotalLessonsInModule > 0 {
		var lesson models.Lesson
		err := database.Database.Db.WithContext(ctx).First(&lesson, *reqData.LessonID).Error
		if err != nil {
			if database.IsNotFound(err) {
				return progressError(c, progression.ErrNotFound)
			}
			return progressError(c, err)
		}
		moduleLevel, err := database.ResolvedModuleLevel(ctx, database.Database.Db, lesson.ModuleID)
		if err != nil {
			return progressError(c, err)
		}
		opts = append(opts, progression.ForLesson(*reqData.LessonID, moduleLevel, lesson.OrderIndex))
	}

	outcome, err := progressService().Advance(ctx, userID, reqData.TotalLessonsInModule, opts...)
	if err != nil {
		return progressError(c, err)
	}

	if outcome.LeveledUp {
		email, _ := c.Locals("email").(string)
		utils.SendLevelUpEmail(email, outcome.Previous.Level, outcome.Progress.Level)
	}

	message := "Progress updated successfully!"
	if !outcome.Advanced {
		message = "Lesson already completed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, outcome)
}

// GetProgress returns the caller's counters and the sidebar read-model
func GetProgress(c *fiber.Ctx) error {
	ctx := c.UserContext()

	progress, err := progressService().Current(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, progression.ErrUnauthorized) {
			return progressError(c, err)
		}
		log.Printf("Failed to fetch progress: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	module, total, err := database.CurrentModule(ctx, database.Database.Db, progress.Level)
	if err != nil && !errors.Is(err, progression.ErrNotFound) {
		log.Printf("Failed to fetch current module: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	display := progression.ComputeProgressDisplay(progress, total)

	data := fiber.Map{
		"level":           progress.Level,
		"level_lesson":    progress.LevelLesson,
		"display_level":   display.DisplayLevel,
		"module_progress": display.ModuleProgress,
		"total_lessons":   total,
		"current_module":  nil,
	}
	if err == nil {
		data["current_module"] = fiber.Map{"id": module.ID, "title": module.Title}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", data)
}
