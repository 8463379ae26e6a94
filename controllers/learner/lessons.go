package controllers

import (
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/progression"
	"log"

	"github.com/gofiber/fiber/v2"
)

type LessonView struct {
	models.Lesson
	IsUnlocked bool `json:"is_unlocked"`
	Completed  bool `json:"completed"`
}

// GetLessons lists a module's lessons with unlock and completion flags
func GetLessons(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db
	moduleID := c.Locals("moduleID").(uint)

	moduleLevel, err := database.ResolvedModuleLevel(ctx, db, moduleID)
	if err != nil {
		if database.IsNotFound(err) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		log.Printf("Failed to resolve module %d: %v", moduleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	var lessons []models.Lesson
	if err := db.WithContext(ctx).Where("module_id = ?", moduleID).Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		log.Printf("Failed to fetch lessons of module %d: %v", moduleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	progress := learnerProgress(c)
	orderIndexes := make([]int, len(lessons))
	for i, l := range lessons {
		orderIndexes[i] = l.OrderIndex
	}
	states := progression.ResolveLessonUnlocks(orderIndexes, moduleLevel, progress)

	views := make([]LessonView, len(lessons))
	for i, l := range lessons {
		views[i] = LessonView{Lesson: l, IsUnlocked: states[i].IsUnlocked, Completed: states[i].Completed}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", fiber.Map{
		"module_id":    moduleID,
		"module_level": moduleLevel,
		"lessons":      views,
	})
}
