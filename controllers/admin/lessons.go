package controllers

import (
	"errors"
	"fmt"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	adminValidator "lexorial/validators/admin"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// orderIndexTaken reports whether another lesson of the module already uses
// orderIndex
func orderIndexTaken(db *gorm.DB, moduleID uint, orderIndex int, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Lesson{}).
		Where("module_id = ? AND order_index = ? AND id <> ?", moduleID, orderIndex, exceptID).
		Count(&count).Error
	return count > 0, err
}

func orderIndexTooHigh(c *fiber.Ctx, max int) error {
	return middleware.ValidationErrorResponse(c, map[string]string{
		"order_index": fmt.Sprintf("order_index must be at most %d!", max),
	})
}

// AdminListLessons lists lessons, optionally of a single module
func AdminListLessons(c *fiber.Ctx) error {
	query := database.Database.Db.WithContext(c.UserContext()).Model(&models.Lesson{})
	if moduleID, ok := c.Locals("moduleID").(uint); ok {
		query = query.Where("module_id = ?", moduleID)
	}

	var lessons []models.Lesson
	if err := query.Order("module_id asc, order_index asc, id asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", fiber.Map{
		"lessons": lessons,
	})
}

// AdminGetLesson returns one lesson
func AdminGetLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(uint)

	var lesson models.Lesson
	if err := database.Database.Db.WithContext(c.UserContext()).First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}

// AdminCreateLesson creates a lesson. Without an order index it goes last.
func AdminCreateLesson(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	reqData, ok := c.Locals("validatedLesson").(*adminValidator.CreateLessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var module models.Module
	if err := db.First(&module, reqData.ModuleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	count, err := database.CountLessons(db, module.ID)
	if err != nil {
		log.Printf("Failed to count lessons of module %d: %v", module.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	orderIndex := count + 1
	if reqData.OrderIndex != nil {
		if *reqData.OrderIndex > count+1 {
			return orderIndexTooHigh(c, count+1)
		}
		orderIndex = *reqData.OrderIndex
	}

	taken, err := orderIndexTaken(db, module.ID, orderIndex, 0)
	if err != nil {
		log.Printf("Failed to check lesson order of module %d: %v", module.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}
	if taken {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Order index already used in this module!", nil)
	}

	lesson := models.Lesson{
		ModuleID:   module.ID,
		Title:      reqData.Title,
		Intro:      reqData.Intro,
		OrderIndex: orderIndex,
	}
	if err := db.Create(&lesson).Error; err != nil {
		log.Printf("Failed to create lesson: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates the fields present in the request. Moving a lesson
// to another module appends it there and closes the gap it leaves; a new
// order index inside the same module swaps places with the lesson holding it.
func AdminUpdateLesson(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	lessonID := c.Locals("lessonID").(uint)

	var lesson models.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData, ok := c.Locals("validatedLessonUpdate").(*adminValidator.UpdateLessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	oldModuleID, oldIndex := lesson.ModuleID, lesson.OrderIndex
	moved := false
	if reqData.ModuleID != nil && *reqData.ModuleID != lesson.ModuleID {
		var module models.Module
		if err := db.First(&module, *reqData.ModuleID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		}
		lesson.ModuleID = module.ID
		moved = true
	}
	if reqData.Title != nil {
		lesson.Title = *reqData.Title
	}
	if reqData.Intro != nil {
		lesson.Intro = *reqData.Intro
	}

	count, err := database.CountLessons(db, lesson.ModuleID)
	if err != nil {
		log.Printf("Failed to count lessons of module %d: %v", lesson.ModuleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}
	maxIndex := count
	if moved {
		maxIndex = count + 1
		lesson.OrderIndex = maxIndex
	}
	if reqData.OrderIndex != nil {
		if *reqData.OrderIndex > maxIndex {
			return orderIndexTooHigh(c, maxIndex)
		}
		lesson.OrderIndex = *reqData.OrderIndex
	}

	var holder models.Lesson
	err = db.Where("module_id = ? AND order_index = ? AND id <> ?", lesson.ModuleID, lesson.OrderIndex, lesson.ID).Take(&holder).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check lesson order of module %d: %v", lesson.ModuleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}
	swap := err == nil
	if swap && moved {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Order index already used in this module!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if swap {
			// park on 0 so the unique (module_id, order_index) index never sees a duplicate
			if err := tx.Model(&models.Lesson{}).Where("id = ?", lesson.ID).Update("order_index", 0).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Lesson{}).Where("id = ?", holder.ID).Update("order_index", oldIndex).Error; err != nil {
				return err
			}
		}
		if err := tx.Omit("Module").Save(&lesson).Error; err != nil {
			return err
		}
		if moved {
			return database.RenumberLessons(tx, oldModuleID)
		}
		return nil
	})
	if err != nil {
		log.Printf("Failed to update lesson %d: %v", lessonID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminDeleteLesson deletes a lesson and its content, then renumbers the
// lessons after it
func AdminDeleteLesson(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	lessonID := c.Locals("lessonID").(uint)

	var lesson models.Lesson
	if err := db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.DeleteLessonsCascade(tx, []uint{lesson.ID}); err != nil {
			return err
		}
		return database.RenumberLessons(tx, lesson.ModuleID)
	})
	if err != nil {
		log.Printf("Failed to delete lesson %d: %v", lessonID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
