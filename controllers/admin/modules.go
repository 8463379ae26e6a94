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

// AdminListModules lists every module in display order with lesson counts
func AdminListModules(c *fiber.Ctx) error {
	ctx := c.UserContext()
	db := database.Database.Db

	modules, err := database.OrderedModules(ctx, db)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	var counts []struct {
		ModuleID uint
		Total    int64
	}
	if err := db.WithContext(ctx).Model(&models.Lesson{}).Select("module_id, COUNT(*) AS total").Group("module_id").Scan(&counts).Error; err != nil {
		log.Printf("Failed to count lessons per module: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}
	byModule := make(map[uint]int64, len(counts))
	for _, row := range counts {
		byModule[row.ModuleID] = row.Total
	}

	type ModuleWithCount struct {
		models.Module
		LessonCount int64 `json:"lesson_count"`
	}

	result := make([]ModuleWithCount, len(modules))
	for i, m := range modules {
		result[i] = ModuleWithCount{Module: m, LessonCount: byModule[m.ID]}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", fiber.Map{
		"modules": result,
	})
}

// AdminCreateModule creates a module. Without a level it goes after the
// highest existing level.
func AdminCreateModule(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	reqData, ok := c.Locals("validatedModule").(*adminValidator.CreateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	level := reqData.Level
	if level == nil {
		var maxLevel int
		if err := db.Model(&models.Module{}).Select("COALESCE(MAX(level), 0)").Scan(&maxLevel).Error; err != nil {
			log.Printf("Failed to read highest module level: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
		}
		next := maxLevel + 1
		level = &next
	}

	module := models.Module{
		Title:       reqData.Title,
		Description: reqData.Description,
		Level:       level,
	}
	if err := db.Create(&module).Error; err != nil {
		log.Printf("Failed to create module: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// AdminUpdateModule updates the fields present in the request
func AdminUpdateModule(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	moduleID := c.Locals("moduleID").(uint)

	var module models.Module
	if err := db.First(&module, moduleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reqData, ok := c.Locals("validatedModuleUpdate").(*adminValidator.UpdateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		module.Title = *reqData.Title
	}
	if reqData.Description != nil {
		module.Description = *reqData.Description
	}
	if reqData.Level != nil {
		module.Level = reqData.Level
	}

	if err := db.Save(&module).Error; err != nil {
		log.Printf("Failed to update module %d: %v", moduleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// AdminDeleteModule deletes a module with its lessons and their content
func AdminDeleteModule(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())
	moduleID := c.Locals("moduleID").(uint)

	var module models.Module
	if err := db.First(&module, moduleID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		if err := tx.Model(&models.Lesson{}).Where("module_id = ?", moduleID).Pluck("id", &lessonIDs).Error; err != nil {
			return err
		}
		if err := database.DeleteLessonsCascade(tx, lessonIDs); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&module).Error
	})
	if err != nil {
		log.Printf("Failed to delete module %d: %v", moduleID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}
