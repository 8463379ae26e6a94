package controllers

import (
	"lexorial/config"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/progression"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func progressService() *progression.Service {
	return progression.NewService(
		database.NewProgressRepository(database.Database.Db),
		config.AppConfig.ProgressMaxAttempts,
	)
}

// learnerProgress returns the caller's counters. Anonymous callers and
// failed reads get the default progress, which unlocks the least.
func learnerProgress(c *fiber.Ctx) progression.Progress {
	userID := middleware.UserID(c)
	if userID == uuid.Nil {
		return progression.DefaultProgress()
	}
	p, err := progressService().Current(c.UserContext(), userID)
	if err != nil {
		log.Printf("Failed to load progress for %s, serving default: %v", userID, err)
		return progression.DefaultProgress()
	}
	return p
}

type ModuleView struct {
	models.Module
	Level      int  `json:"level"`
	IsUnlocked bool `json:"is_unlocked"`
}

// GetModules lists every module with its effective level and unlock state
func GetModules(c *fiber.Ctx) error {
	modules, err := database.OrderedModules(c.UserContext(), database.Database.Db)
	if err != nil {
		log.Printf("Failed to fetch modules: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	progress := learnerProgress(c)
	states := progression.ResolveModuleUnlocks(database.ModuleLevelPointers(modules), progress.Level)

	views := make([]ModuleView, len(modules))
	for i, m := range modules {
		views[i] = ModuleView{Module: m, Level: states[i].Level, IsUnlocked: states[i].IsUnlocked}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", fiber.Map{
		"modules":  views,
		"progress": progress,
	})
}
