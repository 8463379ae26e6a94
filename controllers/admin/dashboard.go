package controllers

import (
	"errors"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/progression"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type eventCounts struct {
	Completions int64 `json:"completions"`
	LevelUps    int64 `json:"level_ups"`
}

func countEventsSince(db *gorm.DB, since time.Time) (eventCounts, error) {
	var out eventCounts
	if err := db.Model(&models.ProgressEvent{}).
		Where("source = ? AND created_at >= ?", progression.SourceLearner, since).
		Count(&out.Completions).Error; err != nil {
		return out, err
	}
	err := db.Model(&models.ProgressEvent{}).
		Where("leveled_up = ? AND created_at >= ?", true, since).
		Count(&out.LevelUps).Error
	return out, err
}

// AdminDashboardStats returns content totals, learners per level and recent
// progress activity
func AdminDashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db.WithContext(c.UserContext())

	var totals struct {
		Modules   int64 `json:"modules"`
		Lessons   int64 `json:"lessons"`
		Questions int64 `json:"questions"`
		Learners  int64 `json:"learners"`
	}
	for _, count := range []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Module{}, &totals.Modules},
		{&models.Lesson{}, &totals.Lessons},
		{&models.Question{}, &totals.Questions},
		{&models.UserProgress{}, &totals.Learners},
	} {
		if err := db.Model(count.model).Count(count.dest).Error; err != nil {
			log.Printf("Failed to count dashboard totals: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
		}
	}

	var perLevel []struct {
		Level    int   `json:"level"`
		Learners int64 `json:"learners"`
	}
	if err := db.Model(&models.UserProgress{}).
		Select("level, COUNT(*) AS learners").
		Group("level").
		Order("level asc").
		Scan(&perLevel).Error; err != nil {
		log.Printf("Failed to count learners per level: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
	}

	current := now.New(time.Now())
	today, err := countEventsSince(db, current.BeginningOfDay())
	if err != nil {
		log.Printf("Failed to count today's progress events: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
	}
	thisWeek, err := countEventsSince(db, current.BeginningOfWeek())
	if err != nil {
		log.Printf("Failed to count this week's progress events: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"totals":             totals,
		"learners_per_level": perLevel,
		"today":              today,
		"this_week":          thisWeek,
	})
}

// AdminGetLearnerProgress returns a learner's counters and latest progress
// events
func AdminGetLearnerProgress(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil || userID == uuid.Nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid learner ID!", nil)
	}

	db := database.Database.Db.WithContext(c.UserContext())

	var row models.UserProgress
	err = db.Where("user_id = ?", userID.String()).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch learner progress!", nil)
	}
	progress := progression.DefaultProgress()
	if err == nil {
		progress = progression.Progress{Level: row.Level, LevelLesson: row.LevelLesson}
	}

	var events []models.ProgressEvent
	if err := db.Where("user_id = ?", userID.String()).Order("id desc").Limit(20).Find(&events).Error; err != nil {
		log.Printf("Failed to fetch progress events of %s: %v", userID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch learner progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learner progress fetched successfully!", fiber.Map{
		"user_id":  userID,
		"progress": progress,
		"events":   events,
	})
}
