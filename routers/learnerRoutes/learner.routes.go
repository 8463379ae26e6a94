package learnerRoutes

import (
	"lexorial/config"
	controllers "lexorial/controllers/learner"
	"lexorial/middleware"
	validators "lexorial/validators/learner"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SetupLearnerRoutes sets up the learner facing routes
func SetupLearnerRoutes(app *fiber.App, limiter *middleware.RateLimiter) {
	api := app.Group("/api")

	// Listings work anonymously with default progress
	api.Get("/modules", middleware.OptionalJWTMiddleware, controllers.GetModules)
	api.Get("/lessons", middleware.OptionalJWTMiddleware, validators.ModuleLessons(), controllers.GetLessons)
	api.Get("/lesson-content", middleware.OptionalJWTMiddleware, validators.LessonContent(), controllers.GetLessonContent)

	// Progress
	api.Get("/progress", middleware.JWTMiddleware, controllers.GetProgress)
	api.Post("/progress",
		middleware.JWTMiddleware,
		limiter.Limit("progress", config.AppConfig.ProgressRateLimit, time.Minute),
		validators.CompleteLesson(),
		controllers.CompleteLesson,
	)
}
