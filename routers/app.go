package routers

import (
	"lexorial/config"
	"lexorial/middleware"
	"lexorial/routers/adminRoutes"
	"lexorial/routers/learnerRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// NewApp builds the Fiber app with middleware and all routes
func NewApp(limiter *middleware.RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: (config.AppConfig.MaxUploadMB + 1) * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	learnerRoutes.SetupLearnerRoutes(app, limiter)
	adminRoutes.SetupAdminRoutes(app)

	return app
}
