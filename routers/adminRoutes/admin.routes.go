package adminRoutes

import (
	controllers "lexorial/controllers/admin"
	"lexorial/middleware"
	validators "lexorial/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes sets up all content authoring routes
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireAdmin)

	// Module Management
	adminGroup.Get("/modules", controllers.AdminListModules)
	adminGroup.Post("/modules", validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Put("/modules/:id", validators.ModuleID(), validators.UpdateModule(), controllers.AdminUpdateModule)
	adminGroup.Delete("/modules/:id", validators.ModuleID(), controllers.AdminDeleteModule)

	// Lesson Management
	adminGroup.Get("/lessons", validators.ListLessons(), controllers.AdminListLessons)
	adminGroup.Get("/lessons/:id", validators.LessonID(), controllers.AdminGetLesson)
	adminGroup.Post("/lessons", validators.CreateLesson(), controllers.AdminCreateLesson)
	adminGroup.Put("/lessons/:id", validators.LessonID(), validators.UpdateLesson(), controllers.AdminUpdateLesson)
	adminGroup.Delete("/lessons/:id", validators.LessonID(), controllers.AdminDeleteLesson)

	// Lesson Content
	adminGroup.Get("/lesson-content", validators.LessonContentQuery(), controllers.AdminGetLessonContent)
	adminGroup.Put("/lesson-content", validators.UpdateLessonContent(), controllers.AdminUpdateLessonContent)

	// Questions
	adminGroup.Get("/questions", validators.ListQuestions(), controllers.AdminListQuestions)
	adminGroup.Get("/questions/:id", validators.QuestionID(), controllers.AdminGetQuestion)
	adminGroup.Post("/questions", validators.CreateQuestion(), controllers.AdminCreateQuestion)
	adminGroup.Put("/questions/:id", validators.QuestionID(), validators.UpdateQuestion(), controllers.AdminUpdateQuestion)
	adminGroup.Delete("/questions/:id", validators.QuestionID(), controllers.AdminDeleteQuestion)

	// Choices
	adminGroup.Get("/questions/:id/choices", validators.QuestionID(), controllers.AdminListChoices)
	adminGroup.Post("/questions/:id/choices", validators.QuestionID(), validators.CreateChoice(), controllers.AdminCreateChoice)
	adminGroup.Put("/choices/:id", validators.ChoiceID(), validators.UpdateChoice(), controllers.AdminUpdateChoice)
	adminGroup.Delete("/choices/:id", validators.ChoiceID(), controllers.AdminDeleteChoice)

	// Long Answers
	adminGroup.Get("/questions/:id/long-answers", validators.QuestionID(), controllers.AdminListLongAnswers)
	adminGroup.Post("/questions/:id/long-answers", validators.QuestionID(), validators.CreateLongAnswer(), controllers.AdminCreateLongAnswer)
	adminGroup.Put("/long-answers/:id", validators.LongAnswerID(), validators.CreateLongAnswer(), controllers.AdminUpdateLongAnswer)
	adminGroup.Delete("/long-answers/:id", validators.LongAnswerID(), controllers.AdminDeleteLongAnswer)

	// Dashboard
	adminGroup.Get("/dashboard/stats", controllers.AdminDashboardStats)
	adminGroup.Get("/learners/:user_id/progress", controllers.AdminGetLearnerProgress)
}
