package middleware

import (
	"errors"
	"lexorial/database"
	"lexorial/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequireAdmin lets the request through only when the caller's profile has
// the ADMIN role. Must run after JWTMiddleware.
func RequireAdmin(c *fiber.Ctx) error {
	userID := UserID(c)
	if userID == uuid.Nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var profile models.Profile
	err := database.Database.Db.WithContext(c.UserContext()).
		Where("user_id = ?", userID.String()).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
		}
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
	}

	if profile.Role != models.RoleAdmin {
		return JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	c.Locals("profile", profile)
	return c.Next()
}
