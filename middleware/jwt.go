package middleware

import (
	"errors"
	"fmt"
	"lexorial/config"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// GenerateJWT signs a token the way the identity provider does: HS256 with the
// learner uuid as subject.
func GenerateJWT(userID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

var errMissingToken = errors.New("missing token")

// parseBearer extracts and verifies the bearer token from the request
func parseBearer(c *fiber.Ctx) (uuid.UUID, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", errMissingToken
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return uuid.Nil, "", errors.New("invalid Authorization header format")
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", errors.New("invalid token payload")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, "", errors.New("invalid token subject")
	}
	email, _ := claims["email"].(string)
	return userID, email, nil
}

// JWTMiddleware rejects requests without a valid token and stores the learner
// id (uuid.UUID) in c.Locals("userId").
func JWTMiddleware(c *fiber.Ctx) error {
	userID, email, err := parseBearer(c)
	if err != nil {
		message := "Invalid or expired token"
		if errors.Is(err, errMissingToken) {
			message = "Missing or invalid Authorization header"
		}
		return JsonResponse(c, fiber.StatusUnauthorized, false, message, nil)
	}

	c.Locals("userId", userID)
	c.Locals("email", email)
	return c.Next()
}

// OptionalJWTMiddleware identifies the learner when a valid token is present
// and lets anonymous requests through.
func OptionalJWTMiddleware(c *fiber.Ctx) error {
	if userID, email, err := parseBearer(c); err == nil {
		c.Locals("userId", userID)
		c.Locals("email", email)
	}
	return c.Next()
}

// UserID returns the learner id set by the JWT middlewares, or uuid.Nil
func UserID(c *fiber.Ctx) uuid.UUID {
	id, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
