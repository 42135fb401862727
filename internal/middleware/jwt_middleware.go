package middleware

import (
	"errors"
	"log"
	"strings"

	"harvest/internal/apperror"
	"harvest/internal/models"
	"harvest/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalUser   = "user"
)

func deny(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return deny(c, fiber.StatusUnauthorized, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return deny(c, fiber.StatusUnauthorized, "Authorization header format must be 'Bearer <token>'")
		}

		user, err := authService.Authorize(c.UserContext(), parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			switch {
			case errors.Is(err, apperror.ErrForbidden):
				return deny(c, fiber.StatusForbidden, apperror.Message(err))
			case errors.Is(err, apperror.ErrUnauthorized):
				return deny(c, fiber.StatusUnauthorized, "Invalid or expired token")
			default:
				return err
			}
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalRole, user.Role)
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// AdminRequired allows only administrators. It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals(LocalRole).(string); role != models.RoleAdmin {
			return deny(c, fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's ID.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
