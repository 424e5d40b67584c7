package middleware

import (
	"log"
	"strings"

	"tasktrack/internal/models"
	"tasktrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// currentUserKey is the Locals key under which the resolved user is stored.
const currentUserKey = "currentUser"

// AuthRequired is a Fiber middleware that resolves the bearer token to a
// live user record before any task operation runs. Every failure mode,
// missing header, bad signature, expired token, or a subject that no
// longer exists, gets the same generic 401.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		}

		user, err := authService.ResolveUser(parts[1])
		if err != nil {
			log.Printf("Token resolution failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authorized",
			})
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired, or nil when the
// middleware did not run on this route.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}
