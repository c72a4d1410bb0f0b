package middleware

import (
	"lms/backend/config"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the user id for handlers.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		utils.SetCurrentUserID(c, userID)
		return c.Next()
	}
}
