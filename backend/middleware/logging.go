package middleware

import (
	"time"

	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []interface{}{
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		}
		if userID, ok := utils.CurrentUserID(c); ok {
			fields = append(fields, "user_id", userID)
		}
		if status >= fiber.StatusInternalServerError {
			logger.Warn("request", fields...)
		} else {
			logger.Info("request", fields...)
		}

		return err
	}
}
