package middleware

import (
	"time"

	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		kv := []interface{}{
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		}
		if p := utils.CurrentPrincipal(c); p.Authenticated() {
			kv = append(kv, "user_id", p.UserID)
		}
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			logger.Error("request", append(kv, "error", err)...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", kv...)
		default:
			logger.Info("request", kv...)
		}

		return err
	}
}
