package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

var probeClient = &http.Client{Timeout: 2 * time.Second}

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe готов, когда сервис редактора отвечает на /health/live.
func ReadinessProbe(editorURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		resp, err := probeClient.Get(editorURL + "/health/live")
		if err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"editor": err.Error(),
			})
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"editor": resp.Status,
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}

// StartupProbe проверяет, что приложение успешно запустилось
func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}
