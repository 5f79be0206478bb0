package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Pinger is anything that can report upstream health.
type Pinger interface {
	Ping(path string) error
}

// LivenessProbe проверяет, что шлюз работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe готов, только если сервис студии отвечает на /health/ready.
func ReadinessProbe(studio Pinger) fiber.Handler {
	return func(c fiber.Ctx) error {
		if err := studio.Ping("/health/ready"); err != nil {
			log.Printf("[GATEWAY] studio not ready: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "studio unavailable",
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
