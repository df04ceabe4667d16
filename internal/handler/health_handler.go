package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-learnpath-api/internal/config"
	"github.com/noah-isme/gema-learnpath-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	AIEnabled   bool      `json:"ai_enabled"`
}

// HealthCheck returns a handler that reports application health information.
// AIEnabled is false when no model credentials are configured and every
// generation is served from the offline fallbacks.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			AIEnabled:   cfg.AIEnabled(),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
