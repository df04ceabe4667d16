package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-learnpath-api/internal/config"
	"github.com/noah-isme/gema-learnpath-api/internal/handler"
	"github.com/noah-isme/gema-learnpath-api/internal/middleware"
	"github.com/noah-isme/gema-learnpath-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PlanHandler    *handler.PlanHandler
	LessonHandler  *handler.LessonHandler
	ProfileHandler *handler.ProfileHandler
	JWTMiddleware  fiber.Handler
	// GenerationLimiter guards routes that call the language model. Defaults to a
	// per-learner limiter built from cfg.GenerationRatePerMinute.
	GenerationLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	limiter := deps.GenerationLimiter
	if limiter == nil {
		limiter = middleware.RateLimit("generation", cfg.GenerationRatePerMinute, time.Minute)
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(v2.Group("/profile"))
	}

	plans := v2.Group("/plans")
	if deps.PlanHandler != nil {
		deps.PlanHandler.Register(plans, limiter)
	}
	if deps.LessonHandler != nil {
		deps.LessonHandler.Register(plans, limiter)
	}
}
