package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// NewApp assembles the fiber application. Static routes register before the
// :flowId routes so "stats", "history" and "trigger" never match as ids.
func NewApp(handlers *APIHandlers) *fiber.App {
	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Kodisha Flow API")
	})

	flows := app.Group("/api/flows")
	flows.Get("/", handlers.ListFlows)
	flows.Post("/", handlers.CreateFlow)
	flows.Get("/stats", handlers.GetStats)
	flows.Get("/history/recent", handlers.RecentHistory)
	flows.Post("/trigger", handlers.TriggerEvent)
	flows.Get("/:flowId", handlers.GetFlow)
	flows.Put("/:flowId/enable", handlers.EnableFlow)
	flows.Put("/:flowId/disable", handlers.DisableFlow)
	flows.Delete("/:flowId", handlers.DeleteFlow)

	app.Get("/health", handlers.HealthCheck)

	return app
}
