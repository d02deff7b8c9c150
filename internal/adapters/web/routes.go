package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, handlers *Handlers, staticDir string) {
	app.Static("/static", staticDir)

	app.Get("/", handlers.Home)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Post("/analyze", handlers.Analyze)
	app.Post("/batch", handlers.Batch)

	api := app.Group("/api")
	api.Post("/metrics", handlers.APIMetrics)
	api.Post("/batch", handlers.APIBatch)
}
