package routes

import (
	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/handlers"
	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all routes
func SetupRoutes(app *fiber.App, cfg *config.Config, webhook *handlers.WebhookHandler, health *handlers.HealthHandler, m *metrics.Metrics) {
	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ClinicBot Backend",
			"version": cfg.App.Version,
			"endpoints": fiber.Map{
				"health":  "/health",
				"metrics": "/metrics",
				"webhook": "/webhook/whatsapp",
			},
		})
	})

	app.Get("/health", health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	webhooks.Post("/whatsapp", middleware.RequireSignature(cfg.Webhook), webhook.HandleWebhook)
}
