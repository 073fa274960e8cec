package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Public paths served without the API key.
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// PublicPaths lists the routes the auth middleware lets through.
var PublicPaths = []string{HealthPath, MetricsPath}

// RegisterSystemRoutes mounts the health check and the metrics exporter.
func RegisterSystemRoutes(app fiber.Router, gatherer prometheus.Gatherer) {
	app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))
}
