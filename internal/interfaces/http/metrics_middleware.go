package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Leadius-api/internal/infrastructure/metrics"
)

// MetricsMiddleware registra cada request por método, ruta (patrón, no path real) y status.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		metrics.RecordHTTP(c.Method(), c.Route().Path, status, time.Since(start).Seconds())
		return err
	}
}
