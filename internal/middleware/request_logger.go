package middleware

import (
	"strconv"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs every request with zap and records HTTP metrics
func RequestLogger(m *metrics.Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		err := c.Next()
		if err != nil {
			// let the app error handler write the response so the status is final
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		method := c.Method()
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := c.Response().StatusCode()

		m.RecordHTTPRequest(method, path, strconv.Itoa(status), duration)

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", duration),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case duration > time.Second:
			logger.Warn("Slow HTTP request", fields...)
		default:
			logger.Debug("HTTP request", fields...)
		}

		return nil
	}
}
