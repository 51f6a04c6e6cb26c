package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const correlationKey = "correlation_id"

// CorrelationMiddleware assigns a correlation id to every request,
// propagating an inbound X-Request-ID when present. The id is for
// observability only, not a security property.
func CorrelationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		corrID := c.Get("X-Request-ID")
		if corrID == "" {
			corrID = uuid.NewString()
		}
		c.Locals(correlationKey, corrID)
		c.Set("X-Request-ID", corrID)
		return c.Next()
	}
}

// CorrelationID retrieves the request's correlation id.
func CorrelationID(c *fiber.Ctx) string {
	if val, ok := c.Locals(correlationKey).(string); ok {
		return val
	}
	return "unknown"
}

// RequestLogger emits a structured line per request and records request
// counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(c.Path(), c.Method(), status, duration)
		logger.Info("request",
			zap.String("correlation_id", CorrelationID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return err
	}
}
