package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rbac-service/internal/observability"
)

// MetricsHandler exposes the in-memory counter snapshot.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot GET /api/metrics.
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
