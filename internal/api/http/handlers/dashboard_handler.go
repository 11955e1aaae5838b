package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/diario-de-bordo/internal/api/dto"
	"github.com/spec-kit/diario-de-bordo/internal/observability"
	"github.com/spec-kit/diario-de-bordo/internal/service"
)

// DashboardHandler serves the derived statistics.
type DashboardHandler struct {
	service *service.TicketService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(ticketService *service.TicketService) *DashboardHandler {
	return &DashboardHandler{service: ticketService}
}

// Dashboard GET /dashboard.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(summary)})
}

// MetricsHandler exposes the in-memory request counters.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Metrics GET /metrics.
func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
