package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/diario-de-bordo/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Metrics    *handlers.MetricsHandler
	Tickets    *handlers.TicketsHandler
	Dashboard  *handlers.DashboardHandler
	Escalation *handlers.EscalationHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Metrics)

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Post("/refresh", cfg.Tickets.RefreshTickets)
	tickets.Post("/classify", cfg.Tickets.ClassifyTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Get("/:id/report", cfg.Tickets.TicketReport)

	app.Get("/dashboard", cfg.Dashboard.Dashboard)

	escalations := app.Group("/escalations")
	escalations.Get("/", cfg.Escalation.Board)
	escalations.Get("/:id/validation", cfg.Escalation.OpenValidation)
	escalations.Post("/:id/validation/summary", cfg.Escalation.PreviewSummary)
	escalations.Post("/:id/validation", cfg.Escalation.CommitValidation)
}
