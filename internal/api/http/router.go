package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Delete("/cancel-in-progress", cfg.Tickets.CancelAllInProgress)
	tickets.Put("/:id/take", cfg.Tickets.TakeTicket)
	tickets.Put("/:id/complete", cfg.Tickets.CompleteTicket)
	tickets.Put("/:id/cancel", cfg.Tickets.CancelTicket)
}
