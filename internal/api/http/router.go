package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/ticket-engine/internal/api/http/handlers"
	"github.com/quickdesk/ticket-engine/internal/identity"
)

// RouteConfig bundles the handlers and middleware the router wires up.
type RouteConfig struct {
	Identity *identity.Middleware

	Tickets      *handlers.TicketsHandler
	StaffTickets *handlers.StaffTicketsHandler
	Agents       *handlers.AgentsHandler
	Stats        *handlers.StatsHandler
	Health       *handlers.HealthHandler
}

// RegisterRoutes mounts all API routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.Identity.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:number", cfg.Tickets.GetTicket)
	tickets.Post("/:number/responses", cfg.Tickets.AddResponse)
	tickets.Post("/:number/rating", cfg.Tickets.RateTicket)

	staff := api.Group("/staff", identity.RequireStaff())
	staff.Post("/tickets/bulk", cfg.StaffTickets.BulkUpdate)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.ChangeStatus)
	staff.Patch("/tickets/:id/priority", identity.RequireAdmin(), cfg.StaffTickets.ChangePriority)
	staff.Post("/tickets/:id/assign", cfg.StaffTickets.Assign)
	staff.Post("/tickets/:id/transfer", cfg.StaffTickets.Transfer)
	staff.Post("/tickets/:id/escalate", cfg.StaffTickets.Escalate)

	staff.Post("/agents", identity.RequireAdmin(), cfg.Agents.Promote)
	staff.Patch("/agents/:userId/availability", cfg.Agents.SetAvailability)
	staff.Patch("/agents/:userId/capacity", identity.RequireAdmin(), cfg.Agents.SetCapacity)

	staff.Get("/stats/dashboard", cfg.Stats.Dashboard)
}
