package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/service"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// StatsHandler serves dashboard statistics.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard GET /staff/stats/dashboard.
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	stats, err := h.stats.Dashboard(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
