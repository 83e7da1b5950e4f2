package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/ticket-engine/internal/api/dto"
	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/service"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// AgentsHandler manages agent-profile endpoints.
type AgentsHandler struct {
	agents *service.AgentService
}

// NewAgentsHandler constructs handler.
func NewAgentsHandler(agents *service.AgentService) *AgentsHandler {
	return &AgentsHandler{agents: agents}
}

// Promote POST /staff/agents.
func (h *AgentsHandler) Promote(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.PromoteAgentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.agents.Promote(c.UserContext(), caller, service.PromoteInput{
		UserID:           req.UserID,
		DisplayName:      req.DisplayName,
		Department:       req.Department,
		Specialties:      req.Specialties,
		MaxActiveTickets: req.MaxActiveTickets,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": agentView(agent)})
}

// SetAvailability PATCH /staff/agents/:userId/availability.
func (h *AgentsHandler) SetAvailability(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.AgentAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.agents.SetAvailability(c.UserContext(), caller, c.Params("userId"), req.IsAvailable)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agentView(agent)})
}

// SetCapacity PATCH /staff/agents/:userId/capacity.
func (h *AgentsHandler) SetCapacity(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.AgentCapacityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.agents.SetCapacity(c.UserContext(), caller, c.Params("userId"), req.MaxActiveTickets)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agentView(agent)})
}

func agentView(agent *domain.AgentProfile) dto.AgentProfileView {
	return dto.AgentProfileView{
		ID:               agent.ID,
		UserID:           agent.UserID,
		DisplayName:      agent.DisplayName,
		Department:       agent.Department,
		Specialties:      agent.Specialties,
		MaxActiveTickets: agent.MaxActiveTickets,
		IsAvailable:      agent.IsAvailable,
		LastAssignedAt:   agent.LastAssignedAt,
		CreatedAt:        agent.CreatedAt,
	}
}
