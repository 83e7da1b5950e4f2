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

// StaffTicketsHandler manages staff-only ticket operations.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	bulk        *service.BulkService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, bulk *service.BulkService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, assignments: assignments, bulk: bulk}
}

// ChangeStatus PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), caller, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ChangePriority PATCH /staff/tickets/:id/priority.
func (h *StaffTicketsHandler) ChangePriority(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.ChangePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.ChangePriority(c.UserContext(), caller, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Assign POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	return h.reassign(c, func(caller *identity.Identity, req dto.AssignRequest) (*domain.Assignment, error) {
		return h.assignments.ManualAssign(c.UserContext(), caller, c.Params("id"), req.AgentID, req.Reason)
	})
}

// Transfer POST /staff/tickets/:id/transfer.
func (h *StaffTicketsHandler) Transfer(c *fiber.Ctx) error {
	return h.reassign(c, func(caller *identity.Identity, req dto.AssignRequest) (*domain.Assignment, error) {
		return h.assignments.Transfer(c.UserContext(), caller, c.Params("id"), req.AgentID, req.Reason)
	})
}

// Escalate POST /staff/tickets/:id/escalate.
func (h *StaffTicketsHandler) Escalate(c *fiber.Ctx) error {
	return h.reassign(c, func(caller *identity.Identity, req dto.AssignRequest) (*domain.Assignment, error) {
		return h.assignments.Escalate(c.UserContext(), caller, c.Params("id"), req.AgentID, req.Reason)
	})
}

func (h *StaffTicketsHandler) reassign(c *fiber.Ctx, apply func(*identity.Identity, dto.AssignRequest) (*domain.Assignment, error)) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}
	assignment, err := apply(caller, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentView(assignment)})
}

// BulkUpdate POST /staff/tickets/bulk.
func (h *StaffTicketsHandler) BulkUpdate(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}
	result, err := h.bulk.BulkUpdate(c.UserContext(), caller, req.TicketIDs, service.BulkAction(req.Action), service.BulkPayload{
		AgentID:  req.AgentID,
		Status:   req.Status,
		Priority: req.Priority,
		Reason:   req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

func assignmentView(assignment *domain.Assignment) dto.AssignmentView {
	return dto.AssignmentView{
		ID:                 assignment.ID,
		TicketID:           assignment.TicketID,
		AssigneeID:         assignment.AssigneeID,
		AssignerID:         assignment.AssignerID,
		Type:               assignment.Type,
		PreviousAssigneeID: assignment.PreviousAssigneeID,
		Reason:             assignment.Reason,
		IsActive:           assignment.IsActive,
		CompletedAt:        assignment.CompletedAt,
		CreatedAt:          assignment.CreatedAt,
	}
}
