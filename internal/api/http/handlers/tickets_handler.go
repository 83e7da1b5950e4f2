package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/quickdesk/ticket-engine/internal/api/dto"
	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/service"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// TicketsHandler manages ticket endpoints shared by owners and staff.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	logger      *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments, logger: logger}
}

// CreateTicket POST /tickets. Newly created tickets are routed through
// auto-assignment; a failed routing attempt leaves the ticket unassigned
// rather than failing the creation.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Attachments: req.Attachments,
		Metadata:    req.Metadata,
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), caller, input)
	if err != nil {
		return err
	}

	if _, err := h.assignments.AutoAssign(c.UserContext(), ticket); err != nil {
		h.logger.Warn("auto assignment failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:number.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	ticket, responses, err := h.tickets.GetTicketByNumber(c.UserContext(), caller, c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, responses)})
}

// AddResponse POST /tickets/:number/responses.
func (h *TicketsHandler) AddResponse(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, _, err := h.tickets.GetTicketByNumber(c.UserContext(), caller, c.Params("number"))
	if err != nil {
		return err
	}
	response, err := h.tickets.SubmitResponse(c.UserContext(), caller, ticket.ID, service.ResponseInput{
		Message:     req.Message,
		IsInternal:  req.IsInternal,
		Attachments: req.Attachments,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": responseView(response)})
}

// RateTicket POST /tickets/:number/rating.
func (h *TicketsHandler) RateTicket(c *fiber.Ctx) error {
	caller, ok := identity.FromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("identity required")
	}
	var req dto.RateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, _, err := h.tickets.GetTicketByNumber(c.UserContext(), caller, c.Params("number"))
	if err != nil {
		return err
	}
	rated, err := h.tickets.RateSatisfaction(c.UserContext(), caller, ticket.ID, req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(rated, nil)})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.Categories = append(filter.Categories, domain.TicketCategory(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		filter.Keyword = &keyword
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	filter.SortBy = c.Query("sort")
	filter.Page = parseInt(c.Query("page"), 1)
	filter.Limit = parseInt(c.Query("limit"), 20)
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Category:     ticket.Category,
		Subject:      ticket.Subject,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, responses []domain.Response) dto.TicketDetailResponse {
	views := make([]dto.ResponseView, 0, len(responses))
	for i := range responses {
		views = append(views, responseView(&responses[i]))
	}
	return dto.TicketDetailResponse{
		ID:                    ticket.ID,
		TicketNumber:          ticket.TicketNumber,
		OwnerID:               ticket.OwnerID,
		Category:              ticket.Category,
		Subject:               ticket.Subject,
		Description:           ticket.Description,
		Status:                ticket.Status,
		Priority:              ticket.Priority,
		Attachments:           ticket.Attachments,
		Metadata:              ticket.Metadata,
		Satisfaction:          ticket.Satisfaction,
		ResponseTimeMinutes:   ticket.ResponseTimeMinutes,
		ResolutionTimeMinutes: ticket.ResolutionTimeMinutes,
		ResolvedAt:            ticket.ResolvedAt,
		ClosedAt:              ticket.ClosedAt,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
		Responses:             views,
	}
}

func responseView(response *domain.Response) dto.ResponseView {
	return dto.ResponseView{
		ID:            response.ID,
		AuthorID:      response.AuthorID,
		AuthorIsStaff: response.AuthorIsStaff,
		Message:       response.Message,
		IsInternal:    response.IsInternal,
		Attachments:   response.Attachments,
		Metadata:      response.Metadata,
		CreatedAt:     response.CreatedAt,
	}
}
