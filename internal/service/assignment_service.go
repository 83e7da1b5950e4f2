package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/events"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/repository"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// systemAssigner marks assignments made by the engine itself.
const systemAssigner = "00000000-0000-0000-0000-000000000000"

// AssignmentService routes tickets to the staff responsible for them.
type AssignmentService struct {
	tickets     repository.TicketRepository
	agents      repository.AgentRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	AgentRepo      repository.AgentRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		agents:      deps.AgentRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// AutoAssign routes a ticket to the least-loaded available agent of the
// department serving its category. It returns (nil, nil) when no agent is
// eligible; the ticket simply stays unassigned.
func (s *AssignmentService) AutoAssign(ctx context.Context, ticket *domain.Ticket) (*domain.Assignment, error) {
	dept := domain.DepartmentFor(ticket.Category)
	assignment, err := s.assignments.AutoAssign(ctx, ticket.ID, dept, systemAssigner)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentConflict) {
			return nil, apperrors.NewTransientConflict("assignment lost a concurrent flip", err)
		}
		return nil, apperrors.MapError(err)
	}
	if assignment == nil {
		return nil, nil
	}
	s.publishAssigned(ctx, nil, assignment)
	return assignment, nil
}

// ManualAssign hands the ticket to a chosen agent. Capacity is advisory
// here; a human made the call.
func (s *AssignmentService) ManualAssign(ctx context.Context, actor *identity.Identity, ticketID, targetUserID string, reason *string) (*domain.Assignment, error) {
	return s.reassign(ctx, actor, ticketID, targetUserID, reason, domain.AssignmentTypeManual)
}

// Transfer moves the ticket to another agent, recording who held it before.
func (s *AssignmentService) Transfer(ctx context.Context, actor *identity.Identity, ticketID, targetUserID string, reason *string) (*domain.Assignment, error) {
	return s.reassign(ctx, actor, ticketID, targetUserID, reason, domain.AssignmentTypeTransfer)
}

// Escalate hands the ticket to a senior agent. Callers typically pair this
// with a priority bump through the ticket service.
func (s *AssignmentService) Escalate(ctx context.Context, actor *identity.Identity, ticketID, targetUserID string, reason *string) (*domain.Assignment, error) {
	return s.reassign(ctx, actor, ticketID, targetUserID, reason, domain.AssignmentTypeEscalation)
}

func (s *AssignmentService) reassign(ctx context.Context, actor *identity.Identity, ticketID, targetUserID string, reason *string, assignType domain.AssignmentType) (*domain.Assignment, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAgent() {
		return nil, apperrors.NewForbidden("assignment is staff only")
	}

	if _, err := s.agents.GetByUserID(ctx, targetUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAgentNotEligible(targetUserID)
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	assignment := &domain.Assignment{
		TicketID:   ticket.ID,
		AssigneeID: targetUserID,
		AssignerID: actor.UserID,
		Type:       assignType,
		Reason:     reason,
	}
	if assignType == domain.AssignmentTypeTransfer {
		current, err := s.assignments.GetActiveByTicket(ctx, ticket.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if current != nil {
			previous := current.AssigneeID
			assignment.PreviousAssigneeID = &previous
		}
	}

	if err := s.assignments.ReplaceActive(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrAssignmentConflict) {
			return nil, apperrors.NewTransientConflict("assignment lost a concurrent flip", err)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishAssigned(ctx, actor, assignment)
	return assignment, nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actor *identity.Identity, assignment *domain.Assignment) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  assignment.TicketID,
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			AssigneeID:     assignment.AssigneeID,
			AssignmentType: assignment.Type,
		},
	}
	if actor != nil {
		event.Actor = eventActor(actor)
	}
	_ = s.dispatcher.Publish(ctx, event)
}
