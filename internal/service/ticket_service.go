package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/events"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/repository"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// TicketService coordinates ticket lifecycle workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	responses   repository.ResponseRepository
	agents      repository.AgentRepository
	assignments repository.AssignmentRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	ResponseRepo   repository.ResponseRepository
	AgentRepo      repository.AgentRepository
	AssignmentRepo repository.AssignmentRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Category    domain.TicketCategory
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Attachments []string
	Metadata    map[string]any
}

// TicketListFilter describes listing filters and pagination.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Categories  []domain.TicketCategory
	Priorities  []domain.TicketPriority
	Keyword     *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	Page        int
	Limit       int
}

// ResponseInput describes a new response on a ticket.
type ResponseInput struct {
	Message     string
	IsInternal  bool
	Attachments []string
	Metadata    map[string]any
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		responses:   deps.ResponseRepo,
		agents:      deps.AgentRepo,
		assignments: deps.AssignmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket validates and persists a new ticket owned by the caller.
// Validation failures happen before any row is written.
func (s *TicketService) CreateTicket(ctx context.Context, actor *identity.Identity, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !domain.ValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	ticket := &domain.Ticket{
		OwnerID:     actor.UserID,
		Category:    input.Category,
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Attachments: input.Attachments,
		Metadata:    input.Metadata,
	}
	if ticket.Attachments == nil {
		ticket.Attachments = []string{}
	}
	if ticket.Metadata == nil {
		ticket.Metadata = map[string]any{}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrSequenceConflict) {
			return nil, apperrors.NewTransientConflict("ticket number generation exhausted retries", err)
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Category:     ticket.Category,
			Priority:     ticket.Priority,
			Subject:      ticket.Subject,
		},
	})
	return ticket, nil
}

// GetTicketByNumber fetches a ticket enforcing owner-or-staff visibility.
// Internal responses are withheld from non-staff callers.
func (s *TicketService) GetTicketByNumber(ctx context.Context, actor *identity.Identity, number string) (*domain.Ticket, []domain.Response, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthenticated("identity required")
	}
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
		}
		return nil, nil, apperrors.MapError(err)
	}
	access := identity.AccessOf(actor, ticket)
	if access == identity.AccessNone {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	responses, err := s.responses.ListByTicket(ctx, ticket.ID, access != identity.AccessOwner)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, responses, nil
}

// ListTickets returns tickets matching the filter. Non-staff callers are
// scoped to their own tickets regardless of the filter.
func (s *TicketService) ListTickets(ctx context.Context, actor *identity.Identity, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Categories:  filter.Categories,
		Priorities:  filter.Priorities,
		Keyword:     filter.Keyword,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		SortBy:      filter.SortBy,
	}
	if !actor.IsAgent() {
		owner := actor.UserID
		repoFilter.OwnerID = &owner
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	repoFilter.Limit = limit
	repoFilter.Offset = (page - 1) * limit

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// SubmitResponse appends a response to a ticket. A staff member's first
// public response stamps the ticket's response time.
func (s *TicketService) SubmitResponse(ctx context.Context, actor *identity.Identity, ticketID string, input ResponseInput) (*domain.Response, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	if input.IsInternal && !actor.IsAgent() {
		return nil, apperrors.NewForbidden("internal notes are staff only")
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if identity.AccessOf(actor, ticket) == identity.AccessNone {
		return nil, apperrors.NewForbidden("access denied")
	}

	response := &domain.Response{
		TicketID:      ticket.ID,
		AuthorID:      actor.UserID,
		AuthorIsStaff: actor.IsAgent(),
		Message:       message,
		IsInternal:    input.IsInternal,
		Attachments:   input.Attachments,
		Metadata:      input.Metadata,
	}
	if response.Attachments == nil {
		response.Attachments = []string{}
	}
	if response.Metadata == nil {
		response.Metadata = map[string]any{}
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, apperrors.MapError(err)
	}

	if actor.IsAgent() && !input.IsInternal && ticket.ResponseTimeMinutes == nil {
		minutes := minutesSince(ticket.CreatedAt, response.CreatedAt)
		ticket.ResponseTimeMinutes = &minutes
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventResponseAdded,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.ResponseAddedPayload{
			ResponseID: response.ID,
			IsInternal: response.IsInternal,
			NeedsEmail: !response.IsInternal,
			Preview:    stringPreview(response.Message, 120),
		},
	})
	return response, nil
}

// RateSatisfaction records the owner's satisfaction rating on a resolved or
// closed ticket. A ticket can be rated once; re-rating is rejected so agent
// averages fold each rating in exactly one time.
func (s *TicketService) RateSatisfaction(ctx context.Context, actor *identity.Identity, ticketID string, rating int) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != actor.UserID {
		return nil, apperrors.NewForbidden("only the ticket owner may rate")
	}
	if !domain.CanRate(ticket.Status) {
		return nil, apperrors.NewInvalidState("ticket must be resolved or closed before rating",
			map[string]any{"status": ticket.Status})
	}
	// The conditional write is the only guard against double rating: a
	// concurrent rating that landed after our read makes this a no-op.
	rated, err := s.tickets.RateOnce(ctx, ticket.ID, rating)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !rated {
		return nil, apperrors.NewAlreadyRated(ticket.ID)
	}
	ticket.Satisfaction = &rating

	if active, err := s.assignments.GetActiveByTicket(ctx, ticket.ID); err == nil && active != nil {
		if err := s.agents.RecordSatisfaction(ctx, active.AssigneeID, rating); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}
	return ticket, nil
}

// ChangeStatus applies a lifecycle transition, stamping timing fields and
// folding served tickets into the assigned agent's running averages. An
// optional note is recorded as an internal response in the same operation.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *identity.Identity, ticketID string, newStatus domain.TicketStatus, note string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAgent() {
		return nil, apperrors.NewForbidden("status changes are staff only")
	}
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewInvalidState("disallowed status transition",
			map[string]any{"from": ticket.Status, "to": newStatus})
	}

	now := time.Now()
	oldStatus := ticket.Status
	ticket.Status = newStatus
	resolutionRecorded := false

	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
		if ticket.ResolutionTimeMinutes == nil {
			minutes := minutesSince(ticket.CreatedAt, now)
			ticket.ResolutionTimeMinutes = &minutes
			resolutionRecorded = true
		}
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
		if ticket.ResolutionTimeMinutes == nil {
			minutes := minutesSince(ticket.CreatedAt, now)
			ticket.ResolutionTimeMinutes = &minutes
			resolutionRecorded = true
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if strings.TrimSpace(note) != "" {
		internalNote := &domain.Response{
			TicketID:      ticket.ID,
			AuthorID:      actor.UserID,
			AuthorIsStaff: true,
			Message:       strings.TrimSpace(note),
			IsInternal:    true,
			Attachments:   []string{},
			Metadata:      map[string]any{},
		}
		if err := s.responses.Create(ctx, internalNote); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	// Fold the served ticket into the agent aggregates exactly once: on the
	// transition that first recorded the resolution time, and only when the
	// response time is known as well.
	if resolutionRecorded && ticket.ResponseTimeMinutes != nil {
		if active, err := s.assignments.GetActiveByTicket(ctx, ticket.ID); err == nil && active != nil {
			if err := s.agents.RecordServiceMetrics(ctx, active.AssigneeID,
				*ticket.ResponseTimeMinutes, *ticket.ResolutionTimeMinutes); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Note:      strings.TrimSpace(note),
		},
	})
	return ticket, nil
}

// ChangePriority changes ticket priority. Admin only.
func (s *TicketService) ChangePriority(ctx context.Context, actor *identity.Identity, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("priority changes are admin only")
	}
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor *identity.Identity) events.Actor {
	return events.Actor{
		UserID:  actor.UserID,
		IsStaff: actor.IsStaff,
		Role:    actor.StaffRole,
	}
}

func minutesSince(start, end time.Time) int {
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
