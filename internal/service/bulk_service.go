package service

import (
	"context"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/identity"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// BulkAction names the operation applied across a ticket set.
type BulkAction string

const (
	BulkActionAssign   BulkAction = "assign"
	BulkActionStatus   BulkAction = "status"
	BulkActionPriority BulkAction = "priority"
)

// BulkPayload carries the per-action parameters.
type BulkPayload struct {
	AgentID  string
	Status   domain.TicketStatus
	Priority domain.TicketPriority
	Reason   *string
}

// BulkItemError records one ticket's failure without aborting the batch.
type BulkItemError struct {
	TicketID string `json:"ticket_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// BulkResult reports how the batch went. Partial failure is a first-class
// success path here: the call completed even when some items did not.
type BulkResult struct {
	UpdatedCount int             `json:"updated_count"`
	Errors       []BulkItemError `json:"errors"`
}

// BulkService applies assign/status/priority changes across a ticket set
// with per-item isolation.
type BulkService struct {
	tickets     *TicketService
	assignments *AssignmentService
}

// NewBulkService creates the service.
func NewBulkService(tickets *TicketService, assignments *AssignmentService) *BulkService {
	return &BulkService{tickets: tickets, assignments: assignments}
}

// BulkUpdate processes each ticket id independently; one id's failure is
// recorded and the rest keep going. Each per-ticket update remains
// transactional on its own.
func (s *BulkService) BulkUpdate(ctx context.Context, actor *identity.Identity, ticketIDs []string, action BulkAction, payload BulkPayload) (*BulkResult, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAgent() {
		return nil, apperrors.NewForbidden("bulk updates are staff only")
	}
	switch action {
	case BulkActionAssign, BulkActionStatus, BulkActionPriority:
	default:
		return nil, apperrors.NewValidationError("unknown bulk action", map[string]any{"action": action})
	}

	result := &BulkResult{Errors: []BulkItemError{}}
	for _, ticketID := range ticketIDs {
		if err := s.applyOne(ctx, actor, ticketID, action, payload); err != nil {
			domainErr := apperrors.ToDomainError(err)
			result.Errors = append(result.Errors, BulkItemError{
				TicketID: ticketID,
				Code:     domainErr.Code,
				Message:  domainErr.Message,
			})
			continue
		}
		result.UpdatedCount++
	}
	return result, nil
}

func (s *BulkService) applyOne(ctx context.Context, actor *identity.Identity, ticketID string, action BulkAction, payload BulkPayload) error {
	switch action {
	case BulkActionAssign:
		_, err := s.assignments.ManualAssign(ctx, actor, ticketID, payload.AgentID, payload.Reason)
		return err
	case BulkActionStatus:
		note := ""
		if payload.Reason != nil {
			note = *payload.Reason
		}
		_, err := s.tickets.ChangeStatus(ctx, actor, ticketID, payload.Status, note)
		return err
	case BulkActionPriority:
		_, err := s.tickets.ChangePriority(ctx, actor, ticketID, payload.Priority)
		return err
	}
	return apperrors.NewValidationError("unknown bulk action", nil)
}
