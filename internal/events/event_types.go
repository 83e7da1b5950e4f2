package events

import (
	"time"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventResponseAdded       EventType = "response_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID  string           `json:"user_id"`
	IsStaff bool             `json:"is_staff"`
	Role    domain.StaffRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services. Delivery of any
// resulting notification is owned by an external collaborator.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Subject      string                `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID     string                `json:"assignee_id"`
	AssignmentType domain.AssignmentType `json:"assignment_type"`
}

// ResponseAddedPayload signals that a response was created. NeedsEmail marks
// responses the external notification collaborator should deliver.
type ResponseAddedPayload struct {
	ResponseID string `json:"response_id"`
	IsInternal bool   `json:"is_internal"`
	NeedsEmail bool   `json:"needs_email"`
	Preview    string `json:"preview"`
}
