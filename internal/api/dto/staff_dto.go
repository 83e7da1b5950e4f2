package dto

import (
	"time"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// ChangeStatusRequest payload. Note, when set, is stored as an internal
// response alongside the transition.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note"`
}

// ChangePriorityRequest payload.
type ChangePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignRequest payload for manual assignment, transfer and escalation.
type AssignRequest struct {
	AgentID string  `json:"agent_id"`
	Reason  *string `json:"reason"`
}

// BulkUpdateRequest payload.
type BulkUpdateRequest struct {
	TicketIDs []string              `json:"ticket_ids"`
	Action    string                `json:"action"`
	AgentID   string                `json:"agent_id"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	Reason    *string               `json:"reason"`
}

// AssignmentView response.
type AssignmentView struct {
	ID                 string                `json:"id"`
	TicketID           string                `json:"ticket_id"`
	AssigneeID         string                `json:"assignee_id"`
	AssignerID         string                `json:"assigner_id"`
	Type               domain.AssignmentType `json:"type"`
	PreviousAssigneeID *string               `json:"previous_assignee_id"`
	Reason             *string               `json:"reason"`
	IsActive           bool                  `json:"is_active"`
	CompletedAt        *time.Time            `json:"completed_at"`
	CreatedAt          time.Time             `json:"created_at"`
}

// PromoteAgentRequest payload.
type PromoteAgentRequest struct {
	UserID           string            `json:"user_id"`
	DisplayName      string            `json:"display_name"`
	Department       domain.Department `json:"department"`
	Specialties      []string          `json:"specialties"`
	MaxActiveTickets int               `json:"max_active_tickets"`
}

// AgentAvailabilityRequest payload.
type AgentAvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

// AgentCapacityRequest payload.
type AgentCapacityRequest struct {
	MaxActiveTickets int `json:"max_active_tickets"`
}

// AgentProfileView response.
type AgentProfileView struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	DisplayName      string            `json:"display_name"`
	Department       domain.Department `json:"department"`
	Specialties      []string          `json:"specialties"`
	MaxActiveTickets int               `json:"max_active_tickets"`
	IsAvailable      bool              `json:"is_available"`
	LastAssignedAt   *time.Time        `json:"last_assigned_at"`
	CreatedAt        time.Time         `json:"created_at"`
}
