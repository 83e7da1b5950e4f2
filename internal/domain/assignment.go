package domain

import "time"

// AssignmentType records how an agent ended up responsible for a ticket.
type AssignmentType string

const (
	AssignmentTypeAuto       AssignmentType = "auto"
	AssignmentTypeManual     AssignmentType = "manual"
	AssignmentTypeEscalation AssignmentType = "escalation"
	AssignmentTypeTransfer   AssignmentType = "transfer"
)

// Assignment links a ticket to the agent responsible for it. At most one
// assignment per ticket has IsActive set; creating a new active assignment
// deactivates the prior one and stamps its CompletedAt.
type Assignment struct {
	ID                 string
	TicketID           string
	AssigneeID         string
	AssignerID         string
	Type               AssignmentType
	PreviousAssigneeID *string
	Reason             *string
	IsActive           bool
	CompletedAt        *time.Time
	CreatedAt          time.Time
}
