package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusWaitingCustomer TicketStatus = "waiting_customer"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketCategory enumerates the closed set of request categories.
type TicketCategory string

const (
	CategoryAccount        TicketCategory = "account"
	CategoryTechnical      TicketCategory = "technical"
	CategoryPayment        TicketCategory = "payment"
	CategoryContent        TicketCategory = "content"
	CategoryTrustSafety    TicketCategory = "trust_safety"
	CategoryFeatureRequest TicketCategory = "feature_request"
	CategoryBugReport      TicketCategory = "bug_report"
	CategoryOther          TicketCategory = "other"
)

// AllCategories lists every category; statistics use it to zero-fill the
// category distribution.
var AllCategories = []TicketCategory{
	CategoryAccount,
	CategoryTechnical,
	CategoryPayment,
	CategoryContent,
	CategoryTrustSafety,
	CategoryFeatureRequest,
	CategoryBugReport,
	CategoryOther,
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(c TicketCategory) bool {
	for _, known := range AllCategories {
		if known == c {
			return true
		}
	}
	return false
}

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ValidStatus reports whether the value is a known lifecycle state.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingCustomer,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. A ticket is owned by the
// creating user for its full lifetime and is never deleted, only closed.
type Ticket struct {
	ID                    string
	TicketNumber          string
	OwnerID               string
	Category              TicketCategory
	Subject               string
	Description           string
	Status                TicketStatus
	Priority              TicketPriority
	Attachments           []string
	Metadata              map[string]any
	Satisfaction          *int
	ResponseTimeMinutes   *int
	ResolutionTimeMinutes *int
	ResolvedAt            *time.Time
	ClosedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsOpen reports whether the ticket counts toward the open backlog.
func (t *Ticket) IsOpen() bool {
	switch t.Status {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingCustomer:
		return true
	}
	return false
}
