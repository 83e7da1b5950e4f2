package dto

import (
	"time"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Category    domain.TicketCategory `json:"category"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Attachments []string              `json:"attachments"`
	Metadata    map[string]any        `json:"metadata"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Category     domain.TicketCategory `json:"category"`
	Subject      string                `json:"subject"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID                    string                `json:"id"`
	TicketNumber          string                `json:"ticket_number"`
	OwnerID               string                `json:"owner_id"`
	Category              domain.TicketCategory `json:"category"`
	Subject               string                `json:"subject"`
	Description           string                `json:"description"`
	Status                domain.TicketStatus   `json:"status"`
	Priority              domain.TicketPriority `json:"priority"`
	Attachments           []string              `json:"attachments"`
	Metadata              map[string]any        `json:"metadata"`
	Satisfaction          *int                  `json:"satisfaction"`
	ResponseTimeMinutes   *int                  `json:"response_time_minutes"`
	ResolutionTimeMinutes *int                  `json:"resolution_time_minutes"`
	ResolvedAt            *time.Time            `json:"resolved_at"`
	ClosedAt              *time.Time            `json:"closed_at"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
	Responses             []ResponseView        `json:"responses"`
}

// ResponseView represents one thread message.
type ResponseView struct {
	ID            string         `json:"id"`
	AuthorID      string         `json:"author_id"`
	AuthorIsStaff bool           `json:"author_is_staff"`
	Message       string         `json:"message"`
	IsInternal    bool           `json:"is_internal"`
	Attachments   []string       `json:"attachments"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CreateResponseRequest payload.
type CreateResponseRequest struct {
	Message     string         `json:"message"`
	IsInternal  bool           `json:"is_internal"`
	Attachments []string       `json:"attachments"`
	Metadata    map[string]any `json:"metadata"`
}

// RateTicketRequest payload.
type RateTicketRequest struct {
	Rating int `json:"rating"`
}
