package domain

import "time"

// Response is a single message on a ticket thread. Responses are immutable
// once created. Internal responses are authored by staff and never shown to
// the ticket owner.
type Response struct {
	ID                 string
	TicketID           string
	AuthorID           string
	AuthorIsStaff      bool
	Message            string
	IsInternal         bool
	Attachments        []string
	Metadata           map[string]any
	NotificationSent   bool
	NotificationSentAt *time.Time
	CreatedAt          time.Time
}
