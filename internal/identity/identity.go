package identity

import (
	"github.com/quickdesk/ticket-engine/internal/domain"
)

// Identity is the authenticated caller as presented by the upstream
// gateway. The engine consumes identities; it never issues them.
type Identity struct {
	UserID     string
	IsStaff    bool
	StaffRole  domain.StaffRole
	Department domain.Department
}

// IsAgent reports whether the caller holds any staff role.
func (id *Identity) IsAgent() bool {
	return id != nil && id.IsStaff && id.StaffRole != domain.StaffRoleNone
}

// IsAdmin reports whether the caller holds the admin staff role.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.IsStaff && id.StaffRole == domain.StaffRoleAdmin
}

// AccessLevel ranks what an actor may do with a specific ticket.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessOwner
	AccessAgent
	AccessAdmin
)

// AccessOf is the single authorization predicate used by every ticket
// operation: it maps (actor, ticket) to the actor's access level. Staff see
// every ticket; owners see their own; everyone else sees nothing.
func AccessOf(actor *Identity, ticket *domain.Ticket) AccessLevel {
	if actor == nil {
		return AccessNone
	}
	if actor.IsAdmin() {
		return AccessAdmin
	}
	if actor.IsAgent() {
		return AccessAgent
	}
	if ticket != nil && ticket.OwnerID == actor.UserID {
		return AccessOwner
	}
	return AccessNone
}
