package identity

import (
	"testing"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

func TestAccessOf(t *testing.T) {
	ticket := &domain.Ticket{ID: "ticket-1", OwnerID: "user-1"}

	cases := []struct {
		name  string
		actor *Identity
		want  AccessLevel
	}{
		{"nil actor", nil, AccessNone},
		{"admin", &Identity{UserID: "x", IsStaff: true, StaffRole: domain.StaffRoleAdmin}, AccessAdmin},
		{"agent", &Identity{UserID: "x", IsStaff: true, StaffRole: domain.StaffRoleAgent}, AccessAgent},
		{"owner", &Identity{UserID: "user-1"}, AccessOwner},
		{"stranger", &Identity{UserID: "user-2"}, AccessNone},
		{"staff flag without role", &Identity{UserID: "user-2", IsStaff: true}, AccessNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AccessOf(tc.actor, ticket); got != tc.want {
				t.Errorf("AccessOf = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	admin := &Identity{UserID: "a", IsStaff: true, StaffRole: domain.StaffRoleAdmin}
	agent := &Identity{UserID: "b", IsStaff: true, StaffRole: domain.StaffRoleAgent}
	user := &Identity{UserID: "c"}

	if !admin.IsAgent() || !admin.IsAdmin() {
		t.Error("admins are both staff and admin")
	}
	if !agent.IsAgent() || agent.IsAdmin() {
		t.Error("agents are staff but not admin")
	}
	if user.IsAgent() || user.IsAdmin() {
		t.Error("regular users hold no staff role")
	}
	var nobody *Identity
	if nobody.IsAgent() || nobody.IsAdmin() {
		t.Error("nil identity holds no role")
	}
}
