package domain

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"open to in_progress", TicketStatusOpen, TicketStatusInProgress, true},
		{"open to resolved", TicketStatusOpen, TicketStatusResolved, true},
		{"open to closed", TicketStatusOpen, TicketStatusClosed, true},
		{"in_progress to waiting_customer", TicketStatusInProgress, TicketStatusWaitingCustomer, true},
		{"waiting_customer to resolved", TicketStatusWaitingCustomer, TicketStatusResolved, true},
		{"resolved to closed", TicketStatusResolved, TicketStatusClosed, true},
		{"resolved reopened", TicketStatusResolved, TicketStatusOpen, true},
		{"closed reopened", TicketStatusClosed, TicketStatusOpen, true},
		{"closed to in_progress", TicketStatusClosed, TicketStatusInProgress, true},
		{"closed to resolved", TicketStatusClosed, TicketStatusResolved, false},
		{"closed to waiting_customer", TicketStatusClosed, TicketStatusWaitingCustomer, false},
		{"resolved to waiting_customer", TicketStatusResolved, TicketStatusWaitingCustomer, false},
		{"no self transition", TicketStatusOpen, TicketStatusOpen, false},
		{"unknown source", TicketStatus("bogus"), TicketStatusOpen, false},
		{"unknown target", TicketStatusOpen, TicketStatus("bogus"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidTransition(tc.from, tc.to); got != tc.allowed {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestValidTransitionNeverAllowsSelf(t *testing.T) {
	statuses := []TicketStatus{
		TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingCustomer,
		TicketStatusResolved, TicketStatusClosed,
	}
	for _, s := range statuses {
		if ValidTransition(s, s) {
			t.Errorf("self transition %s should be rejected", s)
		}
	}
}

func TestCanRate(t *testing.T) {
	if !CanRate(TicketStatusResolved) || !CanRate(TicketStatusClosed) {
		t.Error("resolved and closed tickets must accept ratings")
	}
	for _, s := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingCustomer} {
		if CanRate(s) {
			t.Errorf("status %s should not accept ratings", s)
		}
	}
}
