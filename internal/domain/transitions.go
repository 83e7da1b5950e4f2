package domain

// allowedTransitions declares every permitted status change. The machine is a
// declared table rather than a monotonic chain: reopening a resolved or
// closed ticket is a legitimate operational need, while skipping back into
// resolved or waiting_customer is not.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:            {TicketStatusInProgress, TicketStatusWaitingCustomer, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress:      {TicketStatusOpen, TicketStatusWaitingCustomer, TicketStatusResolved, TicketStatusClosed},
	TicketStatusWaitingCustomer: {TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:        {TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed},
	TicketStatusClosed:          {TicketStatusOpen, TicketStatusInProgress},
}

// ValidTransition reports whether a ticket may move from current to next.
func ValidTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanRate reports whether the ticket is in a state that accepts a
// satisfaction rating.
func CanRate(status TicketStatus) bool {
	return status == TicketStatusResolved || status == TicketStatusClosed
}
