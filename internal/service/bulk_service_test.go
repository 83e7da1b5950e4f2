package service

import (
	"context"
	"testing"
	"time"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/events"
)

func newBulkFixture() (*BulkService, *fakeTicketRepo, *fakeAgentRepo) {
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo()
	agents := newFakeAgentRepo()
	assignments := newFakeAssignmentRepo(agents)
	dispatcher := events.NewInMemoryDispatcher()
	ticketSvc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		ResponseRepo:   responses,
		AgentRepo:      agents,
		AssignmentRepo: assignments,
		Dispatcher:     dispatcher,
	})
	assignmentSvc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:     tickets,
		AgentRepo:      agents,
		AssignmentRepo: assignments,
		Dispatcher:     dispatcher,
	})
	return NewBulkService(ticketSvc, assignmentSvc), tickets, agents
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	svc, tickets, _ := newBulkFixture()
	ctx := context.Background()

	a := tickets.seed(&domain.Ticket{OwnerID: "user-1", Status: domain.TicketStatusOpen, CreatedAt: time.Now()})
	b := tickets.seed(&domain.Ticket{OwnerID: "user-2", Status: domain.TicketStatusOpen, CreatedAt: time.Now()})

	result, err := svc.BulkUpdate(ctx, agentIdentity("agent-1"),
		[]string{a.ID, "missing", b.ID},
		BulkActionStatus, BulkPayload{Status: domain.TicketStatusInProgress})
	if err != nil {
		t.Fatalf("a partial failure must not fail the batch: %v", err)
	}
	if result.UpdatedCount != 2 {
		t.Errorf("expected 2 updated, got %d", result.UpdatedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 item error, got %d", len(result.Errors))
	}
	if result.Errors[0].TicketID != "missing" || result.Errors[0].Code != "NOT_FOUND" {
		t.Errorf("unexpected item error: %+v", result.Errors[0])
	}

	updated, _ := tickets.GetByID(ctx, a.ID)
	if updated.Status != domain.TicketStatusInProgress {
		t.Errorf("expected in_progress, got %s", updated.Status)
	}
}

func TestBulkUpdateAssignAction(t *testing.T) {
	svc, tickets, agents := newBulkFixture()
	ctx := context.Background()
	_ = agents.Create(ctx, &domain.AgentProfile{UserID: "agent-1", DisplayName: "A", Department: domain.DepartmentGeneral, IsAvailable: true})
	ticket := tickets.seed(&domain.Ticket{OwnerID: "user-1", Status: domain.TicketStatusOpen, CreatedAt: time.Now()})

	result, err := svc.BulkUpdate(ctx, adminIdentity("admin-1"), []string{ticket.ID},
		BulkActionAssign, BulkPayload{AgentID: "agent-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UpdatedCount != 1 || len(result.Errors) != 0 {
		t.Errorf("expected clean single update, got %+v", result)
	}
}

func TestBulkUpdateItemLevelAuthzFailure(t *testing.T) {
	svc, tickets, _ := newBulkFixture()
	ctx := context.Background()
	ticket := tickets.seed(&domain.Ticket{OwnerID: "user-1", Status: domain.TicketStatusOpen, CreatedAt: time.Now()})

	// Agents cannot change priority; each item fails individually while the
	// batch itself succeeds.
	result, err := svc.BulkUpdate(ctx, agentIdentity("agent-1"), []string{ticket.ID},
		BulkActionPriority, BulkPayload{Priority: domain.TicketPriorityHigh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.UpdatedCount != 0 || len(result.Errors) != 1 || result.Errors[0].Code != "FORBIDDEN" {
		t.Errorf("expected one FORBIDDEN item error, got %+v", result)
	}
}

func TestBulkUpdateGuards(t *testing.T) {
	svc, _, _ := newBulkFixture()
	ctx := context.Background()

	if _, err := svc.BulkUpdate(ctx, ownerIdentity("user-1"), []string{"x"}, BulkActionStatus, BulkPayload{}); domainCode(t, err) != "FORBIDDEN" {
		t.Error("bulk updates are staff only")
	}
	if _, err := svc.BulkUpdate(ctx, agentIdentity("agent-1"), []string{"x"}, BulkAction("shred"), BulkPayload{}); domainCode(t, err) != "VALIDATION_FAILED" {
		t.Error("unknown action should be rejected up front")
	}
}
