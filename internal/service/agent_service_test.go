package service

import (
	"context"
	"testing"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

func TestPromoteAdminOnly(t *testing.T) {
	svc := NewAgentService(newFakeAgentRepo())
	ctx := context.Background()
	input := PromoteInput{UserID: "user-9", DisplayName: "New Agent"}

	if _, err := svc.Promote(ctx, nil, input); domainCode(t, err) != "UNAUTHENTICATED" {
		t.Error("nil actor should be unauthenticated")
	}
	if _, err := svc.Promote(ctx, agentIdentity("agent-1"), input); domainCode(t, err) != "FORBIDDEN" {
		t.Error("agents may not promote")
	}
	if _, err := svc.Promote(ctx, ownerIdentity("user-1"), input); domainCode(t, err) != "FORBIDDEN" {
		t.Error("regular users may not promote")
	}
}

func TestPromoteDefaults(t *testing.T) {
	agents := newFakeAgentRepo()
	svc := NewAgentService(agents)

	agent, err := svc.Promote(context.Background(), adminIdentity("admin-1"), PromoteInput{
		UserID:      "user-9",
		DisplayName: "  New Agent  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.Department != domain.DepartmentGeneral {
		t.Errorf("expected general as the default department, got %s", agent.Department)
	}
	if agent.MaxActiveTickets != domain.DefaultMaxActiveTickets {
		t.Errorf("expected default capacity %d, got %d", domain.DefaultMaxActiveTickets, agent.MaxActiveTickets)
	}
	if !agent.IsAvailable {
		t.Error("new agents start available")
	}
	if agent.DisplayName != "New Agent" {
		t.Errorf("expected trimmed display name, got %q", agent.DisplayName)
	}
}

func TestPromoteValidation(t *testing.T) {
	svc := NewAgentService(newFakeAgentRepo())
	ctx := context.Background()
	admin := adminIdentity("admin-1")

	if _, err := svc.Promote(ctx, admin, PromoteInput{DisplayName: "X"}); domainCode(t, err) != "VALIDATION_FAILED" {
		t.Error("missing user_id should be rejected")
	}
	if _, err := svc.Promote(ctx, admin, PromoteInput{UserID: "u"}); domainCode(t, err) != "VALIDATION_FAILED" {
		t.Error("missing display_name should be rejected")
	}
	if _, err := svc.Promote(ctx, admin, PromoteInput{UserID: "u", DisplayName: "X", Department: "warehouse"}); domainCode(t, err) != "VALIDATION_FAILED" {
		t.Error("unknown department should be rejected")
	}
}

func TestSetAvailability(t *testing.T) {
	agents := newFakeAgentRepo()
	svc := NewAgentService(agents)
	ctx := context.Background()
	_ = agents.Create(ctx, &domain.AgentProfile{UserID: "agent-1", DisplayName: "A", Department: domain.DepartmentGeneral, IsAvailable: true})

	// Agents toggle their own flag.
	agent, err := svc.SetAvailability(ctx, agentIdentity("agent-1"), "agent-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.IsAvailable {
		t.Error("expected unavailable")
	}

	// But not anyone else's.
	if _, err := svc.SetAvailability(ctx, agentIdentity("agent-2"), "agent-1", true); domainCode(t, err) != "FORBIDDEN" {
		t.Error("agents may not change another agent's availability")
	}

	// Admins may.
	agent, err = svc.SetAvailability(ctx, adminIdentity("admin-1"), "agent-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !agent.IsAvailable {
		t.Error("expected available")
	}

	if _, err := svc.SetAvailability(ctx, adminIdentity("admin-1"), "missing", true); domainCode(t, err) != "NOT_FOUND" {
		t.Error("unknown agent should be NOT_FOUND")
	}
}

func TestSetCapacity(t *testing.T) {
	agents := newFakeAgentRepo()
	svc := NewAgentService(agents)
	ctx := context.Background()
	_ = agents.Create(ctx, &domain.AgentProfile{UserID: "agent-1", DisplayName: "A", Department: domain.DepartmentGeneral, IsAvailable: true})

	if _, err := svc.SetCapacity(ctx, agentIdentity("agent-1"), "agent-1", 30); domainCode(t, err) != "FORBIDDEN" {
		t.Error("capacity changes are admin only")
	}
	if _, err := svc.SetCapacity(ctx, adminIdentity("admin-1"), "agent-1", 0); domainCode(t, err) != "VALIDATION_FAILED" {
		t.Error("capacity must be positive")
	}

	agent, err := svc.SetCapacity(ctx, adminIdentity("admin-1"), "agent-1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.MaxActiveTickets != 30 {
		t.Errorf("expected capacity 30, got %d", agent.MaxActiveTickets)
	}
}
