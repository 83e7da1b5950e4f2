package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/repository"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// AgentService manages the agent profiles the assignment engine routes to.
type AgentService struct {
	agents repository.AgentRepository
}

// NewAgentService creates the service.
func NewAgentService(agents repository.AgentRepository) *AgentService {
	return &AgentService{agents: agents}
}

// PromoteInput describes a new agent profile.
type PromoteInput struct {
	UserID           string
	DisplayName      string
	Department       domain.Department
	Specialties      []string
	MaxActiveTickets int
}

// Promote creates an agent profile for a user. Admin only.
func (s *AgentService) Promote(ctx context.Context, actor *identity.Identity, input PromoteInput) (*domain.AgentProfile, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("promotion is admin only")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewValidationError("user_id required", nil)
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, apperrors.NewValidationError("display_name required", nil)
	}
	if input.Department == "" {
		input.Department = domain.DepartmentGeneral
	}
	if !domain.ValidDepartment(input.Department) {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": input.Department})
	}

	agent := &domain.AgentProfile{
		UserID:           input.UserID,
		DisplayName:      strings.TrimSpace(input.DisplayName),
		Department:       input.Department,
		Specialties:      input.Specialties,
		MaxActiveTickets: input.MaxActiveTickets,
		IsAvailable:      true,
	}
	if agent.Specialties == nil {
		agent.Specialties = []string{}
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// SetAvailability toggles whether an agent receives new auto assignments.
// Agents may change their own flag; admins may change anyone's.
func (s *AgentService) SetAvailability(ctx context.Context, actor *identity.Identity, targetUserID string, available bool) (*domain.AgentProfile, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAgent() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	if targetUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only admins may change another agent's availability")
	}

	agent, err := s.loadAgent(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	agent.IsAvailable = available
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

// SetCapacity adjusts an agent's max active tickets. Admin only.
func (s *AgentService) SetCapacity(ctx context.Context, actor *identity.Identity, targetUserID string, maxActive int) (*domain.AgentProfile, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("capacity changes are admin only")
	}
	if maxActive <= 0 {
		return nil, apperrors.NewValidationError("max_active_tickets must be positive", map[string]any{"max_active_tickets": maxActive})
	}

	agent, err := s.loadAgent(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	agent.MaxActiveTickets = maxActive
	if err := s.agents.Update(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}

func (s *AgentService) loadAgent(ctx context.Context, userID string) (*domain.AgentProfile, error) {
	agent, err := s.agents.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("agent", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}
