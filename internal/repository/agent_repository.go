package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// AgentRepository handles persistence for agent profiles.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.AgentProfile) error
	Update(ctx context.Context, agent *domain.AgentProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.AgentProfile, error)
	ListLoadsByDepartment(ctx context.Context, dept domain.Department) ([]domain.AgentLoad, error)
	RecordServiceMetrics(ctx context.Context, userID string, responseMinutes, resolutionMinutes int) error
	RecordSatisfaction(ctx context.Context, userID string, rating int) error
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, user_id, display_name, department, specialties, max_active_tickets, is_available,
               last_assigned_at, total_tickets_handled, avg_response_minutes, avg_resolution_minutes,
               avg_satisfaction, satisfaction_count, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.AgentProfile) error {
	if agent.MaxActiveTickets <= 0 {
		agent.MaxActiveTickets = domain.DefaultMaxActiveTickets
	}
	const query = `
        INSERT INTO agent_profiles (user_id, display_name, department, specialties, max_active_tickets, is_available)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		agent.UserID,
		agent.DisplayName,
		agent.Department,
		agent.Specialties,
		agent.MaxActiveTickets,
		agent.IsAvailable,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.AgentProfile) error {
	const query = `
        UPDATE agent_profiles
        SET display_name=$1, department=$2, specialties=$3, max_active_tickets=$4, is_available=$5, updated_at=NOW()
        WHERE user_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		agent.DisplayName,
		agent.Department,
		agent.Specialties,
		agent.MaxActiveTickets,
		agent.IsAvailable,
		agent.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) GetByUserID(ctx context.Context, userID string) (*domain.AgentProfile, error) {
	query := `SELECT ` + agentColumns + ` FROM agent_profiles WHERE user_id=$1`
	var agent domain.AgentProfile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&agent.ID,
		&agent.UserID,
		&agent.DisplayName,
		&agent.Department,
		&agent.Specialties,
		&agent.MaxActiveTickets,
		&agent.IsAvailable,
		&agent.LastAssignedAt,
		&agent.TotalTicketsHandled,
		&agent.AvgResponseMinutes,
		&agent.AvgResolutionMinutes,
		&agent.AvgSatisfaction,
		&agent.SatisfactionCount,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

// ListLoadsByDepartment returns available agents in a department paired with
// their current active-assignment counts.
func (r *agentRepository) ListLoadsByDepartment(ctx context.Context, dept domain.Department) ([]domain.AgentLoad, error) {
	query := `
        SELECT ` + agentColumns + `,
               (SELECT COUNT(*) FROM assignments a
                WHERE a.assignee_user_id = agent_profiles.user_id AND a.is_active) AS active_count
        FROM agent_profiles
        WHERE department=$1 AND is_available`
	rows, err := r.pool.Query(ctx, query, dept)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AgentLoad
	for rows.Next() {
		var load domain.AgentLoad
		if err := rows.Scan(
			&load.Agent.ID,
			&load.Agent.UserID,
			&load.Agent.DisplayName,
			&load.Agent.Department,
			&load.Agent.Specialties,
			&load.Agent.MaxActiveTickets,
			&load.Agent.IsAvailable,
			&load.Agent.LastAssignedAt,
			&load.Agent.TotalTicketsHandled,
			&load.Agent.AvgResponseMinutes,
			&load.Agent.AvgResolutionMinutes,
			&load.Agent.AvgSatisfaction,
			&load.Agent.SatisfactionCount,
			&load.Agent.CreatedAt,
			&load.Agent.UpdatedAt,
			&load.ActiveCount,
		); err != nil {
			return nil, err
		}
		result = append(result, load)
	}
	return result, rows.Err()
}

// RecordServiceMetrics folds one served ticket into the agent's running
// averages. The whole read-modify-write happens in a single UPDATE, so
// concurrent resolutions cannot lose increments.
func (r *agentRepository) RecordServiceMetrics(ctx context.Context, userID string, responseMinutes, resolutionMinutes int) error {
	const query = `
        UPDATE agent_profiles SET
            total_tickets_handled = total_tickets_handled + 1,
            avg_response_minutes = avg_response_minutes + ($1 - avg_response_minutes) / (total_tickets_handled + 1),
            avg_resolution_minutes = avg_resolution_minutes + ($2 - avg_resolution_minutes) / (total_tickets_handled + 1),
            updated_at = NOW()
        WHERE user_id=$3`
	cmd, err := r.pool.Exec(ctx, query, responseMinutes, resolutionMinutes, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordSatisfaction folds one rating into the agent's satisfaction average.
func (r *agentRepository) RecordSatisfaction(ctx context.Context, userID string, rating int) error {
	const query = `
        UPDATE agent_profiles SET
            satisfaction_count = satisfaction_count + 1,
            avg_satisfaction = avg_satisfaction + ($1 - avg_satisfaction) / (satisfaction_count + 1),
            updated_at = NOW()
        WHERE user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, rating, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
