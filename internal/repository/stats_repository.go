package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// DashboardTotals carries the ticket-level dashboard numbers.
type DashboardTotals struct {
	OpenTickets          int64
	AvgResponseMinutes   float64
	AvgResolutionMinutes float64
	TodayTickets         int64
}

// AgentPerformanceRow is one agent's running aggregates.
type AgentPerformanceRow struct {
	AgentID              string
	DisplayName          string
	TotalTickets         int64
	AvgResponseMinutes   float64
	AvgResolutionMinutes float64
	AvgSatisfaction      float64
}

// StatsRepository computes dashboard aggregates from the ticket store.
type StatsRepository interface {
	DashboardTotals(ctx context.Context) (*DashboardTotals, error)
	CategoryDistribution(ctx context.Context) (map[domain.TicketCategory]int64, error)
	AgentPerformance(ctx context.Context) ([]AgentPerformanceRow, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) DashboardTotals(ctx context.Context) (*DashboardTotals, error) {
	var totals DashboardTotals
	row := r.pool.QueryRow(ctx, `
        SELECT
            SUM(CASE WHEN status IN ('open','in_progress','waiting_customer') THEN 1 ELSE 0 END),
            COALESCE(AVG(response_time_minutes), 0),
            COALESCE(AVG(resolution_time_minutes), 0),
            SUM(CASE WHEN created_at >= date_trunc('day', NOW()) THEN 1 ELSE 0 END)
        FROM tickets`)
	var open, today *int64
	if err := row.Scan(&open, &totals.AvgResponseMinutes, &totals.AvgResolutionMinutes, &today); err != nil {
		return nil, err
	}
	if open != nil {
		totals.OpenTickets = *open
	}
	if today != nil {
		totals.TodayTickets = *today
	}
	return &totals, nil
}

func (r *statsRepository) CategoryDistribution(ctx context.Context) (map[domain.TicketCategory]int64, error) {
	// Every category is present in the result, zero-filled when absent.
	distribution := make(map[domain.TicketCategory]int64, len(domain.AllCategories))
	for _, category := range domain.AllCategories {
		distribution[category] = 0
	}

	rows, err := r.pool.Query(ctx, `SELECT category, COUNT(*) FROM tickets GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var category domain.TicketCategory
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		distribution[category] = count
	}
	return distribution, rows.Err()
}

func (r *statsRepository) AgentPerformance(ctx context.Context) ([]AgentPerformanceRow, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT user_id, display_name, total_tickets_handled, avg_response_minutes, avg_resolution_minutes, avg_satisfaction
        FROM agent_profiles
        ORDER BY display_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AgentPerformanceRow
	for rows.Next() {
		var row AgentPerformanceRow
		if err := rows.Scan(
			&row.AgentID,
			&row.DisplayName,
			&row.TotalTickets,
			&row.AvgResponseMinutes,
			&row.AvgResolutionMinutes,
			&row.AvgSatisfaction,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
