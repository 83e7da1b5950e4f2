package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/identity"
	"github.com/quickdesk/ticket-engine/internal/repository"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

// AgentPerformance is one agent's entry in the admin dashboard.
type AgentPerformance struct {
	AgentID           string  `json:"agent_id"`
	DisplayName       string  `json:"display_name"`
	TotalTickets      int64   `json:"total_tickets"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	AvgResolutionTime float64 `json:"avg_resolution_time"`
	AvgSatisfaction   float64 `json:"avg_satisfaction"`
}

// DashboardStats is the operational dashboard payload. AgentPerformance is
// present only for admin callers — an empty roster still renders as [] there;
// for agents the field is absent entirely, hence the pointer.
type DashboardStats struct {
	OpenTickets          int64                           `json:"openTickets"`
	AvgResponseTime      float64                         `json:"avgResponseTime"`
	AvgResolutionTime    float64                         `json:"avgResolutionTime"`
	TodayTickets         int64                           `json:"todayTickets"`
	CategoryDistribution map[domain.TicketCategory]int64 `json:"categoryDistribution"`
	AgentPerformance     *[]AgentPerformance             `json:"agentPerformance,omitempty"`
}

// StatsService computes dashboard statistics, serving recent results from a
// short-lived redis cache when available.
type StatsService struct {
	stats    repository.StatsRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewStatsService creates the service. The cache client may be nil.
func NewStatsService(stats repository.StatsRepository, cache *redis.Client, cacheTTL time.Duration) *StatsService {
	return &StatsService{stats: stats, cache: cache, cacheTTL: cacheTTL}
}

// Dashboard returns dashboard-level metrics for a staff caller.
func (s *StatsService) Dashboard(ctx context.Context, actor *identity.Identity) (*DashboardStats, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("identity required")
	}
	if !actor.IsAgent() {
		return nil, apperrors.NewForbidden("dashboard stats are staff only")
	}

	cacheKey := "dashboard_stats:agent"
	if actor.IsAdmin() {
		cacheKey = "dashboard_stats:admin"
	}
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	totals, err := s.stats.DashboardTotals(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	distribution, err := s.stats.CategoryDistribution(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &DashboardStats{
		OpenTickets:          totals.OpenTickets,
		AvgResponseTime:      totals.AvgResponseMinutes,
		AvgResolutionTime:    totals.AvgResolutionMinutes,
		TodayTickets:         totals.TodayTickets,
		CategoryDistribution: distribution,
	}

	if actor.IsAdmin() {
		rows, err := s.stats.AgentPerformance(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		performance := make([]AgentPerformance, 0, len(rows))
		for _, row := range rows {
			performance = append(performance, AgentPerformance{
				AgentID:           row.AgentID,
				DisplayName:       row.DisplayName,
				TotalTickets:      row.TotalTickets,
				AvgResponseTime:   row.AvgResponseMinutes,
				AvgResolutionTime: row.AvgResolutionMinutes,
				AvgSatisfaction:   row.AvgSatisfaction,
			})
		}
		result.AgentPerformance = &performance
	}

	s.toCache(ctx, cacheKey, result)
	return result, nil
}

func (s *StatsService) fromCache(ctx context.Context, key string) *DashboardStats {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, key string, stats *DashboardStats) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, raw, s.cacheTTL).Err()
}
