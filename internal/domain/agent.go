package domain

import (
	"sort"
	"time"
)

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleNone  StaffRole = ""
	StaffRoleAgent StaffRole = "agent"
	StaffRoleAdmin StaffRole = "admin"
)

// Department is a staff specialization bucket used to route tickets.
type Department string

const (
	DepartmentGeneral     Department = "general"
	DepartmentTechnical   Department = "technical"
	DepartmentBilling     Department = "billing"
	DepartmentTrustSafety Department = "trust_safety"
	DepartmentContent     Department = "content"
	DepartmentVIP         Department = "vip"
)

// ValidDepartment reports whether the value is a known department.
func ValidDepartment(d Department) bool {
	switch d {
	case DepartmentGeneral, DepartmentTechnical, DepartmentBilling,
		DepartmentTrustSafety, DepartmentContent, DepartmentVIP:
		return true
	}
	return false
}

// DefaultMaxActiveTickets is the agent capacity applied when a profile is
// created without an explicit limit.
const DefaultMaxActiveTickets = 20

// AgentProfile holds routing state and running aggregates for one staff user.
type AgentProfile struct {
	ID                   string
	UserID               string
	DisplayName          string
	Department           Department
	Specialties          []string
	MaxActiveTickets     int
	IsAvailable          bool
	LastAssignedAt       *time.Time
	TotalTicketsHandled  int64
	AvgResponseMinutes   float64
	AvgResolutionMinutes float64
	AvgSatisfaction      float64
	SatisfactionCount    int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AgentLoad pairs a profile with its current active-assignment count for
// selection purposes.
type AgentLoad struct {
	Agent       AgentProfile
	ActiveCount int
}

// Eligible reports whether the agent may receive another auto assignment.
func (l AgentLoad) Eligible() bool {
	return l.Agent.IsAvailable && l.ActiveCount < l.Agent.MaxActiveTickets
}

// PickAgent selects the auto-assignment target from candidate loads: fewest
// active assignments first, ties broken by the oldest LastAssignedAt with nil
// treated as oldest. Returns nil when no candidate is eligible.
func PickAgent(candidates []AgentLoad) *AgentProfile {
	eligible := make([]AgentLoad, 0, len(candidates))
	for _, c := range candidates {
		if c.Eligible() {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].ActiveCount != eligible[j].ActiveCount {
			return eligible[i].ActiveCount < eligible[j].ActiveCount
		}
		return olderAssignment(eligible[i].Agent.LastAssignedAt, eligible[j].Agent.LastAssignedAt)
	})
	agent := eligible[0].Agent
	return &agent
}

func olderAssignment(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}

// IncrementalMean folds one more observation into a running average without
// rescanning history: new_avg = old_avg + (value - old_avg) / new_count.
func IncrementalMean(oldAvg float64, newCount int64, value float64) float64 {
	if newCount <= 0 {
		return oldAvg
	}
	return oldAvg + (value-oldAvg)/float64(newCount)
}
