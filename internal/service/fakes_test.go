package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/ticket-engine/internal/domain"
	"github.com/quickdesk/ticket-engine/internal/repository"
	apperrors "github.com/quickdesk/ticket-engine/pkg/util"
)

type fakeTicketRepo struct {
	byID       map[string]*domain.Ticket
	seq        int64
	createErr  error
	beforeRate func()
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	now := time.Now()
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.TicketNumber = domain.FormatTicketNumber(now, f.seq)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	stored := *ticket
	f.byID[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := f.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	stored := *ticket
	f.byID[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketRepo) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	for _, ticket := range f.byID {
		if ticket.TicketNumber == number {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.byID {
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func containsStatus(haystack []domain.TicketStatus, needle domain.TicketStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func (f *fakeTicketRepo) RateOnce(ctx context.Context, ticketID string, rating int) (bool, error) {
	if f.beforeRate != nil {
		f.beforeRate()
	}
	ticket, ok := f.byID[ticketID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if ticket.Satisfaction != nil {
		return false, nil
	}
	value := rating
	ticket.Satisfaction = &value
	ticket.UpdatedAt = time.Now()
	return true, nil
}

// seed installs a ticket directly, bypassing number generation.
func (f *fakeTicketRepo) seed(ticket *domain.Ticket) *domain.Ticket {
	f.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	}
	if ticket.TicketNumber == "" {
		ticket.TicketNumber = domain.FormatTicketNumber(time.Now(), f.seq)
	}
	stored := *ticket
	f.byID[ticket.ID] = &stored
	return ticket
}

type fakeResponseRepo struct {
	responses []domain.Response
	notified  map[string]time.Time
	seq       int
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{notified: map[string]time.Time{}}
}

func (f *fakeResponseRepo) Create(ctx context.Context, response *domain.Response) error {
	f.seq++
	response.ID = fmt.Sprintf("response-%d", f.seq)
	response.CreatedAt = time.Now()
	f.responses = append(f.responses, *response)
	return nil
}

func (f *fakeResponseRepo) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error) {
	var out []domain.Response
	for _, r := range f.responses {
		if r.TicketID != ticketID {
			continue
		}
		if r.IsInternal && !includeInternal {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResponseRepo) MarkNotified(ctx context.Context, responseID string, at time.Time) error {
	f.notified[responseID] = at
	return nil
}

type fakeAgentRepo struct {
	byUserID       map[string]*domain.AgentProfile
	loads          map[domain.Department][]domain.AgentLoad
	metricsCalls   int
	ratingCalls    int
	lastRating     int
	lastMetricsFor string
	seq            int
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{
		byUserID: map[string]*domain.AgentProfile{},
		loads:    map[domain.Department][]domain.AgentLoad{},
	}
}

func (f *fakeAgentRepo) Create(ctx context.Context, agent *domain.AgentProfile) error {
	f.seq++
	agent.ID = fmt.Sprintf("agent-%d", f.seq)
	if agent.MaxActiveTickets <= 0 {
		agent.MaxActiveTickets = domain.DefaultMaxActiveTickets
	}
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = agent.CreatedAt
	stored := *agent
	f.byUserID[agent.UserID] = &stored
	return nil
}

func (f *fakeAgentRepo) Update(ctx context.Context, agent *domain.AgentProfile) error {
	if _, ok := f.byUserID[agent.UserID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *agent
	f.byUserID[agent.UserID] = &stored
	return nil
}

func (f *fakeAgentRepo) GetByUserID(ctx context.Context, userID string) (*domain.AgentProfile, error) {
	agent, ok := f.byUserID[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *agent
	return &copied, nil
}

func (f *fakeAgentRepo) ListLoadsByDepartment(ctx context.Context, dept domain.Department) ([]domain.AgentLoad, error) {
	return f.loads[dept], nil
}

func (f *fakeAgentRepo) RecordServiceMetrics(ctx context.Context, userID string, responseMinutes, resolutionMinutes int) error {
	agent, ok := f.byUserID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.TotalTicketsHandled++
	agent.AvgResponseMinutes = domain.IncrementalMean(agent.AvgResponseMinutes, agent.TotalTicketsHandled, float64(responseMinutes))
	agent.AvgResolutionMinutes = domain.IncrementalMean(agent.AvgResolutionMinutes, agent.TotalTicketsHandled, float64(resolutionMinutes))
	f.metricsCalls++
	f.lastMetricsFor = userID
	return nil
}

func (f *fakeAgentRepo) RecordSatisfaction(ctx context.Context, userID string, rating int) error {
	agent, ok := f.byUserID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.SatisfactionCount++
	agent.AvgSatisfaction = domain.IncrementalMean(agent.AvgSatisfaction, agent.SatisfactionCount, float64(rating))
	f.ratingCalls++
	f.lastRating = rating
	return nil
}

type fakeAssignmentRepo struct {
	active     map[string]*domain.Assignment
	history    []domain.Assignment
	agents     *fakeAgentRepo
	replaceErr error
	seq        int
}

func newFakeAssignmentRepo(agents *fakeAgentRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{active: map[string]*domain.Assignment{}, agents: agents}
}

func (f *fakeAssignmentRepo) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Assignment, error) {
	assignment, ok := f.active[ticketID]
	if !ok {
		return nil, nil
	}
	copied := *assignment
	return &copied, nil
}

func (f *fakeAssignmentRepo) CountActiveByAssignee(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, assignment := range f.active {
		if assignment.AssigneeID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeAssignmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, a := range f.history {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) AutoAssign(ctx context.Context, ticketID string, dept domain.Department, assignerID string) (*domain.Assignment, error) {
	loads, _ := f.agents.ListLoadsByDepartment(ctx, dept)
	picked := domain.PickAgent(loads)
	if picked == nil {
		return nil, nil
	}
	assignment := &domain.Assignment{
		TicketID:   ticketID,
		AssigneeID: picked.UserID,
		AssignerID: assignerID,
		Type:       domain.AssignmentTypeAuto,
	}
	if err := f.ReplaceActive(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) ReplaceActive(ctx context.Context, assignment *domain.Assignment) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	if prev, ok := f.active[assignment.TicketID]; ok {
		now := time.Now()
		prev.IsActive = false
		prev.CompletedAt = &now
	}
	f.seq++
	assignment.ID = fmt.Sprintf("assignment-%d", f.seq)
	assignment.IsActive = true
	assignment.CreatedAt = time.Now()
	stored := *assignment
	f.active[assignment.TicketID] = &stored
	f.history = append(f.history, stored)
	return nil
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return apperrors.ToDomainError(err).Code
}
