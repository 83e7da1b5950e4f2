package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// ErrAssignmentConflict is returned when an assignment flip lost the
// single-active-row race more times than the bounded retry allows.
var ErrAssignmentConflict = errors.New("active assignment conflict after retries")

// assignmentRetries bounds how often a flip replays after losing the race on
// the partial unique index.
const assignmentRetries = 3

// AssignmentRepository handles persistence for ticket assignments. All
// mutations preserve the invariant that a ticket has at most one active
// assignment; a partial unique index backs this at the data layer. Two
// concurrent flips of the same ticket race on that index: the loser's
// deactivate re-checks its row after the winner commits, sees it already
// inactive, and its insert then violates the index. Flips therefore replay a
// bounded number of times before surfacing ErrAssignmentConflict.
type AssignmentRepository interface {
	GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Assignment, error)
	CountActiveByAssignee(ctx context.Context, userID string) (int, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error)
	// AutoAssign selects the least-loaded eligible agent in the department
	// and creates an auto assignment, all in one transaction. It returns
	// (nil, nil) when no agent is eligible.
	AutoAssign(ctx context.Context, ticketID string, dept domain.Department, assignerID string) (*domain.Assignment, error)
	// ReplaceActive deactivates the ticket's current active assignment (if
	// any) and installs the given one atomically. Concurrent flips of the
	// same ticket surface ErrAssignmentConflict once retries are exhausted.
	ReplaceActive(ctx context.Context, assignment *domain.Assignment) error
}

type assignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository instantiates the repository.
func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepository{pool: pool}
}

const assignmentColumns = `id, ticket_id, assignee_user_id, assigner_user_id, assignment_type,
               previous_assignee_id, reason, is_active, completed_at, created_at`

func (r *assignmentRepository) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ticket_id=$1 AND is_active`
	assignment, err := scanAssignmentRow(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return assignment, nil
}

func (r *assignmentRepository) CountActiveByAssignee(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM assignments WHERE assignee_user_id=$1 AND is_active`, userID,
	).Scan(&count)
	return count, err
}

func (r *assignmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignmentRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *assignment)
	}
	return result, rows.Err()
}

func (r *assignmentRepository) AutoAssign(ctx context.Context, ticketID string, dept domain.Department, assignerID string) (*domain.Assignment, error) {
	var lastErr error
	for attempt := 0; attempt < assignmentRetries; attempt++ {
		assignment, err := r.autoAssignOnce(ctx, ticketID, dept, assignerID)
		if err == nil {
			return assignment, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrAssignmentConflict, lastErr)
}

func (r *assignmentRepository) autoAssignOnce(ctx context.Context, ticketID string, dept domain.Department, assignerID string) (assignment *domain.Assignment, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the department's agent rows so two concurrent creations cannot
	// both route to an agent with one remaining slot.
	candidates, err := lockAgentLoads(ctx, tx, dept)
	if err != nil {
		return nil, err
	}
	chosen := domain.PickAgent(candidates)
	if chosen == nil {
		// Ticket stays unassigned; a later manual assignment or an
		// availability change may pick it up.
		err = tx.Commit(ctx)
		return nil, err
	}

	if err = deactivateActive(ctx, tx, ticketID); err != nil {
		return nil, err
	}

	assignment = &domain.Assignment{
		TicketID:   ticketID,
		AssigneeID: chosen.UserID,
		AssignerID: assignerID,
		Type:       domain.AssignmentTypeAuto,
		IsActive:   true,
	}
	if err = insertAssignment(ctx, tx, assignment); err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx,
		`UPDATE agent_profiles SET last_assigned_at=NOW(), updated_at=NOW() WHERE user_id=$1`,
		chosen.UserID,
	); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *assignmentRepository) ReplaceActive(ctx context.Context, assignment *domain.Assignment) error {
	var lastErr error
	for attempt := 0; attempt < assignmentRetries; attempt++ {
		err := r.replaceActiveOnce(ctx, assignment)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrAssignmentConflict, lastErr)
}

func (r *assignmentRepository) replaceActiveOnce(ctx context.Context, assignment *domain.Assignment) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = deactivateActive(ctx, tx, assignment.TicketID); err != nil {
		return err
	}
	assignment.IsActive = true
	if err = insertAssignment(ctx, tx, assignment); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockAgentLoads reads and row-locks available agents of a department
// together with their active-assignment counts.
func lockAgentLoads(ctx context.Context, tx pgx.Tx, dept domain.Department) ([]domain.AgentLoad, error) {
	query := `
        SELECT user_id, display_name, department, max_active_tickets, is_available, last_assigned_at,
               (SELECT COUNT(*) FROM assignments a
                WHERE a.assignee_user_id = agent_profiles.user_id AND a.is_active) AS active_count
        FROM agent_profiles
        WHERE department=$1 AND is_available
        FOR UPDATE OF agent_profiles`
	rows, err := tx.Query(ctx, query, dept)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AgentLoad
	for rows.Next() {
		var load domain.AgentLoad
		if err := rows.Scan(
			&load.Agent.UserID,
			&load.Agent.DisplayName,
			&load.Agent.Department,
			&load.Agent.MaxActiveTickets,
			&load.Agent.IsAvailable,
			&load.Agent.LastAssignedAt,
			&load.ActiveCount,
		); err != nil {
			return nil, err
		}
		result = append(result, load)
	}
	return result, rows.Err()
}

func deactivateActive(ctx context.Context, tx pgx.Tx, ticketID string) error {
	_, err := tx.Exec(ctx, `
        UPDATE assignments SET is_active=FALSE, completed_at=$1
        WHERE ticket_id=$2 AND is_active`, time.Now(), ticketID)
	return err
}

func insertAssignment(ctx context.Context, tx pgx.Tx, assignment *domain.Assignment) error {
	const query = `
        INSERT INTO assignments (ticket_id, assignee_user_id, assigner_user_id, assignment_type, previous_assignee_id, reason, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		assignment.TicketID,
		assignment.AssigneeID,
		assignment.AssignerID,
		assignment.Type,
		assignment.PreviousAssigneeID,
		assignment.Reason,
		assignment.IsActive,
	).Scan(&assignment.ID, &assignment.CreatedAt)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignmentRow(row rowScanner) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := row.Scan(
		&assignment.ID,
		&assignment.TicketID,
		&assignment.AssigneeID,
		&assignment.AssignerID,
		&assignment.Type,
		&assignment.PreviousAssigneeID,
		&assignment.Reason,
		&assignment.IsActive,
		&assignment.CompletedAt,
		&assignment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &assignment, nil
}
