package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// ErrSequenceConflict is returned when ticket-number generation lost the
// uniqueness race more times than the bounded retry allows.
var ErrSequenceConflict = errors.New("ticket number conflict after retries")

// sequenceRetries bounds how often Create replays the increment on a
// uniqueness failure.
const sequenceRetries = 3

// TicketFilter captures search parameters for ticket listing.
type TicketFilter struct {
	OwnerID     *string
	Statuses    []domain.TicketStatus
	Categories  []domain.TicketCategory
	Priorities  []domain.TicketPriority
	Keyword     *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	Limit       int
	Offset      int
}

// sortColumns whitelists the ORDER BY targets callers may name.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"priority":      "priority",
	"status":        "status",
	"ticket_number": "ticket_number",
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// RateOnce records the satisfaction rating only when none is stored yet
	// and reports whether the write landed. The conditional write is the
	// guard; two concurrent ratings cannot both succeed.
	RateOnce(ctx context.Context, ticketID string, rating int) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Create inserts the ticket, generating its ticket number from the per-day
// counter inside the same transaction. The counter increment is an atomic
// upsert, so concurrent creators on the same day never observe the same
// sequence value. A uniqueness failure on ticket_number is replayed a bounded
// number of times before ErrSequenceConflict is surfaced.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	var lastErr error
	for attempt := 0; attempt < sequenceRetries; attempt++ {
		err := r.createOnce(ctx, ticket)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", ErrSequenceConflict, lastErr)
}

func (r *ticketRepository) createOnce(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now()
	seq, err := nextTicketSequence(ctx, tx, domain.SequenceDay(now))
	if err != nil {
		return err
	}
	ticket.TicketNumber = domain.FormatTicketNumber(now, seq)

	const query = `
        INSERT INTO tickets (ticket_number, owner_user_id, category, subject, description, status, priority, attachments, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.OwnerID,
		ticket.Category,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Attachments,
		ticket.Metadata,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// nextTicketSequence atomically increments and reads the per-day counter.
func nextTicketSequence(ctx context.Context, tx pgx.Tx, day time.Time) (int64, error) {
	var next int64
	row := tx.QueryRow(ctx, `
        INSERT INTO ticket_sequences (day, next_number)
        VALUES ($1, 1)
        ON CONFLICT (day)
        DO UPDATE SET next_number = ticket_sequences.next_number + 1
        RETURNING next_number`, day)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, status=$3, priority=$4, attachments=$5, metadata=$6,
            satisfaction=$7, response_time_minutes=$8, resolution_time_minutes=$9, resolved_at=$10, closed_at=$11,
            updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Attachments,
		ticket.Metadata,
		ticket.Satisfaction,
		ticket.ResponseTimeMinutes,
		ticket.ResolutionTimeMinutes,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) RateOnce(ctx context.Context, ticketID string, rating int) (bool, error) {
	const query = `
        UPDATE tickets SET satisfaction=$1, updated_at=NOW()
        WHERE id=$2 AND satisfaction IS NULL`
	cmd, err := r.pool.Exec(ctx, query, rating, ticketID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const ticketColumns = `id, ticket_number, owner_user_id, category, subject, description, status, priority,
               attachments, metadata, satisfaction, response_time_minutes, resolution_time_minutes,
               resolved_at, closed_at, created_at, updated_at`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.OwnerID,
		&ticket.Category,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Attachments,
		&ticket.Metadata,
		&ticket.Satisfaction,
		&ticket.ResponseTimeMinutes,
		&ticket.ResolutionTimeMinutes,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.Keyword != nil && strings.TrimSpace(*filter.Keyword) != "" {
		search := "%" + strings.TrimSpace(*filter.Keyword) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("subject ILIKE $%d", len(args)))
	}

	orderBy := "created_at"
	if col, ok := sortColumns[filter.SortBy]; ok {
		orderBy = col
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), orderBy, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.OwnerID,
			&ticket.Category,
			&ticket.Subject,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Attachments,
			&ticket.Metadata,
			&ticket.Satisfaction,
			&ticket.ResponseTimeMinutes,
			&ticket.ResolutionTimeMinutes,
			&ticket.ResolvedAt,
			&ticket.ClosedAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
