package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// ResponseRepository handles persistence for ticket responses.
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error)
	MarkNotified(ctx context.Context, responseID string, at time.Time) error
}

type responseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository instantiates the repository.
func NewResponseRepository(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepository{pool: pool}
}

func (r *responseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO responses (ticket_id, author_user_id, author_is_staff, message, is_internal, attachments, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		response.TicketID,
		response.AuthorID,
		response.AuthorIsStaff,
		response.Message,
		response.IsInternal,
		response.Attachments,
		response.Metadata,
	).Scan(&response.ID, &response.CreatedAt)
}

func (r *responseRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error) {
	query := `
        SELECT id, ticket_id, author_user_id, author_is_staff, message, is_internal,
               attachments, metadata, notification_sent, notification_sent_at, created_at
        FROM responses WHERE ticket_id=$1`
	if !includeInternal {
		query += ` AND is_internal = FALSE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var response domain.Response
		if err := rows.Scan(
			&response.ID,
			&response.TicketID,
			&response.AuthorID,
			&response.AuthorIsStaff,
			&response.Message,
			&response.IsInternal,
			&response.Attachments,
			&response.Metadata,
			&response.NotificationSent,
			&response.NotificationSentAt,
			&response.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}

func (r *responseRepository) MarkNotified(ctx context.Context, responseID string, at time.Time) error {
	const query = `
        UPDATE responses SET notification_sent=TRUE, notification_sent_at=$1
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, at, responseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
