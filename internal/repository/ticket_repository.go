package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-kit/ticket-lifecycle/internal/domain"
)

// ErrNotFound signals that no ticket exists with the given id.
var ErrNotFound = errors.New("ticket not found")

// TicketRepository encapsulates ticket persistence. Create assigns identity
// and timestamps; CancelAllInProgress applies its status sweep as one atomic
// store operation.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Save(ctx context.Context, ticket *domain.Ticket) error
	CancelAllInProgress(ctx context.Context, now time.Time) (int64, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (topic, text, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Topic,
		ticket.Text,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, topic, text, status, resolution_text, cancellation_reason, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Topic,
		&ticket.Text,
		&ticket.Status,
		&ticket.ResolutionText,
		&ticket.CancellationReason,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, resolution_text=$2, cancellation_reason=$3, updated_at=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.ResolutionText,
		ticket.CancellationReason,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) CancelAllInProgress(ctx context.Context, now time.Time) (int64, error) {
	const query = `UPDATE tickets SET status=$1, updated_at=$2 WHERE status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusCancelled, now, domain.TicketStatusInProgress)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// ListCreatedBetween returns tickets with created_at in [start, end], both
// bounds inclusive. An inverted range matches nothing.
func (r *ticketRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]domain.Ticket, error) {
	const query = `
        SELECT id, topic, text, status, resolution_text, cancellation_reason, created_at, updated_at
        FROM tickets
        WHERE created_at >= $1 AND created_at <= $2
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Topic,
			&ticket.Text,
			&ticket.Status,
			&ticket.ResolutionText,
			&ticket.CancellationReason,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
