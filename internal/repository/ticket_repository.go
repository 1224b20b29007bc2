package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/board-service/internal/domain"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByBoard(ctx context.Context, boardID string, limit, offset int) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	db DB
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (board_id, column_id, title, description, priority, assignee_id, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.BoardID,
		ticket.ColumnID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.AssigneeID,
		ticket.CreatedByID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET column_id=$1, title=$2, description=$3, priority=$4,
            assignee_id=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		ticket.ColumnID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.AssigneeID,
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

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, board_id, column_id, title, description, priority,
               assignee_id, created_by_id, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.BoardID,
		&ticket.ColumnID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.AssigneeID,
		&ticket.CreatedByID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByBoard(ctx context.Context, boardID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, board_id, column_id, title, description, priority,
               assignee_id, created_by_id, created_at, updated_at
        FROM tickets WHERE board_id=$1
        ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, boardID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.BoardID,
			&ticket.ColumnID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.AssigneeID,
			&ticket.CreatedByID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
