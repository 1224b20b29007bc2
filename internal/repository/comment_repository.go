package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/board-service/internal/domain"
)

// CommentRepository encapsulates comment persistence.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db DB
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `
        UPDATE comments SET content=$1, is_edited=$2, updated_at=$3 WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query,
		comment.Content,
		comment.IsEdited,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, is_edited, created_at, updated_at
        FROM comments WHERE id=$1`
	var comment domain.Comment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.AuthorID,
		&comment.Content,
		&comment.IsEdited,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, is_edited, created_at, updated_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Content,
			&comment.IsEdited,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
