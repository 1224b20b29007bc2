package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/board-service/internal/domain"
)

// BoardRepository encapsulates board persistence.
type BoardRepository interface {
	Create(ctx context.Context, board *domain.Board) error
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Board, error)
	Delete(ctx context.Context, id string) error
}

type boardRepository struct {
	db DB
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	const query = `
        INSERT INTO boards (name, owner_id)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, board.Name, board.OwnerID).
		Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	const query = `
        SELECT id, name, owner_id, created_at, updated_at
        FROM boards WHERE id=$1`
	var board domain.Board
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&board.ID,
		&board.Name,
		&board.OwnerID,
		&board.CreatedAt,
		&board.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *boardRepository) ListByUser(ctx context.Context, userID string) ([]domain.Board, error) {
	const query = `
        SELECT b.id, b.name, b.owner_id, b.created_at, b.updated_at
        FROM boards b
        JOIN board_members m ON m.board_id = b.id
        WHERE m.user_id=$1
        ORDER BY b.created_at ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(
			&board.ID,
			&board.Name,
			&board.OwnerID,
			&board.CreatedAt,
			&board.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, board)
	}
	return result, rows.Err()
}

func (r *boardRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM boards WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
