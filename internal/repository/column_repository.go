package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/board-service/internal/domain"
)

// ColumnRepository encapsulates workflow column persistence.
type ColumnRepository interface {
	Create(ctx context.Context, column *domain.Column) error
	Update(ctx context.Context, column *domain.Column) error
	GetByID(ctx context.Context, id string) (*domain.Column, error)
	ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error)
	ExistsByName(ctx context.Context, boardID, name, excludeID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type columnRepository struct {
	db DB
}

func (r *columnRepository) Create(ctx context.Context, column *domain.Column) error {
	const query = `
        INSERT INTO columns (board_id, name, position)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, column.BoardID, column.Name, column.Position).
		Scan(&column.ID, &column.CreatedAt)
}

func (r *columnRepository) Update(ctx context.Context, column *domain.Column) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE columns SET name=$1, position=$2 WHERE id=$3`,
		column.Name, column.Position, column.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *columnRepository) GetByID(ctx context.Context, id string) (*domain.Column, error) {
	const query = `
        SELECT id, board_id, name, position, created_at
        FROM columns WHERE id=$1`
	var column domain.Column
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&column.ID,
		&column.BoardID,
		&column.Name,
		&column.Position,
		&column.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *columnRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error) {
	const query = `
        SELECT id, board_id, name, position, created_at
        FROM columns WHERE board_id=$1 ORDER BY position ASC, created_at ASC`
	rows, err := r.db.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Column
	for rows.Next() {
		var column domain.Column
		if err := rows.Scan(
			&column.ID,
			&column.BoardID,
			&column.Name,
			&column.Position,
			&column.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, column)
	}
	return result, rows.Err()
}

func (r *columnRepository) ExistsByName(ctx context.Context, boardID, name, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM columns WHERE board_id=$1 AND name=$2 AND id<>$3
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, boardID, name, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *columnRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM columns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
