package repository

import (
	"context"

	"github.com/spec-kit/board-service/internal/domain"
)

// MemberRepository encapsulates board membership persistence.
type MemberRepository interface {
	Add(ctx context.Context, member *domain.BoardMember) (*domain.BoardMember, error)
	Remove(ctx context.Context, boardID, userID string) (bool, error)
	IsMember(ctx context.Context, boardID, userID string) (bool, error)
	ListByBoard(ctx context.Context, boardID string) ([]domain.BoardMember, error)
}

type memberRepository struct {
	db DB
}

// Add inserts a membership row. Returns (nil, nil) when the user is
// already a member; the unique constraint resolves races.
func (r *memberRepository) Add(ctx context.Context, member *domain.BoardMember) (*domain.BoardMember, error) {
	const query = `
        INSERT INTO board_members (board_id, user_id, role)
        VALUES ($1,$2,$3)
        ON CONFLICT (board_id, user_id) DO NOTHING
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, member.BoardID, member.UserID, member.Role).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) Remove(ctx context.Context, boardID, userID string) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM board_members WHERE board_id=$1 AND user_id=$2`, boardID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *memberRepository) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM board_members WHERE board_id=$1 AND user_id=$2
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, boardID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *memberRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.BoardMember, error) {
	const query = `
        SELECT id, board_id, user_id, role, created_at
        FROM board_members WHERE board_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BoardMember
	for rows.Next() {
		var member domain.BoardMember
		if err := rows.Scan(
			&member.ID,
			&member.BoardID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}
