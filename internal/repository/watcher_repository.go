package repository

import (
	"context"

	"github.com/spec-kit/board-service/internal/domain"
)

// WatcherRepository encapsulates watcher persistence. The (ticket, user)
// pair is unique at the data layer; a race between concurrent adds
// resolves to exactly one surviving row.
type WatcherRepository interface {
	// Add inserts a watcher. Returns (nil, nil) when the pair already
	// exists; that is the expected no-op signal, not an error.
	Add(ctx context.Context, watcher *domain.Watcher) (*domain.Watcher, error)
	Remove(ctx context.Context, ticketID, userID string) (bool, error)
	IsWatching(ctx context.Context, ticketID, userID string) (bool, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Watcher, error)
}

type watcherRepository struct {
	db DB
}

func (r *watcherRepository) Add(ctx context.Context, watcher *domain.Watcher) (*domain.Watcher, error) {
	const query = `
        INSERT INTO ticket_watchers (ticket_id, user_id, added_by)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id, user_id) DO NOTHING
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		watcher.TicketID,
		watcher.UserID,
		watcher.AddedByID,
	).Scan(&watcher.ID, &watcher.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return watcher, nil
}

func (r *watcherRepository) Remove(ctx context.Context, ticketID, userID string) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM ticket_watchers WHERE ticket_id=$1 AND user_id=$2`, ticketID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *watcherRepository) IsWatching(ctx context.Context, ticketID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM ticket_watchers WHERE ticket_id=$1 AND user_id=$2
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, ticketID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *watcherRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Watcher, error) {
	const query = `
        SELECT id, ticket_id, user_id, added_by, created_at
        FROM ticket_watchers WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Watcher
	for rows.Next() {
		var watcher domain.Watcher
		if err := rows.Scan(
			&watcher.ID,
			&watcher.TicketID,
			&watcher.UserID,
			&watcher.AddedByID,
			&watcher.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, watcher)
	}
	return result, rows.Err()
}
