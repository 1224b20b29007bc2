package repository

import (
	"context"

	"github.com/spec-kit/board-service/internal/domain"
)

// HistoryRepository stores the append-only audit trail. Records are
// staged inside the ambient transaction; the orchestrator owns the
// commit so a mutation and its audit trail are atomic.
type HistoryRepository interface {
	Append(ctx context.Context, record *domain.HistoryRecord) error
	// ListByTicket returns records ordered by creation time ascending;
	// history is displayed as a causal timeline.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error)
}

type historyRepository struct {
	db DB
}

func (r *historyRepository) Append(ctx context.Context, record *domain.HistoryRecord) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, actor_id, action, field_name, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		record.TicketID,
		record.ActorID,
		record.Action,
		record.FieldName,
		record.OldValue,
		record.NewValue,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error) {
	const query = `
        SELECT id, ticket_id, actor_id, action, field_name, old_value, new_value, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryRecord
	for rows.Next() {
		var record domain.HistoryRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.ActorID,
			&record.Action,
			&record.FieldName,
			&record.OldValue,
			&record.NewValue,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
