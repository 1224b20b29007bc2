package repository

import (
	"context"

	"github.com/spec-kit/board-service/internal/domain"
)

// ArchiveRepository mirrors lifecycle records that must outlive their
// ticket. ticket_history cascades away with its ticket, so TICKET_DELETED
// entries are duplicated here to keep deletions durable.
type ArchiveRepository interface {
	Append(ctx context.Context, record *domain.HistoryRecord) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error)
}

type archiveRepository struct {
	db DB
}

func (r *archiveRepository) Append(ctx context.Context, record *domain.HistoryRecord) error {
	const query = `
        INSERT INTO audit_archive (ticket_id, actor_id, action, field_name, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	var id string
	if err := r.db.QueryRow(ctx, query,
		record.TicketID,
		record.ActorID,
		record.Action,
		record.FieldName,
		record.OldValue,
		record.NewValue,
	).Scan(&id); err != nil {
		return err
	}
	return nil
}

func (r *archiveRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryRecord, error) {
	const query = `
        SELECT id, ticket_id, actor_id, action, field_name, old_value, new_value, created_at
        FROM audit_archive WHERE ticket_id=$1 ORDER BY created_at ASC`
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
