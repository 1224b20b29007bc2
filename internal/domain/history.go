package domain

import "time"

// HistoryAction captures the taxonomy of auditable ticket events.
type HistoryAction string

const (
	ActionTicketCreated   HistoryAction = "TICKET_CREATED"
	ActionTicketUpdated   HistoryAction = "TICKET_UPDATED"
	ActionStatusChanged   HistoryAction = "STATUS_CHANGED"
	ActionAssigneeChanged HistoryAction = "ASSIGNEE_CHANGED"
	ActionPriorityChanged HistoryAction = "PRIORITY_CHANGED"
	ActionTicketDeleted   HistoryAction = "TICKET_DELETED"
	ActionCommentAdded    HistoryAction = "COMMENT_ADDED"
	ActionCommentEdited   HistoryAction = "COMMENT_EDITED"
	ActionCommentDeleted  HistoryAction = "COMMENT_DELETED"
	ActionWatcherAdded    HistoryAction = "WATCHER_ADDED"
	ActionWatcherRemoved  HistoryAction = "WATCHER_REMOVED"
)

// HistoryRecord is an immutable audit-trail entry for one field change
// or lifecycle event on a ticket. Old/new values are stored as opaque
// display strings; they are never re-interpreted after recording.
type HistoryRecord struct {
	ID        string
	TicketID  string
	ActorID   string
	Action    HistoryAction
	FieldName *string
	OldValue  *string
	NewValue  *string
	CreatedAt time.Time
}
