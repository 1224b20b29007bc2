package dto

import (
	"encoding/json"
	"time"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	BoardID     string  `json:"board_id"`
	ColumnID    string  `json:"column_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assignee_id"`
}

// UpdateTicketRequest is a partial update; nil fields were not
// submitted. assignee_id distinguishes "absent" from "null" (unassign),
// so unmarshalling tracks key presence.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	ColumnID    *string `json:"column_id"`
	AssigneeID  *string `json:"assignee_id"`

	assigneeSubmitted bool
}

// UnmarshalJSON records whether assignee_id was present in the payload.
func (r *UpdateTicketRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateTicketRequest
	var parsed alias
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*r = UpdateTicketRequest(parsed)
	_, r.assigneeSubmitted = keys["assignee_id"]
	return nil
}

// AssigneeSubmitted reports whether the payload contained assignee_id.
func (r *UpdateTicketRequest) AssigneeSubmitted() bool {
	return r.assigneeSubmitted
}

// TicketResponse is the ticket shape.
type TicketResponse struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"board_id"`
	ColumnID    string    `json:"column_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	AssigneeID  *string   `json:"assignee_id"`
	CreatedByID *string   `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommentRequest payload for adding or editing a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse is the comment shape.
type CommentResponse struct {
	ID        string     `json:"id"`
	TicketID  string     `json:"ticket_id"`
	AuthorID  string     `json:"author_id"`
	Content   string     `json:"content"`
	IsEdited  bool       `json:"is_edited"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// WatcherRequest payload for subscribing a user.
type WatcherRequest struct {
	UserID string `json:"user_id"`
}

// WatcherResponse is the watcher shape.
type WatcherResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	AddedByID string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryResponse is one audit-trail entry.
type HistoryResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	FieldName *string   `json:"field_name,omitempty"`
	OldValue  *string   `json:"old_value,omitempty"`
	NewValue  *string   `json:"new_value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
