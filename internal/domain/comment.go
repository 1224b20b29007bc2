package domain

import "time"

// Comment is a discussion entry on a ticket. Editing a comment is
// itself an auditable event on the parent ticket.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Content   string
	IsEdited  bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}
